// Package metrics holds the prometheus collectors of the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jomsplit"

// Metrics is the set of collectors, registered on one registry.
type Metrics struct {
	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	Allocations         *prometheus.CounterVec
	AllocationWarnings  *prometheus.CounterVec
	ReceiptDifferences  prometheus.Counter
	ReceiptsConfirmed   prometheus.Counter
	DraftsActive        prometheus.Gauge
	DraftsExpired       prometheus.Counter
	NotificationsSent   *prometheus.CounterVec
	NotificationRetries prometheus.Counter
}

// New registers the collectors on reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPCs handled, by procedure and code.",
		}, []string{"procedure", "code"}),
		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Connect RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		Allocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Allocations computed, by policy.",
		}, []string{"policy"}),
		AllocationWarnings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_warnings_total",
			Help:      "Non-blocking allocation warnings, by kind.",
		}, []string{"kind"}),
		ReceiptDifferences: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_differences_total",
			Help:      "Receipts whose items did not reconcile to the nett amount.",
		}),
		ReceiptsConfirmed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_confirmed_total",
			Help:      "Drafts confirmed and persisted.",
		}),
		DraftsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "drafts_active",
			Help:      "Drafts currently held in memory.",
		}),
		DraftsExpired: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drafts_expired_total",
			Help:      "Drafts removed by the TTL sweeper.",
		}),
		NotificationsSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries, by result.",
		}, []string{"result"}),
		NotificationRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_retries_total",
			Help:      "Notification attempts retried after a failure.",
		}),
	}
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Allocations.WithLabelValues("equal").Inc()
	m.Allocations.WithLabelValues("equal").Inc()
	m.ReceiptsConfirmed.Inc()

	if got := testutil.ToFloat64(m.Allocations.WithLabelValues("equal")); got != 2 {
		t.Errorf("allocations{equal} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ReceiptsConfirmed); got != 1 {
		t.Errorf("receipts_confirmed = %v, want 1", got)
	}

	n, err := testutil.GatherAndCount(reg, "jomsplit_allocations_total", "jomsplit_receipts_confirmed_total")
	if err != nil {
		t.Fatalf("GatherAndCount failed: %v", err)
	}
	if n != 2 {
		t.Errorf("gathered %d series, want 2", n)
	}
}

func TestNewRegistryIncludesRuntime(t *testing.T) {
	reg := NewRegistry()
	New(reg)
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "go_goroutines" {
			found = true
		}
	}
	if !found {
		t.Error("go collector not registered")
	}
}

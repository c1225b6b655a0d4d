package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/jomsplit/internal/metrics"
)

// maxParallel bounds concurrent deliveries per dispatch.
const maxParallel = 8

// Dispatcher sends messages concurrently, retrying each recipient
// independently with exponential backoff.
type Dispatcher struct {
	notifier   Notifier
	maxRetries uint64
	backoff    time.Duration
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics

	// pending tracks DispatchAsync goroutines.
	pending sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics counts deliveries and retries.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithLogger sets the logger failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithTimeout bounds a whole background dispatch. Non-positive values keep
// the default.
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

// NewDispatcher creates a dispatcher making at most maxRetries retries per
// recipient, starting at backoff.
func NewDispatcher(n Notifier, maxRetries uint64, backoff time.Duration, opts ...Option) *Dispatcher {
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	d := &Dispatcher{
		notifier:   n,
		maxRetries: maxRetries,
		backoff:    backoff,
		timeout:    time.Minute,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Report counts the outcome of a dispatch.
type Report struct {
	Sent   int
	Failed int
}

// Dispatch sends every message and waits. A failed recipient does not stop
// the others.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs []Message) Report {
	var sent, failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for _, msg := range msgs {
		g.Go(func() error {
			if err := d.deliver(ctx, msg); err != nil {
				failed.Add(1)
				d.count("failed")
				d.logger.Warn("Notification failed",
					"receipt_id", msg.ReceiptID,
					"to", msg.To,
					"error", err,
				)
				return nil
			}
			sent.Add(1)
			d.count("sent")
			return nil
		})
	}
	_ = g.Wait()

	return Report{Sent: int(sent.Load()), Failed: int(failed.Load())}
}

// DispatchAsync sends in the background, detached from the caller's
// cancellation.
func (d *Dispatcher) DispatchAsync(ctx context.Context, msgs []Message) {
	if len(msgs) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		report := d.Dispatch(ctx, msgs)
		d.logger.Info("Notifications dispatched", "sent", report.Sent, "failed", report.Failed)
	}()
}

// Wait blocks until every background dispatch has finished, or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) error {
	attempt := 0
	backoff := retry.WithMaxRetries(d.maxRetries, retry.NewExponential(d.backoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if attempt > 0 && d.metrics != nil {
			d.metrics.NotificationRetries.Inc()
		}
		attempt++

		err := d.notifier.Send(ctx, msg)
		if err == nil || errors.Is(err, ErrPermanent) {
			return err
		}
		return retry.RetryableError(err)
	})
}

func (d *Dispatcher) count(result string) {
	if d.metrics != nil {
		d.metrics.NotificationsSent.WithLabelValues(result).Inc()
	}
}

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/metrics"
	"github.com/mmynk/jomsplit/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func confirmedLunch() *models.ConfirmedReceipt {
	return &models.ConfirmedReceipt{
		OwnerID: "u-alice",
		Receipt: models.Receipt{
			ID:         "r-1",
			Name:       "Nasi Kandar",
			Date:       "2025-06-06",
			Currency:   "MYR",
			NettAmount: d("55.68"),
			Items: []models.Item{
				{ID: "1", Name: "Nasi Ayam", Quantity: 1, NettPrice: d("20.88")},
				{ID: "2", Name: "Teh Tarik", Quantity: 2, NettPrice: d("17.40")},
			},
		},
		Consumers: []models.ReceiptConsumer{
			{UserID: "u-alice", Name: "Alice", Contact: "alice@example.com", TotalPaid: d("20.88")},
			{UserID: "u-bob", Name: "Bob", Contact: "+60123456789", TotalPaid: d("34.80"),
				Breakdown: []models.ItemShare{{ItemID: "2", Value: d("34.80")}}},
			{UserID: "u-carol", Name: "Carol", TotalPaid: d("0")},
		},
	}
}

func TestCompose(t *testing.T) {
	msgs := Compose(confirmedLunch(), "Alice")
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1 (owner and contactless consumer skipped)", len(msgs))
	}
	msg := msgs[0]
	if msg.To != "+60123456789" || msg.Channel != ChannelSMS {
		t.Errorf("recipient = %s via %s, want +60123456789 via sms", msg.To, msg.Channel)
	}
	for _, want := range []string{"Hi Bob", "Alice split Nasi Kandar", "2025-06-06", "34.80", "Teh Tarik", "55.68"} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body missing %q:\n%s", want, msg.Body)
		}
	}
	if !strings.Contains(msg.Subject, "34.80") {
		t.Errorf("subject = %q, want amount", msg.Subject)
	}
}

func TestRenderEmailChannel(t *testing.T) {
	r := confirmedLunch()
	msg := Render(&r.Receipt, "", models.ReceiptConsumer{Contact: "bob@example.com", TotalPaid: d("1")})
	if msg.Channel != ChannelEmail {
		t.Errorf("channel = %s, want email", msg.Channel)
	}
	if !strings.Contains(msg.Body, "A friend split") || !strings.Contains(msg.Body, "Hi there") {
		t.Errorf("body = %q, want fallback names", msg.Body)
	}
}

// flakyNotifier fails the first failures sends to each recipient.
type flakyNotifier struct {
	mu       sync.Mutex
	failures int
	err      error
	attempts map[string]int
}

func (n *flakyNotifier) Send(_ context.Context, msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.attempts == nil {
		n.attempts = make(map[string]int)
	}
	n.attempts[msg.To]++
	if n.attempts[msg.To] <= n.failures {
		return n.err
	}
	return nil
}

func TestDispatchRetries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	n := &flakyNotifier{failures: 2, err: errors.New("connection reset")}
	disp := NewDispatcher(n, 3, time.Millisecond, WithMetrics(m))

	msgs := []Message{{To: "a@example.com"}, {To: "b@example.com"}}
	report := disp.Dispatch(context.Background(), msgs)

	if report.Sent != 2 || report.Failed != 0 {
		t.Errorf("report = %+v, want 2 sent", report)
	}
	for _, msg := range msgs {
		if got := n.attempts[msg.To]; got != 3 {
			t.Errorf("%s attempts = %d, want 3", msg.To, got)
		}
	}
	if got := testutil.ToFloat64(m.NotificationRetries); got != 4 {
		t.Errorf("retries = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.NotificationsSent.WithLabelValues("sent")); got != 2 {
		t.Errorf("sent = %v, want 2", got)
	}
}

func TestDispatchGivesUp(t *testing.T) {
	n := &flakyNotifier{failures: 10, err: errors.New("timeout")}
	disp := NewDispatcher(n, 2, time.Millisecond)

	report := disp.Dispatch(context.Background(), []Message{{To: "a"}})
	if report.Failed != 1 {
		t.Errorf("report = %+v, want 1 failed", report)
	}
	if got := n.attempts["a"]; got != 3 {
		t.Errorf("attempts = %d, want 3 (1 + 2 retries)", got)
	}
}

func TestDispatchPermanentNotRetried(t *testing.T) {
	n := &flakyNotifier{failures: 10, err: ErrPermanent}
	disp := NewDispatcher(n, 5, time.Millisecond)

	report := disp.Dispatch(context.Background(), []Message{{To: "a"}, {To: "b"}})
	if report.Failed != 2 {
		t.Errorf("report = %+v, want 2 failed", report)
	}
	if got := n.attempts["a"]; got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestWebhookNotifier(t *testing.T) {
	var calls atomic.Int32
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	disp := NewDispatcher(NewWebhookNotifier(srv.URL, srv.Client()), 2, time.Millisecond)
	report := disp.Dispatch(context.Background(), []Message{{ReceiptID: "r-1", To: "bob@example.com", Subject: "hi"}})

	if report.Sent != 1 {
		t.Fatalf("report = %+v, want 1 sent", report)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if got.ReceiptID != "r-1" || got.To != "bob@example.com" {
		t.Errorf("webhook got %+v", got)
	}
}

func TestWebhookClientErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewWebhookNotifier(srv.URL, nil).Send(context.Background(), Message{To: "x"})
	if !errors.Is(err, ErrPermanent) {
		t.Errorf("err = %v, want ErrPermanent", err)
	}
}

// blockingNotifier holds every send until release is closed.
type blockingNotifier struct {
	release chan struct{}
	sent    atomic.Int64
}

func (n *blockingNotifier) Send(ctx context.Context, _ Message) error {
	select {
	case <-n.release:
		n.sent.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestDispatchAsyncWait(t *testing.T) {
	n := &blockingNotifier{release: make(chan struct{})}
	disp := NewDispatcher(n, 0, time.Millisecond)

	reqCtx, cancel := context.WithCancel(context.Background())
	disp.DispatchAsync(reqCtx, []Message{{To: "a@example.com"}, {To: "b@example.com"}})
	// The request finishing does not cancel its notifications.
	cancel()

	short, stop := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer stop()
	if err := disp.Wait(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait with pending sends = %v, want deadline exceeded", err)
	}

	close(n.release)
	if err := disp.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if got := n.sent.Load(); got != 2 {
		t.Errorf("sent = %d, want 2", got)
	}
}

func TestWaitWithoutDispatches(t *testing.T) {
	disp := NewDispatcher(&blockingNotifier{}, 0, time.Millisecond)
	if err := disp.Wait(context.Background()); err != nil {
		t.Errorf("Wait = %v", err)
	}
}

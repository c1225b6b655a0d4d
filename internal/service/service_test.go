package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/auth"
	"github.com/mmynk/jomsplit/internal/draft"
	"github.com/mmynk/jomsplit/internal/metrics"
	"github.com/mmynk/jomsplit/internal/middleware"
	"github.com/mmynk/jomsplit/internal/notify"
	"github.com/mmynk/jomsplit/internal/storage"
	"github.com/mmynk/jomsplit/internal/storage/sqlite"
	"github.com/mmynk/jomsplit/pkg/api"
	"github.com/mmynk/jomsplit/pkg/api/apiconnect"
)

const testSecret = "test-secret"

// recordingNotifier collects delivered messages.
type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
	done chan struct{}
}

func (n *recordingNotifier) Send(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	n.done <- struct{}{}
	return nil
}

func (n *recordingNotifier) wait(t *testing.T, count int) []notify.Message {
	t.Helper()
	for i := 0; i < count; i++ {
		select {
		case <-n.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for notification %d of %d", i+1, count)
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.msgs...)
}

type testEnv struct {
	split    apiconnect.SplitServiceClient
	drafts   apiconnect.DraftServiceClient
	receipts apiconnect.ReceiptServiceClient
	friends  apiconnect.FriendServiceClient
	store    *sqlite.SQLiteStore
	verifier *auth.Verifier
	metrics  *metrics.Metrics
	notifier *recordingNotifier
}

// setupTestServer serves every service over httptest with a temp SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	return setupTestServerWith(t, nil)
}

// setupTestServerWith is setupTestServer with the services' store wrapped by wrap.
func setupTestServerWith(t *testing.T, wrap func(storage.Store) storage.Store) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var svcStore storage.Store = store
	if wrap != nil {
		svcStore = wrap(store)
	}

	m := metrics.New(prometheus.NewRegistry())
	verifier := auth.NewVerifier(testSecret, "")
	rec := &recordingNotifier{done: make(chan struct{}, 16)}
	dispatcher := notify.NewDispatcher(rec, 0, time.Millisecond, notify.WithMetrics(m))
	drafts := draft.NewStore(time.Hour, draft.WithMetrics(m))

	opts := connect.WithInterceptors(middleware.OptionalAuth(verifier), middleware.MetricsInterceptor(m))
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewSplitServiceHandler(NewSplitService(m, "MYR"), opts))
	mux.Handle(apiconnect.NewDraftServiceHandler(NewDraftService(svcStore, drafts, dispatcher, m, "MYR"), opts))
	mux.Handle(apiconnect.NewReceiptServiceHandler(NewReceiptService(svcStore, "MYR"), opts))
	mux.Handle(apiconnect.NewFriendServiceHandler(NewFriendService(svcStore), opts))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		split:    apiconnect.NewSplitServiceClient(http.DefaultClient, server.URL),
		drafts:   apiconnect.NewDraftServiceClient(http.DefaultClient, server.URL),
		receipts: apiconnect.NewReceiptServiceClient(http.DefaultClient, server.URL),
		friends:  apiconnect.NewFriendServiceClient(http.DefaultClient, server.URL),
		store:    store,
		verifier: verifier,
		metrics:  m,
		notifier: rec,
	}
}

// as returns a request carrying a bearer token for userID.
func as[T any](t *testing.T, env *testEnv, userID, email string, msg *T) *connect.Request[T] {
	t.Helper()
	req := connect.NewRequest(msg)
	token, err := env.verifier.Issue(userID, email, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %v", err)
	}
	if connectErr.Code() != want {
		t.Errorf("code = %s, want %s (%v)", connectErr.Code(), want, err)
	}
}

func lunchReceipt() api.Receipt {
	return api.Receipt{
		Name:       "Nasi Kandar",
		Currency:   "MYR",
		NettAmount: d("55.68"),
		Items: []api.Item{
			{ID: "1", Name: "Nasi Lemak", Quantity: 1, UnitPrice: d("18"), NettPrice: d("20.88")},
			{ID: "2", Name: "Teh Tarik", Quantity: 2, UnitPrice: d("15"), NettPrice: d("17.40")},
		},
	}
}

func assignedParticipants() []api.Participant {
	return []api.Participant{
		{ID: "user:alice", Name: "Alice", ItemsPaid: []api.ItemShare{
			{ItemID: "1", Value: d("20.88"), Percentage: d("100"), SplitType: "manual"},
		}},
		{ID: "user:bob", Name: "Bob", ItemsPaid: []api.ItemShare{
			{ItemID: "2", Value: d("34.80"), Percentage: d("100"), SplitType: "manual"},
		}},
	}
}

// jsonString quotes s as a JSON string, the way the structuring backend
// sometimes returns its model output.
func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

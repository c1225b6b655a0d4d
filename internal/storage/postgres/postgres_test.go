package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/ledger"
	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/storage"
)

// newTestStore connects to JOMSPLIT_TEST_DATABASE_URL; the tests are
// skipped without it.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("JOMSPLIT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("JOMSPLIT_TEST_DATABASE_URL not set")
	}
	store, err := New(context.Background(), url)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// newUser creates a user with a unique id so runs against a shared
// database do not collide.
func newUser(t *testing.T, store *Store, name string) *models.User {
	t.Helper()
	id := uuid.New().String()
	u := &models.User{ID: id, Name: name, Email: id + "@example.com", IsActive: true}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func TestPostgresReceiptFlow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payer := newUser(t, store, "Mei")
	friend := newUser(t, store, "Aziz")

	consumers := []models.ReceiptConsumer{
		{UserID: payer.ID, ParticipantID: payer.ParticipantID(), TotalPaid: decimal.RequireFromString("27.84")},
		{UserID: friend.ID, ParticipantID: friend.ParticipantID(), TotalPaid: decimal.RequireFromString("27.84")},
	}
	deltas, err := ledger.ReceiptDeltas(payer.ID, consumers)
	if err != nil {
		t.Fatal(err)
	}
	cr := &models.ConfirmedReceipt{
		Receipt: models.Receipt{
			Name:       "Nasi Kandar",
			NettAmount: decimal.RequireFromString("55.68"),
			Items:      []models.Item{{ID: "1", Quantity: 1, NettPrice: decimal.RequireFromString("55.68")}},
		},
		OwnerID:     payer.ID,
		SplitMethod: models.SplitMethodEqual,
		Consumers:   consumers,
	}
	if err := store.SaveReceipt(ctx, cr, deltas); err != nil {
		t.Fatalf("SaveReceipt failed: %v", err)
	}

	got, err := store.GetConsumerReceipt(ctx, cr.Receipt.ID, friend.ID)
	if err != nil {
		t.Fatalf("GetConsumerReceipt failed: %v", err)
	}
	if !got.TotalPaid.Equal(decimal.RequireFromString("27.84")) || len(got.Receipt.Items) != 1 {
		t.Errorf("consumer receipt = %+v", got)
	}

	u1, u2, _ := ledger.CanonicalPair(payer.ID, friend.ID)
	f, err := store.GetFriendship(ctx, u1, u2)
	if err != nil {
		t.Fatalf("GetFriendship failed: %v", err)
	}
	balance, err := ledger.ViewerBalance(*f, payer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !balance.Equal(decimal.RequireFromString("27.84")) {
		t.Errorf("payer balance = %s, want 27.84", balance)
	}

	sum, err := store.SumConsumerTotals(ctx, friend.ID, 0)
	if err != nil {
		t.Fatalf("SumConsumerTotals failed: %v", err)
	}
	if !sum.Equal(decimal.RequireFromString("27.84")) {
		t.Errorf("sum = %s", sum)
	}
}

func TestPostgresConcurrentAddFriend(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := newUser(t, store, "A")
	b := newUser(t, store, "B")

	const attempts = 6
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := a.ID, b.ID
			if i%2 == 1 {
				from, to = to, from
			}
			f, err := ledger.NewFriendship(from, to, "", time.Now())
			if err != nil {
				t.Error(err)
				return
			}
			err = store.CreateFriendship(ctx, &f)
			if err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
				t.Errorf("CreateFriendship failed: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("created %d friendships, want 1", created)
	}
}

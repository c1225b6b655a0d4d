// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique key is already taken.
	ErrAlreadyExists = errors.New("already exists")
)

// Store defines the interface for the persistence backend.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore
	FriendshipStore
	ReceiptStore
	ContactStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore manages users, both signed-in and invited.
type UserStore interface {
	// CreateUser inserts a user. ErrAlreadyExists if the id, email or
	// phone is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// EnsureUser inserts the user if no row with its id exists and returns
	// the stored row. Used for identities coming from the auth provider.
	EnsureUser(ctx context.Context, user *models.User) (*models.User, error)

	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
}

// FriendshipStore manages canonical friendship records.
type FriendshipStore interface {
	// CreateFriendship inserts a canonical record. Concurrent inserts of the
	// same pair leave exactly one row; the losers get ErrAlreadyExists.
	CreateFriendship(ctx context.Context, f *models.Friendship) error

	GetFriendship(ctx context.Context, user1ID, user2ID string) (*models.Friendship, error)

	// ListFriendships returns one page of userID's friendships joined with
	// both users, newest first.
	ListFriendships(ctx context.Context, userID string, page Page) ([]models.FriendshipView, PageInfo, error)

	// FriendBalances returns every friendship record of userID.
	FriendBalances(ctx context.Context, userID string) ([]models.Friendship, error)
}

// ReceiptStore manages confirmed receipts.
type ReceiptStore interface {
	// SaveReceipt persists the receipt, its consumer rows and the friendship
	// balance deltas in one transaction. Missing friendships are created.
	SaveReceipt(ctx context.Context, receipt *models.ConfirmedReceipt, deltas []models.BalanceDelta) error

	// GetConsumerReceipt returns the receipt as seen by one of its consumers.
	GetConsumerReceipt(ctx context.Context, receiptID, userID string) (*models.ConsumerReceipt, error)

	// ListConsumerReceipts returns one page of receipts userID consumed, newest first.
	ListConsumerReceipts(ctx context.Context, userID string, page Page) ([]models.ConsumerReceipt, PageInfo, error)

	// SumConsumerTotals adds up userID's consumer totals created at or after since (Unix seconds).
	SumConsumerTotals(ctx context.Context, userID string, since int64) (decimal.Decimal, error)
}

// ContactStore remembers who an owner has split bills with.
type ContactStore interface {
	// RecordContacts inserts new contacts and bumps LastUsedAt of known ones.
	RecordContacts(ctx context.Context, contacts []models.Contact) error

	// ListContacts returns the owner's contacts, most recently used first.
	ListContacts(ctx context.Context, ownerID string) ([]models.Contact, error)
}

package models

import "github.com/shopspring/decimal"

// Friendship is the single record kept per unordered pair of users.
// User1ID is always the lexicographically smaller id.
type Friendship struct {
	// ID is "<User1ID>_<User2ID>".
	ID string

	User1ID string
	User2ID string

	// User1Nickname is the name User2 gave User1, and vice versa.
	User1Nickname string
	User2Nickname string

	InvitedBy string

	// NettBalance is positive when User1 is the creditor (User2 owes User1).
	NettBalance decimal.Decimal

	// CreatedAt is the Unix timestamp when the friendship was created.
	CreatedAt int64
}

// FriendshipView is a friendship joined with both users, as listed for one of them.
type FriendshipView struct {
	Friendship Friendship
	User1      User
	User2      User
}

// FriendLedgerEntry is a friendship seen from one user's side.
type FriendLedgerEntry struct {
	FriendID string `json:"friend_id"`
	Name     string `json:"name"`
	Contact  string `json:"contact,omitempty"`
	Since    int64  `json:"since"`

	// NettBalance is positive when the friend owes the viewer.
	NettBalance decimal.Decimal `json:"nett_balance"`
}

// BalanceDelta is a change to a friendship balance in canonical orientation.
type BalanceDelta struct {
	User1ID string
	User2ID string
	Amount  decimal.Decimal
}

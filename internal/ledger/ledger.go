// Package ledger projects the canonical per-pair friendship balances onto
// one viewer and derives the balance changes a confirmed receipt causes.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/models"
)

var (
	// ErrSelfFriendship is returned for a pair made of one user.
	ErrSelfFriendship = errors.New("a user cannot be friends with themselves")
	// ErrNotInFriendship is returned when the viewer is neither side of the record.
	ErrNotInFriendship = errors.New("viewer is not part of this friendship")
)

// CanonicalPair orders two user ids so that a lookup from either side of the
// pair resolves to the same record.
func CanonicalPair(a, b string) (user1, user2 string, err error) {
	if a == "" || b == "" {
		return "", "", fmt.Errorf("both user ids are required")
	}
	if a == b {
		return "", "", ErrSelfFriendship
	}
	if a < b {
		return a, b, nil
	}
	return b, a, nil
}

// FriendshipID is the record id of a canonical pair.
func FriendshipID(user1, user2 string) string {
	return user1 + "_" + user2
}

// NewFriendship builds the canonical record for a and b. nicknameForB is the
// name a gave b.
func NewFriendship(a, b, nicknameForB string, now time.Time) (models.Friendship, error) {
	u1, u2, err := CanonicalPair(a, b)
	if err != nil {
		return models.Friendship{}, err
	}
	f := models.Friendship{
		ID:          FriendshipID(u1, u2),
		User1ID:     u1,
		User2ID:     u2,
		InvitedBy:   a,
		NettBalance: decimal.Zero,
		CreatedAt:   now.Unix(),
	}
	if u1 == b {
		f.User1Nickname = nicknameForB
	} else {
		f.User2Nickname = nicknameForB
	}
	return f, nil
}

// ViewerBalance signs the record's balance from the viewer's side: positive
// means the friend owes the viewer.
func ViewerBalance(f models.Friendship, viewer string) (decimal.Decimal, error) {
	if f.User1ID == f.User2ID {
		return decimal.Zero, ErrSelfFriendship
	}
	switch viewer {
	case f.User1ID:
		return f.NettBalance, nil
	case f.User2ID:
		return f.NettBalance.Neg(), nil
	}
	return decimal.Zero, ErrNotInFriendship
}

// Project turns friendship views into ledger entries for viewer, preserving
// order. The friend's name prefers the nickname the viewer gave them.
func Project(views []models.FriendshipView, viewer string) ([]models.FriendLedgerEntry, error) {
	entries := make([]models.FriendLedgerEntry, 0, len(views))
	for _, v := range views {
		balance, err := ViewerBalance(v.Friendship, viewer)
		if err != nil {
			return nil, fmt.Errorf("friendship %s: %w", v.Friendship.ID, err)
		}

		friend, nickname := v.User2, v.Friendship.User2Nickname
		if viewer == v.Friendship.User2ID {
			friend, nickname = v.User1, v.Friendship.User1Nickname
		}
		name := nickname
		if name == "" {
			name = friend.Name
		}
		entries = append(entries, models.FriendLedgerEntry{
			FriendID:    friend.ID,
			Name:        name,
			Contact:     friend.Contact(),
			Since:       v.Friendship.CreatedAt,
			NettBalance: balance,
		})
	}
	return entries, nil
}

// ReceiptDeltas returns the friendship balance changes caused by a receipt
// paid by payer: every other consumer owes the payer their total. Deltas for
// the same pair are merged and zero deltas are dropped. Order follows the
// consumers.
func ReceiptDeltas(payer string, consumers []models.ReceiptConsumer) ([]models.BalanceDelta, error) {
	if payer == "" {
		return nil, fmt.Errorf("payer is required")
	}
	var deltas []models.BalanceDelta
	index := make(map[string]int)
	for _, c := range consumers {
		if c.UserID == "" || c.UserID == payer {
			continue
		}
		u1, u2, err := CanonicalPair(payer, c.UserID)
		if err != nil {
			return nil, err
		}
		// Positive balance means user1 is the creditor.
		amount := c.TotalPaid
		if u1 != payer {
			amount = amount.Neg()
		}

		id := FriendshipID(u1, u2)
		if i, ok := index[id]; ok {
			deltas[i].Amount = deltas[i].Amount.Add(amount)
			continue
		}
		index[id] = len(deltas)
		deltas = append(deltas, models.BalanceDelta{User1ID: u1, User2ID: u2, Amount: amount})
	}

	out := deltas[:0]
	for _, d := range deltas {
		if !d.Amount.IsZero() {
			out = append(out, d)
		}
	}
	return out, nil
}

// Summary totals a viewer's ledger.
type Summary struct {
	// OwedToViewer is the sum of positive balances.
	OwedToViewer decimal.Decimal `json:"owed_to_viewer"`
	// ViewerOwes is the sum of negative balances, as a positive amount.
	ViewerOwes decimal.Decimal `json:"viewer_owes"`
	Nett       decimal.Decimal `json:"nett"`
}

// Summarize adds up the viewer-signed balances of entries.
func Summarize(entries []models.FriendLedgerEntry) Summary {
	s := Summary{OwedToViewer: decimal.Zero, ViewerOwes: decimal.Zero, Nett: decimal.Zero}
	for _, e := range entries {
		if e.NettBalance.IsPositive() {
			s.OwedToViewer = s.OwedToViewer.Add(e.NettBalance)
		} else {
			s.ViewerOwes = s.ViewerOwes.Sub(e.NettBalance)
		}
	}
	s.Nett = s.OwedToViewer.Sub(s.ViewerOwes)
	return s
}

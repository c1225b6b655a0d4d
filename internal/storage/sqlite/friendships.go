package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/ledger"
	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/storage"
)

const friendshipColumns = "f.id, f.user1_id, f.user2_id, f.user1_nickname, f.user2_nickname, f.invited_by, f.nett_balance, f.created_at"

// CreateFriendship persists a new canonical friendship record.
func (s *SQLiteStore) CreateFriendship(ctx context.Context, f *models.Friendship) error {
	if f.User1ID >= f.User2ID {
		return fmt.Errorf("friendship %s_%s is not in canonical order", f.User1ID, f.User2ID)
	}
	if f.ID == "" {
		f.ID = ledger.FriendshipID(f.User1ID, f.User2ID)
	}
	if f.CreatedAt == 0 {
		f.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO friendships (id, user1_id, user2_id, user1_nickname, user2_nickname, invited_by, nett_balance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.User1ID, f.User2ID, f.User1Nickname, f.User2Nickname, f.InvitedBy, f.NettBalance, f.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("friendship %s: %w", f.ID, storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to insert friendship: %w", err)
	}

	return nil
}

// GetFriendship retrieves the record of a canonical pair.
func (s *SQLiteStore) GetFriendship(ctx context.Context, user1ID, user2ID string) (*models.Friendship, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+friendshipColumns+" FROM friendships f WHERE f.user1_id = ? AND f.user2_id = ?",
		user1ID, user2ID,
	)
	f, err := scanFriendship(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	return f, nil
}

// ListFriendships returns one page of the user's friendships, newest first.
func (s *SQLiteStore) ListFriendships(ctx context.Context, userID string, page storage.Page) ([]models.FriendshipView, storage.PageInfo, error) {
	page = page.Normalize(storage.DefaultFriendsLimit)

	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM friendships WHERE user1_id = ? OR user2_id = ?",
		userID, userID,
	).Scan(&total)
	if err != nil {
		return nil, storage.PageInfo{}, fmt.Errorf("failed to count friendships: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+friendshipColumns+`,
		        u1.id, u1.name, u1.email, u1.phone, u1.invited_by, u1.is_active, u1.created_at,
		        u2.id, u2.name, u2.email, u2.phone, u2.invited_by, u2.is_active, u2.created_at
		 FROM friendships f
		 JOIN users u1 ON u1.id = f.user1_id
		 JOIN users u2 ON u2.id = f.user2_id
		 WHERE f.user1_id = ? OR f.user2_id = ?
		 ORDER BY f.created_at DESC, f.id
		 LIMIT ? OFFSET ?`,
		userID, userID, page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, storage.PageInfo{}, fmt.Errorf("failed to list friendships: %w", err)
	}
	defer rows.Close()

	var views []models.FriendshipView
	for rows.Next() {
		var v models.FriendshipView
		var balance string
		f, u1, u2 := &v.Friendship, &v.User1, &v.User2
		if err := rows.Scan(
			&f.ID, &f.User1ID, &f.User2ID, &f.User1Nickname, &f.User2Nickname, &f.InvitedBy, &balance, &f.CreatedAt,
			&u1.ID, &u1.Name, &u1.Email, &u1.Phone, &u1.InvitedBy, &u1.IsActive, &u1.CreatedAt,
			&u2.ID, &u2.Name, &u2.Email, &u2.Phone, &u2.InvitedBy, &u2.IsActive, &u2.CreatedAt,
		); err != nil {
			return nil, storage.PageInfo{}, fmt.Errorf("failed to scan friendship: %w", err)
		}
		if f.NettBalance, err = decimal.NewFromString(balance); err != nil {
			return nil, storage.PageInfo{}, fmt.Errorf("invalid balance on friendship %s: %w", f.ID, err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.PageInfo{}, fmt.Errorf("failed to iterate friendships: %w", err)
	}

	return views, storage.NewPageInfo(page, total), nil
}

// FriendBalances returns every friendship record of the user.
func (s *SQLiteStore) FriendBalances(ctx context.Context, userID string) ([]models.Friendship, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+friendshipColumns+" FROM friendships f WHERE f.user1_id = ? OR f.user2_id = ? ORDER BY f.created_at DESC, f.id",
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend balances: %w", err)
	}
	defer rows.Close()

	var out []models.Friendship
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// applyDelta adds a canonical balance delta inside tx, creating the
// friendship when the pair has none yet.
func applyDelta(ctx context.Context, tx *sql.Tx, d models.BalanceDelta, invitedBy string, now int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO friendships (id, user1_id, user2_id, invited_by, nett_balance, created_at)
		 VALUES (?, ?, ?, ?, '0', ?)
		 ON CONFLICT (user1_id, user2_id) DO NOTHING`,
		ledger.FriendshipID(d.User1ID, d.User2ID), d.User1ID, d.User2ID, invitedBy, now,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure friendship: %w", err)
	}

	var current string
	err = tx.QueryRowContext(ctx,
		"SELECT nett_balance FROM friendships WHERE user1_id = ? AND user2_id = ?",
		d.User1ID, d.User2ID,
	).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read friendship balance: %w", err)
	}
	balance, err := decimal.NewFromString(current)
	if err != nil {
		return fmt.Errorf("invalid friendship balance %q: %w", current, err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE friendships SET nett_balance = ? WHERE user1_id = ? AND user2_id = ?",
		balance.Add(d.Amount), d.User1ID, d.User2ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update friendship balance: %w", err)
	}
	return nil
}

func scanFriendship(row rowScanner) (*models.Friendship, error) {
	f := &models.Friendship{}
	var balance string
	if err := row.Scan(&f.ID, &f.User1ID, &f.User2ID, &f.User1Nickname, &f.User2Nickname, &f.InvitedBy, &balance, &f.CreatedAt); err != nil {
		return nil, err
	}
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q: %w", balance, err)
	}
	f.NettBalance = b
	return f, nil
}

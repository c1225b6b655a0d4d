package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/jomsplit/internal/models"
)

// RecordContacts upserts the contacts, keeping the first InvitedAt.
func (s *SQLiteStore) RecordContacts(ctx context.Context, contacts []models.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	now := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range contacts {
		if c.InvitedAt == 0 {
			c.InvitedAt = now
		}
		if c.LastUsedAt == 0 {
			c.LastUsedAt = now
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contacts (owner_id, contact, name, invited_at, last_used_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (owner_id, contact) DO UPDATE SET
			     name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE contacts.name END,
			     last_used_at = excluded.last_used_at`,
			c.OwnerID, c.Contact, c.Name, c.InvitedAt, c.LastUsedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to record contact: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListContacts returns the owner's contacts, most recently used first.
func (s *SQLiteStore) ListContacts(ctx context.Context, ownerID string) ([]models.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT owner_id, contact, name, invited_at, last_used_at
		 FROM contacts WHERE owner_id = ?
		 ORDER BY last_used_at DESC, contact`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var out []models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.OwnerID, &c.Contact, &c.Name, &c.InvitedAt, &c.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

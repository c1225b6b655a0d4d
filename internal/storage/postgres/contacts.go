package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/jomsplit/internal/models"
)

// RecordContacts upserts the contacts, keeping the first InvitedAt.
func (s *Store) RecordContacts(ctx context.Context, contacts []models.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	now := time.Now().Unix()

	batch := &pgx.Batch{}
	for _, c := range contacts {
		if c.InvitedAt == 0 {
			c.InvitedAt = now
		}
		if c.LastUsedAt == 0 {
			c.LastUsedAt = now
		}
		batch.Queue(
			`INSERT INTO invited_contacts (owner_id, contact, name, invited_at, last_used_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (owner_id, contact) DO UPDATE SET
			     name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE invited_contacts.name END,
			     last_used_at = EXCLUDED.last_used_at`,
			c.OwnerID, c.Contact, c.Name, c.InvitedAt, c.LastUsedAt,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to record contacts: %w", err)
	}
	return nil
}

// ListContacts returns the owner's contacts, most recently used first.
func (s *Store) ListContacts(ctx context.Context, ownerID string) ([]models.Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT owner_id, contact, name, invited_at, last_used_at
		 FROM invited_contacts WHERE owner_id = $1
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

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/storage"
)

const receiptColumns = `r.id, r.owner_id, r.bill_id, r.name, r.category, r.notes, r.date, r.time, r.location, r.address,
	r.currency, r.subtotal_amount, r.tax_rate, r.tax_amount, r.service_charge_rate, r.service_charge_amount,
	r.rounding_adjustment, r.nett_amount, r.paid_by, r.split_method, r.items, r.file_url`

// SaveReceipt persists a confirmed receipt, its consumers and the resulting
// friendship balance changes in a single transaction.
func (s *SQLiteStore) SaveReceipt(ctx context.Context, cr *models.ConfirmedReceipt, deltas []models.BalanceDelta) error {
	r := &cr.Receipt
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if cr.CreatedAt == 0 {
		cr.CreatedAt = time.Now().Unix()
	}

	items, err := encodeJSON(r.Items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id, owner_id, bill_id, name, category, notes, date, time, location, address,
		     currency, subtotal_amount, tax_rate, tax_amount, service_charge_rate, service_charge_amount,
		     rounding_adjustment, nett_amount, paid_by, split_method, items, file_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, cr.OwnerID, r.BillID, r.Name, r.Category, r.Notes, r.Date, r.Time, r.Location, r.Address,
		r.Currency, r.SubtotalAmount, r.TaxRate, r.TaxAmount, r.ServiceChargeRate, r.ServiceChargeAmount,
		r.RoundingAdjustment, r.NettAmount, string(r.PaidBy), string(cr.SplitMethod), items, r.FileURL, cr.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("receipt %s: %w", r.ID, storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	for i := range cr.Consumers {
		c := &cr.Consumers[i]
		c.ReceiptID = r.ID
		c.CreatedAt = cr.CreatedAt
		breakdown, err := encodeJSON(c.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to encode breakdown: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO receipt_consumers (receipt_id, user_id, participant_id, name, contact, total_paid, breakdown, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ReceiptID, c.UserID, string(c.ParticipantID), c.Name, c.Contact, c.TotalPaid, breakdown, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert receipt consumer: %w", err)
		}
	}

	for _, d := range deltas {
		if err := applyDelta(ctx, tx, d, cr.OwnerID, cr.CreatedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetConsumerReceipt retrieves a receipt with one consumer's share of it.
func (s *SQLiteStore) GetConsumerReceipt(ctx context.Context, receiptID, userID string) (*models.ConsumerReceipt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+receiptColumns+`, c.total_paid, c.breakdown, c.created_at
		 FROM receipt_consumers c
		 JOIN receipts r ON r.id = c.receipt_id
		 WHERE c.receipt_id = ? AND c.user_id = ?`,
		receiptID, userID,
	)
	cr, err := scanConsumerReceipt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return cr, nil
}

// ListConsumerReceipts returns one page of the user's receipts, newest first.
func (s *SQLiteStore) ListConsumerReceipts(ctx context.Context, userID string, page storage.Page) ([]models.ConsumerReceipt, storage.PageInfo, error) {
	page = page.Normalize(storage.DefaultReceiptsLimit)

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM receipt_consumers WHERE user_id = ?", userID,
	).Scan(&total); err != nil {
		return nil, storage.PageInfo{}, fmt.Errorf("failed to count receipts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+receiptColumns+`, c.total_paid, c.breakdown, c.created_at
		 FROM receipt_consumers c
		 JOIN receipts r ON r.id = c.receipt_id
		 WHERE c.user_id = ?
		 ORDER BY c.created_at DESC, r.id
		 LIMIT ? OFFSET ?`,
		userID, page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, storage.PageInfo{}, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var out []models.ConsumerReceipt
	for rows.Next() {
		cr, err := scanConsumerReceipt(rows)
		if err != nil {
			return nil, storage.PageInfo{}, fmt.Errorf("failed to scan receipt: %w", err)
		}
		out = append(out, *cr)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.PageInfo{}, fmt.Errorf("failed to iterate receipts: %w", err)
	}

	return out, storage.NewPageInfo(page, total), nil
}

// SumConsumerTotals adds the user's consumer totals since the given time.
// Totals are summed in Go; SQLite would coerce the TEXT amounts to floats.
func (s *SQLiteStore) SumConsumerTotals(ctx context.Context, userID string, since int64) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT total_paid FROM receipt_consumers WHERE user_id = ? AND created_at >= ?",
		userID, since,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query consumer totals: %w", err)
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan consumer total: %w", err)
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid consumer total %q: %w", v, err)
		}
		sum = sum.Add(d)
	}
	return sum, rows.Err()
}

func scanConsumerReceipt(row rowScanner) (*models.ConsumerReceipt, error) {
	cr := &models.ConsumerReceipt{}
	r := &cr.Receipt
	var (
		paidBy, method, items, breakdown string
		subtotal, taxRate, tax, scRate   string
		sc, rounding, nett, total        string
	)
	if err := row.Scan(
		&r.ID, &cr.OwnerID, &r.BillID, &r.Name, &r.Category, &r.Notes, &r.Date, &r.Time, &r.Location, &r.Address,
		&r.Currency, &subtotal, &taxRate, &tax, &scRate, &sc,
		&rounding, &nett, &paidBy, &method, &items, &r.FileURL,
		&total, &breakdown, &cr.CreatedAt,
	); err != nil {
		return nil, err
	}

	amounts := []struct {
		src string
		dst *decimal.Decimal
	}{
		{subtotal, &r.SubtotalAmount},
		{taxRate, &r.TaxRate},
		{tax, &r.TaxAmount},
		{scRate, &r.ServiceChargeRate},
		{sc, &r.ServiceChargeAmount},
		{rounding, &r.RoundingAdjustment},
		{nett, &r.NettAmount},
		{total, &cr.TotalPaid},
	}
	for _, a := range amounts {
		v, err := decimal.NewFromString(a.src)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", a.src, err)
		}
		*a.dst = v
	}

	r.PaidBy = models.ParticipantID(paidBy)
	cr.SplitMethod = models.SplitMethod(method)
	if err := decodeJSON(items, &r.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	if err := decodeJSON(breakdown, &cr.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to decode breakdown: %w", err)
	}
	return cr, nil
}

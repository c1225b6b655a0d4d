package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/storage"
)

const receiptColumns = `r.id, r.owner_id, r.bill_id, r.name, r.category, r.notes, r.date, r.time, r.location, r.address,
	r.currency, r.subtotal_amount::text, r.tax_rate::text, r.tax_amount::text, r.service_charge_rate::text,
	r.service_charge_amount::text, r.rounding_adjustment::text, r.nett_amount::text, r.paid_by, r.split_method,
	r.items, r.file_url`

// SaveReceipt persists a confirmed receipt, its consumers and the resulting
// friendship balance changes in a single transaction.
func (s *Store) SaveReceipt(ctx context.Context, cr *models.ConfirmedReceipt, deltas []models.BalanceDelta) error {
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO receipts (id, owner_id, bill_id, name, category, notes, date, time, location, address,
		     currency, subtotal_amount, tax_rate, tax_amount, service_charge_rate, service_charge_amount,
		     rounding_adjustment, nett_amount, paid_by, split_method, items, file_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
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

	batch := &pgx.Batch{}
	for i := range cr.Consumers {
		c := &cr.Consumers[i]
		c.ReceiptID = r.ID
		c.CreatedAt = cr.CreatedAt
		breakdown, err := encodeJSON(c.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to encode breakdown: %w", err)
		}
		batch.Queue(
			`INSERT INTO receipt_consumers (receipt_id, user_id, participant_id, name, contact, total_paid, breakdown, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ReceiptID, c.UserID, string(c.ParticipantID), c.Name, c.Contact, c.TotalPaid, breakdown, c.CreatedAt,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert receipt consumers: %w", err)
		}
	}

	for _, d := range deltas {
		if err := applyDelta(ctx, tx, d, cr.OwnerID, cr.CreatedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetConsumerReceipt retrieves a receipt with one consumer's share of it.
func (s *Store) GetConsumerReceipt(ctx context.Context, receiptID, userID string) (*models.ConsumerReceipt, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+receiptColumns+`, c.total_paid::text, c.breakdown, c.created_at
		 FROM receipt_consumers c
		 JOIN receipts r ON r.id = c.receipt_id
		 WHERE c.receipt_id = $1 AND c.user_id = $2`,
		receiptID, userID,
	)
	cr, err := scanConsumerReceipt(row)
	if isNoRows(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return cr, nil
}

// ListConsumerReceipts returns one page of the user's receipts, newest first.
func (s *Store) ListConsumerReceipts(ctx context.Context, userID string, page storage.Page) ([]models.ConsumerReceipt, storage.PageInfo, error) {
	page = page.Normalize(storage.DefaultReceiptsLimit)

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM receipt_consumers WHERE user_id = $1", userID,
	).Scan(&total); err != nil {
		return nil, storage.PageInfo{}, fmt.Errorf("failed to count receipts: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+receiptColumns+`, c.total_paid::text, c.breakdown, c.created_at
		 FROM receipt_consumers c
		 JOIN receipts r ON r.id = c.receipt_id
		 WHERE c.user_id = $1
		 ORDER BY c.created_at DESC, r.id
		 LIMIT $2 OFFSET $3`,
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
func (s *Store) SumConsumerTotals(ctx context.Context, userID string, since int64) (decimal.Decimal, error) {
	var sum string
	err := s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(total_paid), 0)::text FROM receipt_consumers WHERE user_id = $1 AND created_at >= $2",
		userID, since,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum consumer totals: %w", err)
	}
	return parseAmount(sum)
}

func scanConsumerReceipt(row pgx.Row) (*models.ConsumerReceipt, error) {
	cr := &models.ConsumerReceipt{}
	r := &cr.Receipt
	var (
		paidBy, method                 string
		items, breakdown               []byte
		subtotal, taxRate, tax, scRate string
		sc, rounding, nett, total      string
	)
	if err := row.Scan(
		&r.ID, &cr.OwnerID, &r.BillID, &r.Name, &r.Category, &r.Notes, &r.Date, &r.Time, &r.Location, &r.Address,
		&r.Currency, &subtotal, &taxRate, &tax, &scRate,
		&sc, &rounding, &nett, &paidBy, &method,
		&items, &r.FileURL,
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
		v, err := parseAmount(a.src)
		if err != nil {
			return nil, err
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

package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/money"
)

var hundred = decimal.NewFromInt(100)

// EqualSplit divides the receipt's NettAmount evenly across participants and
// expresses each participant's share as item shares weighted by line total.
//
// Remainder cents go to the first participants in input order, so the
// totals sum to NettAmount rounded to the cent exactly. Each share's
// Percentage is 100/N regardless of item weighting.
//
// The input participants are not modified; their existing shares are replaced
// in the returned copy.
func EqualSplit(r *models.Receipt, participants []models.Participant) ([]models.Participant, error) {
	if err := ValidateReceipt(r); err != nil {
		return nil, err
	}
	if len(r.Items) == 0 {
		return nil, invalid("items", "at least one item is required for an equal split")
	}
	if err := ValidateParticipants(participants); err != nil {
		return nil, err
	}

	n := len(participants)
	totals, err := money.Split(r.NettAmount, n)
	if err != nil {
		return nil, err
	}
	percentage := hundred.DivRound(decimal.NewFromInt(int64(n)), 4)

	weights := make([]decimal.Decimal, len(r.Items))
	itemsTotal := decimal.Zero
	for i, item := range r.Items {
		weights[i] = item.LineTotal()
		itemsTotal = itemsTotal.Add(weights[i])
	}

	out := make([]models.Participant, n)
	for i, p := range participants {
		values := decompose(money.Cents(totals[i]), weights, itemsTotal)
		shares := make([]models.ItemShare, len(r.Items))
		for j, item := range r.Items {
			shares[j] = models.ItemShare{
				ItemID:     item.ID,
				Value:      money.FromCents(values[j]),
				Percentage: percentage,
				SplitType:  models.SplitTypeEqual,
			}
		}
		out[i] = models.Participant{
			ID:        p.ID,
			Name:      p.Name,
			Contact:   p.Contact,
			TotalPaid: totals[i],
			ItemsPaid: shares,
		}
	}
	return out, nil
}

// decompose spreads share cents over items in proportion to weights, rounding
// each item to the cent. The residual left by rounding goes to the last
// weighted item, or is taken back from the end when rounding overshot, so the
// values always sum to share.
func decompose(share int64, weights []decimal.Decimal, total decimal.Decimal) []int64 {
	values := make([]int64, len(weights))
	if len(weights) == 0 {
		return values
	}
	if !total.IsPositive() {
		values[0] = share
		return values
	}

	shareAmount := money.FromCents(share)
	last := 0
	var assigned int64
	for i, w := range weights {
		if w.IsPositive() {
			last = i
		}
		values[i] = money.Cents(shareAmount.Mul(w).Div(total))
		assigned += values[i]
	}

	residual := share - assigned
	if residual > 0 {
		values[last] += residual
	}
	for i := len(values) - 1; i >= 0 && residual < 0; i-- {
		take := min(values[i], -residual)
		values[i] -= take
		residual += take
	}
	return values
}

// SplitItem replaces every share of one item with an equal split of its line
// total across assignees. Leftover cents go to the first assignees.
func SplitItem(r *models.Receipt, participants []models.Participant, itemID string, assignees []models.ParticipantID) ([]models.Participant, error) {
	if r == nil {
		return nil, invalid("receipt", "receipt is required")
	}
	item, ok := r.Item(itemID)
	if !ok {
		return nil, &ItemNotFoundError{ItemID: itemID}
	}
	if err := ValidateParticipants(participants); err != nil {
		return nil, err
	}
	if len(assignees) == 0 {
		return nil, invalid("assignees", "at least one assignee is required")
	}
	seen := make(map[models.ParticipantID]bool, len(assignees))
	for _, id := range assignees {
		if indexOf(participants, id) < 0 {
			return nil, invalid("assignees", "unknown participant '%s'", id)
		}
		if seen[id] {
			return nil, invalid("assignees", "duplicate assignee '%s'", id)
		}
		seen[id] = true
	}

	parts, err := money.Split(item.LineTotal(), len(assignees))
	if err != nil {
		return nil, err
	}
	percentage := hundred.DivRound(decimal.NewFromInt(int64(len(assignees))), 4)

	out := withoutItem(participants, itemID)
	for i, id := range assignees {
		idx := indexOf(out, id)
		out[idx].ItemsPaid = append(out[idx].ItemsPaid, models.ItemShare{
			ItemID:     itemID,
			Value:      parts[i],
			Percentage: percentage,
			SplitType:  models.SplitTypeEqual,
		})
	}
	return recompute(out), nil
}

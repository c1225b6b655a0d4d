package calculator

import (
	"github.com/mmynk/jomsplit/internal/models"
)

// ValidateReceipt checks the structural invariants of a receipt.
// Reconciliation against NettAmount is not checked here; see VerifyReceipt.
func ValidateReceipt(r *models.Receipt) error {
	if r == nil {
		return invalid("receipt", "receipt is required")
	}
	if !r.NettAmount.IsPositive() {
		return invalid("nett_amount", "must be greater than zero, got %s", r.NettAmount)
	}

	seen := make(map[string]bool, len(r.Items))
	adjusted := 0
	for i, item := range r.Items {
		if item.ID == "" {
			return invalid("items", "item %d has no id", i+1)
		}
		if seen[item.ID] {
			return invalid("items", "duplicate item id '%s'", item.ID)
		}
		seen[item.ID] = true

		if item.Quantity <= 0 {
			return invalid("items.quantity", "item '%s' has non-positive quantity %d", item.ID, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return invalid("items.unit_price", "item '%s' has negative unit price", item.ID)
		}
		if item.NettPrice.IsNegative() {
			return invalid("items.nett_price", "item '%s' has negative nett price", item.ID)
		}
		if !item.RoundingAdjustment.IsZero() {
			adjusted++
		}
	}
	if adjusted > 1 {
		return invalid("items.rounding_adjustment", "at most one item may carry a rounding adjustment, found %d", adjusted)
	}
	return nil
}

// ValidateParticipants requires a non-empty list of uniquely identified participants.
func ValidateParticipants(ps []models.Participant) error {
	if len(ps) == 0 {
		return invalid("participants", "at least one participant is required")
	}
	seen := make(map[models.ParticipantID]bool, len(ps))
	for i, p := range ps {
		if p.ID == "" {
			return invalid("participants", "participant %d has no id", i+1)
		}
		if seen[p.ID] {
			return invalid("participants", "duplicate participant '%s'", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

func indexOf(ps []models.Participant, id models.ParticipantID) int {
	for i, p := range ps {
		if p.ID == id {
			return i
		}
	}
	return -1
}

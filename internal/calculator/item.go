package calculator

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/money"
)

// PercentageAssignment gives one participant a percentage of an item.
type PercentageAssignment struct {
	ParticipantID models.ParticipantID `json:"participant_id"`
	Percentage    decimal.Decimal      `json:"percentage"`
}

// MoveItem moves the share of itemID held by from to the end of to's shares,
// unchanged, and recomputes both totals. The input is not modified.
func MoveItem(participants []models.Participant, itemID string, from, to models.ParticipantID) ([]models.Participant, error) {
	fi := indexOf(participants, from)
	if fi < 0 {
		return nil, invalid("from", "unknown participant '%s'", from)
	}
	ti := indexOf(participants, to)
	if ti < 0 {
		return nil, invalid("to", "unknown participant '%s'", to)
	}
	si := slices.IndexFunc(participants[fi].ItemsPaid, func(s models.ItemShare) bool {
		return s.ItemID == itemID
	})
	if si < 0 {
		return nil, &ItemNotFoundError{ItemID: itemID, ParticipantID: from}
	}

	out := models.CloneParticipants(participants)
	share := out[fi].ItemsPaid[si]
	out[fi].ItemsPaid = slices.Delete(out[fi].ItemsPaid, si, si+1)
	out[ti].ItemsPaid = append(out[ti].ItemsPaid, share)

	out[fi].TotalPaid = shareTotal(out[fi].ItemsPaid)
	out[ti].TotalPaid = shareTotal(out[ti].ItemsPaid)
	return out, nil
}

// MoveAllItems moves every share held by from to to.
func MoveAllItems(participants []models.Participant, from, to models.ParticipantID) ([]models.Participant, error) {
	fi := indexOf(participants, from)
	if fi < 0 {
		return nil, invalid("from", "unknown participant '%s'", from)
	}
	ti := indexOf(participants, to)
	if ti < 0 {
		return nil, invalid("to", "unknown participant '%s'", to)
	}

	out := models.CloneParticipants(participants)
	if fi == ti {
		return out, nil
	}
	out[ti].ItemsPaid = append(out[ti].ItemsPaid, out[fi].ItemsPaid...)
	out[fi].ItemsPaid = []models.ItemShare{}

	out[fi].TotalPaid = decimal.Zero
	out[ti].TotalPaid = shareTotal(out[ti].ItemsPaid)
	return out, nil
}

// AssignItemPercentages replaces every share of one item with the given
// percentages of its line total. Percentages are not normalized: a sum below
// 100 leaves the rest unassigned, and a sum above 100 is reported by
// CheckCoverage rather than corrected.
func AssignItemPercentages(r *models.Receipt, participants []models.Participant, itemID string, assignments []PercentageAssignment) ([]models.Participant, error) {
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
	seen := make(map[models.ParticipantID]bool, len(assignments))
	for _, a := range assignments {
		if indexOf(participants, a.ParticipantID) < 0 {
			return nil, invalid("assignments", "unknown participant '%s'", a.ParticipantID)
		}
		if seen[a.ParticipantID] {
			return nil, invalid("assignments", "duplicate participant '%s'", a.ParticipantID)
		}
		seen[a.ParticipantID] = true
		if a.Percentage.IsNegative() || a.Percentage.GreaterThan(hundred) {
			return nil, invalid("assignments.percentage", "percentage %s for '%s' is outside 0-100", a.Percentage, a.ParticipantID)
		}
	}

	line := item.LineTotal()
	out := withoutItem(participants, itemID)
	for _, a := range assignments {
		if a.Percentage.IsZero() {
			continue
		}
		idx := indexOf(out, a.ParticipantID)
		out[idx].ItemsPaid = append(out[idx].ItemsPaid, models.ItemShare{
			ItemID:     itemID,
			Value:      money.Round(line.Mul(a.Percentage).Div(hundred)),
			Percentage: a.Percentage,
			SplitType:  models.SplitTypePercentage,
		})
	}
	return recompute(out), nil
}

// RecomputeTotals sets every participant's TotalPaid to the sum of its share
// values. It must follow any change to ItemsPaid. The input is not modified.
func RecomputeTotals(participants []models.Participant) []models.Participant {
	return recompute(models.CloneParticipants(participants))
}

func recompute(ps []models.Participant) []models.Participant {
	for i := range ps {
		ps[i].TotalPaid = shareTotal(ps[i].ItemsPaid)
	}
	return ps
}

func shareTotal(shares []models.ItemShare) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Value)
	}
	return total
}

// withoutItem returns a copy of ps with every share of itemID removed.
func withoutItem(ps []models.Participant, itemID string) []models.Participant {
	out := models.CloneParticipants(ps)
	for i := range out {
		out[i].ItemsPaid = slices.DeleteFunc(out[i].ItemsPaid, func(s models.ItemShare) bool {
			return s.ItemID == itemID
		})
	}
	return out
}

package models

import "github.com/shopspring/decimal"

// SplitType tags how an ItemShare was produced.
type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypeManual     SplitType = "manual"
	SplitTypePercentage SplitType = "percentage"
)

// Valid reports whether t is one of the known split types.
func (t SplitType) Valid() bool {
	switch t {
	case SplitTypeEqual, SplitTypeManual, SplitTypePercentage:
		return true
	}
	return false
}

// Participant is one person sharing a receipt.
type Participant struct {
	ID      ParticipantID `json:"id"`
	Name    string        `json:"name,omitempty"`
	Contact string        `json:"contact,omitempty"`

	// TotalPaid is the amount this participant owes for the receipt.
	// It always equals the sum of ItemsPaid values after a recompute.
	TotalPaid decimal.Decimal `json:"total_paid"`

	ItemsPaid []ItemShare `json:"items_paid"`
}

// ItemShare is the portion of one item attributed to one participant.
type ItemShare struct {
	ItemID string          `json:"item_id"`
	Value  decimal.Decimal `json:"value"`

	// Percentage is the share of the item in the range 0–100. Under
	// SplitTypeEqual it is 100/N by convention and not item-weighted.
	Percentage decimal.Decimal `json:"percentage"`

	SplitType SplitType `json:"split_type"`
}

// Clone returns a deep copy of p.
func (p Participant) Clone() Participant {
	c := p
	if p.ItemsPaid != nil {
		c.ItemsPaid = make([]ItemShare, len(p.ItemsPaid))
		copy(c.ItemsPaid, p.ItemsPaid)
	}
	return c
}

// CloneParticipants deep-copies a participant list.
func CloneParticipants(ps []Participant) []Participant {
	if ps == nil {
		return nil
	}
	out := make([]Participant, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

package models

import "github.com/shopspring/decimal"

// Receipt is a structured purchase as returned by the structuring backend.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	// Empty until the receipt is persisted.
	ID string `json:"id,omitempty"`

	// BillID is the human readable reference the backend generates,
	// e.g. "BILL20250606-001".
	BillID string `json:"bill_id,omitempty"`

	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Notes    string `json:"notes,omitempty"`

	// Date and Time are kept as printed on the receipt ("2006-01-02", "15:04").
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Location string `json:"location,omitempty"`
	Address  string `json:"address,omitempty"`

	// Currency is an ISO 4217 code. Empty means the deployment default.
	Currency string `json:"currency,omitempty"`

	SubtotalAmount      decimal.Decimal `json:"subtotal_amount"`
	TaxRate             decimal.Decimal `json:"tax_rate"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
	ServiceChargeRate   decimal.Decimal `json:"service_charge_rate"`
	ServiceChargeAmount decimal.Decimal `json:"service_charge_amount"`
	RoundingAdjustment  decimal.Decimal `json:"rounding_adjustment"`

	// NettAmount is the authoritative total.
	NettAmount decimal.Decimal `json:"nett_amount"`

	// PaidBy is the participant who paid the bill (the receipt owner).
	PaidBy ParticipantID `json:"paid_by,omitempty"`

	Items []Item `json:"items"`

	FileURL string `json:"file_url,omitempty"`
}

// Item is one line on a receipt.
type Item struct {
	// ID is unique within the receipt; item order is stable.
	ID string `json:"id"`

	Name     string `json:"name"`
	Quantity int    `json:"quantity"`

	// UnitPrice is the pre-tax unit price.
	UnitPrice decimal.Decimal `json:"unit_price"`

	// NettPrice is the unit price after tax and service charge.
	NettPrice decimal.Decimal `json:"nett_price"`

	TaxAmount decimal.Decimal `json:"tax_amount"`

	// RoundingAdjustment marks the single item that absorbs the receipt's
	// residual cents. Zero on every other item.
	RoundingAdjustment decimal.Decimal `json:"rounding_adjustment"`
}

// LineTotal is NettPrice × Quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.NettPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Item returns the item with the given ID.
func (r *Receipt) Item(id string) (Item, bool) {
	for _, item := range r.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Package api holds the request and response messages of the jomsplit.v1
// services. Messages are plain JSON; amounts are decimal strings.
package api

import "github.com/shopspring/decimal"

type Item struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	NettPrice          decimal.Decimal `json:"nett_price"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	RoundingAdjustment decimal.Decimal `json:"rounding_adjustment"`
}

type Receipt struct {
	ID                  string          `json:"id,omitempty"`
	BillID              string          `json:"bill_id,omitempty"`
	Name                string          `json:"name"`
	Category            string          `json:"category,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	Date                string          `json:"date,omitempty"`
	Time                string          `json:"time,omitempty"`
	Location            string          `json:"location,omitempty"`
	Address             string          `json:"address,omitempty"`
	Currency            string          `json:"currency,omitempty"`
	SubtotalAmount      decimal.Decimal `json:"subtotal_amount"`
	TaxRate             decimal.Decimal `json:"tax_rate"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
	ServiceChargeRate   decimal.Decimal `json:"service_charge_rate"`
	ServiceChargeAmount decimal.Decimal `json:"service_charge_amount"`
	RoundingAdjustment  decimal.Decimal `json:"rounding_adjustment"`
	NettAmount          decimal.Decimal `json:"nett_amount"`
	PaidBy              string          `json:"paid_by,omitempty"`
	Items               []Item          `json:"items"`
	FileURL             string          `json:"file_url,omitempty"`
}

type ItemShare struct {
	ItemID     string          `json:"item_id"`
	Value      decimal.Decimal `json:"value"`
	Percentage decimal.Decimal `json:"percentage"`
	SplitType  string          `json:"split_type"`
}

// Participant ids are "user:<id>", "email:<address>" or "phone:<digits>".
// Bare emails and phone numbers are accepted on input.
type Participant struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	Contact   string          `json:"contact,omitempty"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	ItemsPaid []ItemShare     `json:"items_paid"`
}

type BalanceReport struct {
	ComputedTotal      decimal.Decimal `json:"computed_total"`
	AuthoritativeTotal decimal.Decimal `json:"authoritative_total"`
	Difference         decimal.Decimal `json:"difference"`
	Accurate           bool            `json:"accurate"`

	// Display is the badge text, e.g. "Bill is accurate".
	Display string `json:"display"`
}

type ItemCoverage struct {
	ItemID             string          `json:"item_id"`
	LineTotal          decimal.Decimal `json:"line_total"`
	AssignedValue      decimal.Decimal `json:"assigned_value"`
	AssignedPercentage decimal.Decimal `json:"assigned_percentage"`
}

type Warning struct {
	Kind    string `json:"kind"`
	ItemID  string `json:"item_id,omitempty"`
	Message string `json:"message"`
}

// Allocation is the result of running a split policy over a receipt.
type Allocation struct {
	Policy         string         `json:"policy"`
	Participants   []Participant  `json:"participants"`
	ReceiptBalance BalanceReport  `json:"receipt_balance"`
	SplitBalance   BalanceReport  `json:"split_balance"`
	Coverage       []ItemCoverage `json:"coverage"`
	Warnings       []Warning      `json:"warnings"`
}

type PercentageAssignment struct {
	ParticipantID string          `json:"participant_id"`
	Percentage    decimal.Decimal `json:"percentage"`
}

type PageInfo struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

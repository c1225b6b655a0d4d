package models

import "github.com/shopspring/decimal"

// SplitMethod records which policy produced a confirmed receipt's shares.
type SplitMethod string

const (
	SplitMethodEqual     SplitMethod = "equal"
	SplitMethodItemBased SplitMethod = "item_based"
)

// ConfirmedReceipt is a receipt plus its final allocation, ready to persist.
type ConfirmedReceipt struct {
	Receipt Receipt

	// OwnerID is the user who paid and confirmed the receipt.
	OwnerID string

	SplitMethod SplitMethod
	Consumers   []ReceiptConsumer

	// CreatedAt is the Unix timestamp when the receipt was confirmed.
	CreatedAt int64
}

// ReceiptConsumer is one participant's row for a confirmed receipt.
type ReceiptConsumer struct {
	ReceiptID     string
	UserID        string
	ParticipantID ParticipantID
	Name          string
	Contact       string
	TotalPaid     decimal.Decimal
	Breakdown     []ItemShare
	CreatedAt     int64
}

// ConsumerReceipt is a confirmed receipt as seen by one of its consumers.
type ConsumerReceipt struct {
	Receipt     Receipt
	OwnerID     string
	SplitMethod SplitMethod
	TotalPaid   decimal.Decimal
	Breakdown   []ItemShare
	CreatedAt   int64
}

// Contact is an address the owner has split a bill with, remembered for reuse.
type Contact struct {
	OwnerID    string
	Contact    string
	Name       string
	InvitedAt  int64
	LastUsedAt int64
}

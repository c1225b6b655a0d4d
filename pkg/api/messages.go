package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// SplitService

type AllocateRequest struct {
	Receipt      Receipt       `json:"receipt"`
	Participants []Participant `json:"participants"`

	// Policy is "equal" or "item_based". Empty means item_based.
	Policy string `json:"policy"`
}

type AllocateResponse struct {
	Allocation Allocation `json:"allocation"`
}

type VerifyReceiptRequest struct {
	Receipt      Receipt       `json:"receipt"`
	Participants []Participant `json:"participants,omitempty"`
}

type VerifyReceiptResponse struct {
	Receipt BalanceReport `json:"receipt"`

	// Split is set when participants were given.
	Split *BalanceReport `json:"split,omitempty"`
}

type MoveItemRequest struct {
	Receipt      Receipt       `json:"receipt"`
	Participants []Participant `json:"participants"`
	ItemID       string        `json:"item_id,omitempty"`
	From         string        `json:"from"`
	To           string        `json:"to"`

	// All moves every share held by From; ItemID is ignored.
	All bool `json:"all,omitempty"`
}

type MoveItemResponse struct {
	Allocation Allocation `json:"allocation"`
}

// SplitItemRequest splits one item equally among Assignees, or by
// Percentages when those are given.
type SplitItemRequest struct {
	Receipt      Receipt                `json:"receipt"`
	Participants []Participant          `json:"participants"`
	ItemID       string                 `json:"item_id"`
	Assignees    []string               `json:"assignees,omitempty"`
	Percentages  []PercentageAssignment `json:"percentages,omitempty"`
}

type SplitItemResponse struct {
	Allocation Allocation `json:"allocation"`
}

// DraftService

type Draft struct {
	ID           string        `json:"id"`
	OwnerID      string        `json:"owner_id,omitempty"`
	Stage        string        `json:"stage"`
	Policy       string        `json:"policy"`
	Receipt      Receipt       `json:"receipt"`
	Participants []Participant `json:"participants"`
	Confidence   float64       `json:"confidence,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	ExpiresAt    time.Time     `json:"expires_at"`

	// Allocation is the verification of the current participants.
	Allocation Allocation `json:"allocation"`
}

// CreateDraftRequest takes either the structuring backend's JSON in
// Structured, or a typed Receipt.
type CreateDraftRequest struct {
	Structured   json.RawMessage `json:"structured,omitempty"`
	Receipt      *Receipt        `json:"receipt,omitempty"`
	Participants []Participant   `json:"participants,omitempty"`
	Policy       string          `json:"policy,omitempty"`
}

type DraftResponse struct {
	Draft Draft `json:"draft"`
}

type GetDraftRequest struct {
	DraftID string `json:"draft_id"`
}

// UpdateDraftRequest replaces the receipt and/or participants during review.
type UpdateDraftRequest struct {
	DraftID      string        `json:"draft_id"`
	Receipt      *Receipt      `json:"receipt,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
}

type ApplySplitRequest struct {
	DraftID string `json:"draft_id"`
	Policy  string `json:"policy"`
}

type MoveDraftItemRequest struct {
	DraftID string `json:"draft_id"`
	ItemID  string `json:"item_id,omitempty"`
	From    string `json:"from"`
	To      string `json:"to"`
	All     bool   `json:"all,omitempty"`
}

type AssignDraftItemRequest struct {
	DraftID     string                 `json:"draft_id"`
	ItemID      string                 `json:"item_id"`
	Assignees   []string               `json:"assignees,omitempty"`
	Percentages []PercentageAssignment `json:"percentages,omitempty"`
}

type ConfirmDraftRequest struct {
	DraftID string `json:"draft_id"`
}

type ConfirmDraftResponse struct {
	ReceiptID string `json:"receipt_id"`

	// Notified is the number of notifications queued.
	Notified int `json:"notified"`
}

type AbandonDraftRequest struct {
	DraftID string `json:"draft_id"`
}

type AbandonDraftResponse struct{}

// ReceiptService

type ReceiptShare struct {
	Receipt     Receipt         `json:"receipt"`
	OwnerID     string          `json:"owner_id"`
	SplitMethod string          `json:"split_method"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Breakdown   []ItemShare     `json:"breakdown"`
	CreatedAt   int64           `json:"created_at"`
}

type GetReceiptRequest struct {
	ReceiptID string `json:"receipt_id"`
}

type GetReceiptResponse struct {
	Receipt ReceiptShare `json:"receipt"`
}

type ListReceiptsRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type ListReceiptsResponse struct {
	Receipts []ReceiptShare `json:"receipts"`
	PageInfo PageInfo       `json:"page_info"`
}

type GetExpenseSummaryRequest struct {
	// Period is "Today", "Weekly" or "This Month" (the default).
	Period string `json:"period"`
}

type GetExpenseSummaryResponse struct {
	Period  string          `json:"period"`
	Since   int64           `json:"since"`
	Total   decimal.Decimal `json:"total"`
	Display string          `json:"display"`
}

// FriendService

type Friend struct {
	FriendID    string          `json:"friend_id"`
	Name        string          `json:"name"`
	Contact     string          `json:"contact,omitempty"`
	Since       int64           `json:"since"`
	NettBalance decimal.Decimal `json:"nett_balance"`
}

type AddFriendRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

type AddFriendResponse struct {
	Friend Friend `json:"friend"`
}

type ListFriendsRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type ListFriendsResponse struct {
	Friends  []Friend `json:"friends"`
	PageInfo PageInfo `json:"page_info"`

	// Totals are over every friendship, not only this page.
	OwedToYou decimal.Decimal `json:"owed_to_you"`
	YouOwe    decimal.Decimal `json:"you_owe"`
	Nett      decimal.Decimal `json:"nett"`
}

type Contact struct {
	Contact    string `json:"contact"`
	Name       string `json:"name"`
	InvitedAt  int64  `json:"invited_at"`
	LastUsedAt int64  `json:"last_used_at"`
}

type ListContactsRequest struct{}

type ListContactsResponse struct {
	Contacts []Contact `json:"contacts"`
}

package calculator

import (
	"strings"

	"github.com/mmynk/jomsplit/internal/models"
)

// Policy selects how Allocate produces participant shares.
type Policy string

const (
	// PolicyEqual divides NettAmount evenly; see EqualSplit.
	PolicyEqual Policy = "equal"
	// PolicyItemBased keeps the caller's shares and recomputes totals.
	PolicyItemBased Policy = "item_based"
)

// ParsePolicy accepts "equal", "item_based" and "item-based". An empty string
// is item-based, the structuring backend's default.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equal":
		return PolicyEqual, nil
	case "", "item_based", "item-based":
		return PolicyItemBased, nil
	}
	return "", invalid("policy", "unknown split policy '%s'", s)
}

// SplitMethod maps the policy to the persisted split method.
func (p Policy) SplitMethod() models.SplitMethod {
	if p == PolicyEqual {
		return models.SplitMethodEqual
	}
	return models.SplitMethodItemBased
}

// Allocation is the full result of running a policy over a receipt.
type Allocation struct {
	Policy       Policy               `json:"policy"`
	Participants []models.Participant `json:"participants"`

	// ReceiptBalance is VerifyReceipt: do the items match the receipt total.
	ReceiptBalance BalanceReport `json:"receipt_balance"`

	// SplitBalance is VerifySplit: do the participant totals match it.
	SplitBalance BalanceReport `json:"split_balance"`

	Coverage []ItemCoverage `json:"coverage"`
	Warnings []Warning      `json:"warnings"`
}

// Allocate runs policy over the receipt. It is pure: repeated calls with the
// same inputs return identical results and never modify the inputs.
func Allocate(r *models.Receipt, participants []models.Participant, policy Policy) (*Allocation, error) {
	var (
		allocated []models.Participant
		err       error
	)
	switch policy {
	case PolicyEqual:
		allocated, err = EqualSplit(r, participants)
	case PolicyItemBased:
		if err = ValidateReceipt(r); err == nil {
			err = ValidateParticipants(participants)
		}
		if err == nil {
			allocated = RecomputeTotals(participants)
		}
	default:
		err = invalid("policy", "unknown split policy '%s'", policy)
	}
	if err != nil {
		return nil, err
	}

	coverage, warnings := CheckCoverage(r, allocated)
	return &Allocation{
		Policy:         policy,
		Participants:   allocated,
		ReceiptBalance: VerifyReceipt(r),
		SplitBalance:   VerifySplit(r, allocated),
		Coverage:       coverage,
		Warnings:       warnings,
	}, nil
}

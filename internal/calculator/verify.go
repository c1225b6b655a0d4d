package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/money"
)

// BalanceReport compares a computed total against the receipt's NettAmount.
// Difference is ComputedTotal − AuthoritativeTotal, rounded to the cent.
type BalanceReport struct {
	ComputedTotal      decimal.Decimal `json:"computed_total"`
	AuthoritativeTotal decimal.Decimal `json:"authoritative_total"`
	Difference         decimal.Decimal `json:"difference"`
}

// Accurate reports whether the difference is zero at cent precision.
func (b BalanceReport) Accurate() bool {
	return b.Difference.IsZero()
}

// VerifyReceipt checks that the items reconcile to NettAmount:
// Σ nettPrice × quantity + roundingAdjustment − nettAmount.
// A nonzero difference flags structuring inaccuracy; it is never an error.
func VerifyReceipt(r *models.Receipt) BalanceReport {
	computed := r.RoundingAdjustment
	for _, item := range r.Items {
		computed = computed.Add(item.LineTotal())
	}
	return report(computed, r.NettAmount)
}

// VerifySplit checks that participant totals add up to NettAmount. This is the
// split-correctness check and is independent of VerifyReceipt.
func VerifySplit(r *models.Receipt, participants []models.Participant) BalanceReport {
	computed := decimal.Zero
	for _, p := range participants {
		computed = computed.Add(p.TotalPaid)
	}
	return report(computed, r.NettAmount)
}

func report(computed, authoritative decimal.Decimal) BalanceReport {
	return BalanceReport{
		ComputedTotal:      computed,
		AuthoritativeTotal: authoritative,
		Difference:         money.Round(computed.Sub(authoritative)),
	}
}

// WarningKind classifies a non-blocking allocation problem.
type WarningKind string

const (
	WarningOverAllocated  WarningKind = "over_allocated"
	WarningUnassigned     WarningKind = "unassigned"
	WarningUnknownItem    WarningKind = "unknown_item"
	WarningPriceBelowUnit WarningKind = "price_below_unit"
)

// Warning is returned as data alongside an allocation, never as an error.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	ItemID  string      `json:"item_id,omitempty"`
	Message string      `json:"message"`
}

// ItemCoverage is how much of one item the participants' shares account for.
type ItemCoverage struct {
	ItemID             string          `json:"item_id"`
	LineTotal          decimal.Decimal `json:"line_total"`
	AssignedValue      decimal.Decimal `json:"assigned_value"`
	AssignedPercentage decimal.Decimal `json:"assigned_percentage"`
}

// CheckCoverage sums each item's share percentages across participants and
// warns about over-allocated (above 100%) and partially unassigned items.
// Percentages within Tolerance of 100 count as fully assigned. Each equal
// share widens the band by the 4 dp rounding its 100/N percentage carries.
func CheckCoverage(r *models.Receipt, participants []models.Participant) ([]ItemCoverage, []Warning) {
	coverage := make([]ItemCoverage, len(r.Items))
	index := make(map[string]int, len(r.Items))
	var warnings []Warning

	for i, item := range r.Items {
		index[item.ID] = i
		coverage[i] = ItemCoverage{
			ItemID:             item.ID,
			LineTotal:          item.LineTotal(),
			AssignedValue:      decimal.Zero,
			AssignedPercentage: decimal.Zero,
		}
		if taxesNonNegative(r) && item.NettPrice.LessThan(item.UnitPrice) {
			warnings = append(warnings, Warning{
				Kind:    WarningPriceBelowUnit,
				ItemID:  item.ID,
				Message: fmt.Sprintf("nett price %s is below unit price %s", item.NettPrice, item.UnitPrice),
			})
		}
	}

	slack := make([]decimal.Decimal, len(r.Items))
	for i := range slack {
		slack[i] = money.Tolerance
	}
	unknown := make(map[string]bool)
	for _, p := range participants {
		for _, s := range p.ItemsPaid {
			i, ok := index[s.ItemID]
			if !ok {
				if !unknown[s.ItemID] {
					unknown[s.ItemID] = true
					warnings = append(warnings, Warning{
						Kind:    WarningUnknownItem,
						ItemID:  s.ItemID,
						Message: fmt.Sprintf("share held by '%s' references an item not on the receipt", p.ID),
					})
				}
				continue
			}
			coverage[i].AssignedValue = coverage[i].AssignedValue.Add(s.Value)
			coverage[i].AssignedPercentage = coverage[i].AssignedPercentage.Add(s.Percentage)
			if s.SplitType == models.SplitTypeEqual {
				slack[i] = slack[i].Add(percentageRounding)
			}
		}
	}

	for i, c := range coverage {
		switch {
		case c.AssignedPercentage.GreaterThan(hundred.Add(slack[i])):
			warnings = append(warnings, Warning{
				Kind:    WarningOverAllocated,
				ItemID:  c.ItemID,
				Message: fmt.Sprintf("item is assigned %s%%", c.AssignedPercentage),
			})
		case c.AssignedPercentage.LessThan(hundred.Sub(slack[i])):
			warnings = append(warnings, Warning{
				Kind:    WarningUnassigned,
				ItemID:  c.ItemID,
				Message: fmt.Sprintf("only %s%% of the item is assigned", c.AssignedPercentage),
			})
		}
	}
	return coverage, warnings
}

// percentageRounding is the most a percentage rounded to 4 dp can be off.
var percentageRounding = decimal.New(5, -5)

func taxesNonNegative(r *models.Receipt) bool {
	return !r.TaxRate.IsNegative() && !r.TaxAmount.IsNegative() &&
		!r.ServiceChargeRate.IsNegative() && !r.ServiceChargeAmount.IsNegative()
}

// Package money holds the fixed-point helpers every money path goes through.
// Amounts are decimal.Decimal; anything that has to balance to the cent is
// done in int64 minor units.
package money

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a receipt carries no currency code.
const DefaultCurrency = "MYR"

// Tolerance is the largest difference treated as "within rounding".
var Tolerance = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// Round rounds to two decimal places, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Cents converts an amount to minor units after rounding it.
func Cents(d decimal.Decimal) int64 {
	return Round(d).Mul(hundred).IntPart()
}

// FromCents converts minor units back to an amount.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// Sum adds amounts without intermediate rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// WithinTolerance reports whether a and b differ by at most Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// Split divides total into n parts that sum to Round(total) exactly.
// Leftover cents go to the first parts, one each.
func Split(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, fmt.Errorf("cannot split into %d parts", n)
	}
	parts, err := gomoney.New(Cents(total), gomoney.USD).Split(n)
	if err != nil {
		return nil, fmt.Errorf("failed to split amount: %w", err)
	}
	out := make([]decimal.Decimal, len(parts))
	for i, p := range parts {
		out[i] = FromCents(p.Amount())
	}
	return out, nil
}

// Display formats an amount with the currency's symbol, e.g. "RM12.50".
// Unknown or empty codes fall back to DefaultCurrency.
func Display(d decimal.Decimal, currency string) string {
	code := normalizeCode(currency)
	m := gomoney.New(Cents(d), code)
	return m.Display()
}

// DisplayError renders the reconciliation badge text for a verifier difference.
func DisplayError(difference decimal.Decimal, currency string) string {
	if Round(difference).IsZero() {
		return "Bill is accurate"
	}
	return "Error difference = " + Display(difference, currency)
}

func normalizeCode(currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return DefaultCurrency
	}
	if gomoney.GetCurrency(code) == nil {
		return DefaultCurrency
	}
	return code
}

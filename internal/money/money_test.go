package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"21.95", "21.95"},
		{"33.335", "33.34"},
		{"33.334", "33.33"},
		{"-0.125", "-0.13"},
		{"12.950000762939453", "12.95"},
	}
	for _, tt := range tests {
		if got := Round(d(tt.in)); !got.Equal(d(tt.want)) {
			t.Errorf("Round(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	if got := Cents(d("55.68")); got != 5568 {
		t.Errorf("Cents(55.68) = %d, want 5568", got)
	}
	if got := FromCents(3334); !got.Equal(d("33.34")) {
		t.Errorf("FromCents(3334) = %s, want 33.34", got)
	}
}

func TestSplit(t *testing.T) {
	parts, err := Split(d("100.00"), 3)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	want := []string{"33.34", "33.33", "33.33"}
	for i, w := range want {
		if !parts[i].Equal(d(w)) {
			t.Errorf("part %d = %s, want %s", i, parts[i], w)
		}
	}
	if total := Sum(parts...); !total.Equal(d("100")) {
		t.Errorf("parts sum to %s, want 100", total)
	}

	if _, err := Split(d("10"), 0); err == nil {
		t.Error("expected error splitting into zero parts")
	}
}

func TestDisplay(t *testing.T) {
	if got := Display(d("12.5"), "MYR"); !strings.Contains(got, "RM") || !strings.Contains(got, "12.50") {
		t.Errorf("Display(12.5, MYR) = %q, want RM and 12.50", got)
	}
	if got, want := Display(d("3"), ""), Display(d("3"), "MYR"); got != want {
		t.Errorf("Display with empty code = %q, want default currency %q", got, want)
	}
}

func TestDisplayError(t *testing.T) {
	if got := DisplayError(d("0.001"), "MYR"); got != "Bill is accurate" {
		t.Errorf("DisplayError(0.001) = %q", got)
	}
	if got := DisplayError(d("0.50"), "MYR"); got != "Error difference = "+Display(d("0.50"), "MYR") {
		t.Errorf("DisplayError(0.50) = %q", got)
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(d("10.00"), d("10.01")) {
		t.Error("10.00 and 10.01 should be within tolerance")
	}
	if WithinTolerance(d("10.00"), d("10.02")) {
		t.Error("10.00 and 10.02 should not be within tolerance")
	}
}

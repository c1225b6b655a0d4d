package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/money"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func people(names ...string) []models.Participant {
	ps := make([]models.Participant, len(names))
	for i, n := range names {
		ps[i] = models.Participant{ID: models.ParticipantID("user:" + n), Name: n}
	}
	return ps
}

// lunchReceipt reconciles exactly: 20.88 + 2 × 17.40 = 55.68.
func lunchReceipt() *models.Receipt {
	return &models.Receipt{
		Name:       "Nasi Kandar",
		NettAmount: d("55.68"),
		Items: []models.Item{
			{ID: "1", Name: "Nasi Lemak", Quantity: 1, UnitPrice: d("18.00"), NettPrice: d("20.88")},
			{ID: "2", Name: "Teh Tarik", Quantity: 2, UnitPrice: d("15.00"), NettPrice: d("17.40")},
		},
	}
}

func singleItemReceipt(nett string) *models.Receipt {
	return &models.Receipt{
		NettAmount: d(nett),
		Items:      []models.Item{{ID: "1", Quantity: 1, UnitPrice: d(nett), NettPrice: d(nett)}},
	}
}

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name         string
		receipt      *models.Receipt
		participants []models.Participant
		wantErr      error
		validateFunc func(t *testing.T, got []models.Participant)
	}{
		{
			name:         "first participant absorbs the extra cent",
			receipt:      singleItemReceipt("100.00"),
			participants: people("Alice", "Bob", "Charlie"),
			validateFunc: func(t *testing.T, got []models.Participant) {
				want := []string{"33.34", "33.33", "33.33"}
				for i, w := range want {
					if !got[i].TotalPaid.Equal(d(w)) {
						t.Errorf("%s total = %s, want %s", got[i].Name, got[i].TotalPaid, w)
					}
				}
			},
		},
		{
			name:         "shares weighted by line total",
			receipt:      lunchReceipt(),
			participants: people("Alice", "Bob", "Charlie"),
			validateFunc: func(t *testing.T, got []models.Participant) {
				// Alice: 33.34 of 55.68 -> 12.5025 and 20.8375 round to 12.50 and 20.84.
				alice := got[0]
				if !alice.TotalPaid.Equal(d("18.56")) {
					t.Errorf("Alice total = %s, want 18.56", alice.TotalPaid)
				}
				if len(alice.ItemsPaid) != 2 {
					t.Fatalf("Alice has %d shares, want 2", len(alice.ItemsPaid))
				}
				for _, s := range alice.ItemsPaid {
					if s.SplitType != models.SplitTypeEqual {
						t.Errorf("share split type = %q, want equal", s.SplitType)
					}
					if !s.Percentage.Equal(d("33.3333")) {
						t.Errorf("share percentage = %s, want 33.3333", s.Percentage)
					}
				}
			},
		},
		{
			name:         "two people split evenly across items",
			receipt:      lunchReceipt(),
			participants: people("Alice", "Bob"),
			validateFunc: func(t *testing.T, got []models.Participant) {
				for _, p := range got {
					if !p.ItemsPaid[0].Value.Equal(d("10.44")) {
						t.Errorf("%s item 1 = %s, want 10.44", p.Name, p.ItemsPaid[0].Value)
					}
					if !p.ItemsPaid[1].Value.Equal(d("17.40")) {
						t.Errorf("%s item 2 = %s, want 17.40", p.Name, p.ItemsPaid[1].Value)
					}
				}
			},
		},
		{
			name:         "no participants",
			receipt:      lunchReceipt(),
			participants: nil,
			wantErr:      ErrInvalidInput,
		},
		{
			name:         "zero nett amount",
			receipt:      singleItemReceipt("0"),
			participants: people("Alice"),
			wantErr:      ErrInvalidInput,
		},
		{
			name:         "no items",
			receipt:      &models.Receipt{NettAmount: d("10")},
			participants: people("Alice"),
			wantErr:      ErrInvalidInput,
		},
		{
			name:         "duplicate participant",
			receipt:      lunchReceipt(),
			participants: append(people("Alice"), people("Alice")...),
			wantErr:      ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EqualSplit(tt.receipt, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("EqualSplit() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("EqualSplit() unexpected error: %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, got)
			}
		})
	}
}

func TestEqualSplitExactness(t *testing.T) {
	amounts := []string{"0.01", "0.05", "1.00", "10.005", "55.68", "99.99", "100.00", "1234.57"}
	for _, amount := range amounts {
		for n := 1; n <= 7; n++ {
			r := lunchReceipt()
			r.NettAmount = d(amount)
			names := make([]string, n)
			for i := range names {
				names[i] = string(rune('A' + i))
			}

			got, err := EqualSplit(r, people(names...))
			if err != nil {
				t.Fatalf("EqualSplit(%s, %d) failed: %v", amount, n, err)
			}

			total := decimal.Zero
			for _, p := range got {
				if p.TotalPaid.IsNegative() {
					t.Errorf("EqualSplit(%s, %d): negative total %s", amount, n, p.TotalPaid)
				}
				items := decimal.Zero
				for _, s := range p.ItemsPaid {
					if s.Value.IsNegative() {
						t.Errorf("EqualSplit(%s, %d): negative item share %s", amount, n, s.Value)
					}
					items = items.Add(s.Value)
				}
				if !items.Equal(p.TotalPaid) {
					t.Errorf("EqualSplit(%s, %d): items sum %s != total %s", amount, n, items, p.TotalPaid)
				}
				total = total.Add(p.TotalPaid)
			}
			if !total.Equal(money.Round(d(amount))) {
				t.Errorf("EqualSplit(%s, %d): totals sum to %s", amount, n, total)
			}
		}
	}
}

func TestEqualSplitDeterministic(t *testing.T) {
	r := lunchReceipt()
	ps := people("Alice", "Bob", "Charlie")

	first, err := EqualSplit(r, ps)
	if err != nil {
		t.Fatalf("EqualSplit failed: %v", err)
	}
	second, err := EqualSplit(r, ps)
	if err != nil {
		t.Fatalf("EqualSplit failed: %v", err)
	}
	assertSameParticipants(t, first, second)

	for _, p := range ps {
		if len(p.ItemsPaid) != 0 {
			t.Errorf("input participant %s was modified", p.Name)
		}
	}
}

func TestDecompose(t *testing.T) {
	// Four equal weights of a 2 cent share round up to 1 cent each; the
	// overshoot is taken back from the end.
	weights := []decimal.Decimal{d("1"), d("1"), d("1"), d("1")}
	got := decompose(2, weights, d("4"))
	want := []int64{1, 1, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("decompose()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	// Free items only: everything lands on the first item.
	got = decompose(500, []decimal.Decimal{d("0"), d("0")}, d("0"))
	if got[0] != 500 || got[1] != 0 {
		t.Errorf("decompose() with zero weights = %v, want [500 0]", got)
	}
}

func TestSplitItem(t *testing.T) {
	r := singleItemReceipt("10.00")
	ps := people("Alice", "Bob", "Charlie")
	ps[0].ItemsPaid = []models.ItemShare{{ItemID: "1", Value: d("10.00"), Percentage: d("100"), SplitType: models.SplitTypeManual}}

	got, err := SplitItem(r, ps, "1", []models.ParticipantID{ps[1].ID, ps[2].ID, ps[0].ID})
	if err != nil {
		t.Fatalf("SplitItem failed: %v", err)
	}
	// 10.00 / 3 -> 3.34 to the first assignee (Bob), 3.33 to the others.
	wantTotals := map[string]string{"Alice": "3.33", "Bob": "3.34", "Charlie": "3.33"}
	for _, p := range got {
		if len(p.ItemsPaid) != 1 {
			t.Fatalf("%s has %d shares, want 1", p.Name, len(p.ItemsPaid))
		}
		if !p.TotalPaid.Equal(d(wantTotals[p.Name])) {
			t.Errorf("%s total = %s, want %s", p.Name, p.TotalPaid, wantTotals[p.Name])
		}
	}

	if _, err := SplitItem(r, ps, "missing", []models.ParticipantID{ps[0].ID}); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("SplitItem(missing) error = %v, want ErrItemNotFound", err)
	}
	if _, err := SplitItem(r, ps, "1", []models.ParticipantID{"user:Zed"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SplitItem(unknown assignee) error = %v, want ErrInvalidInput", err)
	}
	if _, err := SplitItem(r, ps, "1", nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SplitItem(no assignees) error = %v, want ErrInvalidInput", err)
	}
}

func assertSameParticipants(t *testing.T, a, b []models.Participant) {
	t.Helper()
	if len(a) != len(b) {
		t.Fatalf("participant count %d != %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || !a[i].TotalPaid.Equal(b[i].TotalPaid) {
			t.Errorf("participant %d differs: %+v vs %+v", i, a[i], b[i])
		}
		if len(a[i].ItemsPaid) != len(b[i].ItemsPaid) {
			t.Fatalf("participant %d share count %d != %d", i, len(a[i].ItemsPaid), len(b[i].ItemsPaid))
		}
		for j := range a[i].ItemsPaid {
			sa, sb := a[i].ItemsPaid[j], b[i].ItemsPaid[j]
			if sa.ItemID != sb.ItemID || !sa.Value.Equal(sb.Value) || !sa.Percentage.Equal(sb.Percentage) || sa.SplitType != sb.SplitType {
				t.Errorf("participant %d share %d differs: %+v vs %+v", i, j, sa, sb)
			}
		}
	}
}

package calculator

import (
	"errors"
	"testing"

	"github.com/mmynk/jomsplit/internal/models"
)

func assignedLunch() []models.Participant {
	ps := people("Alice", "Bob")
	ps[0].ItemsPaid = []models.ItemShare{
		{ItemID: "1", Value: d("20.88"), Percentage: d("100"), SplitType: models.SplitTypeManual},
	}
	ps[1].ItemsPaid = []models.ItemShare{
		{ItemID: "2", Value: d("34.80"), Percentage: d("100"), SplitType: models.SplitTypeManual},
	}
	return RecomputeTotals(ps)
}

func TestMoveItem(t *testing.T) {
	ps := assignedLunch()

	got, err := MoveItem(ps, "1", ps[0].ID, ps[1].ID)
	if err != nil {
		t.Fatalf("MoveItem failed: %v", err)
	}
	if !got[0].TotalPaid.IsZero() {
		t.Errorf("Alice total = %s, want 0", got[0].TotalPaid)
	}
	if !got[1].TotalPaid.Equal(d("55.68")) {
		t.Errorf("Bob total = %s, want 55.68", got[1].TotalPaid)
	}
	if last := got[1].ItemsPaid[len(got[1].ItemsPaid)-1]; last.ItemID != "1" || !last.Value.Equal(d("20.88")) {
		t.Errorf("moved share = %+v, want item 1 worth 20.88 at the end", last)
	}
	if len(ps[0].ItemsPaid) != 1 || !ps[0].TotalPaid.Equal(d("20.88")) {
		t.Error("MoveItem modified its input")
	}

	before := ps[0].TotalPaid.Add(ps[1].TotalPaid)
	after := got[0].TotalPaid.Add(got[1].TotalPaid)
	if !before.Equal(after) {
		t.Errorf("move changed the combined total: %s -> %s", before, after)
	}
}

func TestMoveItemErrors(t *testing.T) {
	ps := assignedLunch()
	tests := []struct {
		name    string
		itemID  string
		from    models.ParticipantID
		to      models.ParticipantID
		wantErr error
	}{
		{"share not held", "2", ps[0].ID, ps[1].ID, ErrItemNotFound},
		{"unknown item", "9", ps[0].ID, ps[1].ID, ErrItemNotFound},
		{"unknown source", "1", "user:Zed", ps[1].ID, ErrInvalidInput},
		{"unknown target", "1", ps[0].ID, "user:Zed", ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MoveItem(ps, tt.itemID, tt.from, tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("MoveItem() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	_, err := MoveItem(ps, "2", ps[0].ID, ps[1].ID)
	var notFound *ItemNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *ItemNotFoundError, got %T", err)
	}
	if notFound.ItemID != "2" || notFound.ParticipantID != ps[0].ID {
		t.Errorf("ItemNotFoundError = %+v", notFound)
	}
}

func TestMoveAllItems(t *testing.T) {
	ps := assignedLunch()

	got, err := MoveAllItems(ps, ps[1].ID, ps[0].ID)
	if err != nil {
		t.Fatalf("MoveAllItems failed: %v", err)
	}
	if len(got[0].ItemsPaid) != 2 || !got[0].TotalPaid.Equal(d("55.68")) {
		t.Errorf("Alice = %+v, want both items totalling 55.68", got[0])
	}
	if len(got[1].ItemsPaid) != 0 || !got[1].TotalPaid.IsZero() {
		t.Errorf("Bob = %+v, want nothing", got[1])
	}

	same, err := MoveAllItems(ps, ps[0].ID, ps[0].ID)
	if err != nil {
		t.Fatalf("MoveAllItems to self failed: %v", err)
	}
	assertSameParticipants(t, ps, same)
}

func TestAssignItemPercentages(t *testing.T) {
	r := lunchReceipt()
	ps := assignedLunch()

	got, err := AssignItemPercentages(r, ps, "2", []PercentageAssignment{
		{ParticipantID: ps[0].ID, Percentage: d("25")},
		{ParticipantID: ps[1].ID, Percentage: d("75")},
	})
	if err != nil {
		t.Fatalf("AssignItemPercentages failed: %v", err)
	}
	// Item 2 line total is 34.80: 25% = 8.70, 75% = 26.10.
	if !got[0].TotalPaid.Equal(d("29.58")) {
		t.Errorf("Alice total = %s, want 29.58", got[0].TotalPaid)
	}
	if !got[1].TotalPaid.Equal(d("26.10")) {
		t.Errorf("Bob total = %s, want 26.10", got[1].TotalPaid)
	}
	for _, s := range got[1].ItemsPaid {
		if s.SplitType != models.SplitTypePercentage {
			t.Errorf("share split type = %q, want percentage", s.SplitType)
		}
	}

	bad := []struct {
		name        string
		assignments []PercentageAssignment
	}{
		{"above 100", []PercentageAssignment{{ParticipantID: ps[0].ID, Percentage: d("101")}}},
		{"negative", []PercentageAssignment{{ParticipantID: ps[0].ID, Percentage: d("-1")}}},
		{"duplicate", []PercentageAssignment{{ParticipantID: ps[0].ID, Percentage: d("10")}, {ParticipantID: ps[0].ID, Percentage: d("10")}}},
		{"unknown participant", []PercentageAssignment{{ParticipantID: "user:Zed", Percentage: d("10")}}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := AssignItemPercentages(r, ps, "2", tt.assignments); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRecomputeTotalsIdempotent(t *testing.T) {
	ps := assignedLunch()
	once := RecomputeTotals(ps)
	twice := RecomputeTotals(once)
	assertSameParticipants(t, once, twice)
}

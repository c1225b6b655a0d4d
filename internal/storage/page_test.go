package storage

import "testing"

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		def  int
		want Page
	}{
		{"zero value uses default", Page{}, DefaultFriendsLimit, Page{Number: 1, Limit: 4}},
		{"keeps valid page", Page{Number: 3, Limit: 10}, DefaultReceiptsLimit, Page{Number: 3, Limit: 10}},
		{"caps limit", Page{Number: 1, Limit: 500}, DefaultReceiptsLimit, Page{Number: 1, Limit: MaxPageLimit}},
		{"negative page", Page{Number: -2, Limit: 5}, DefaultReceiptsLimit, Page{Number: 1, Limit: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(tt.def); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		page      Page
		total     int
		wantPages int
		wantMore  bool
	}{
		{Page{Number: 1, Limit: 5}, 0, 0, false},
		{Page{Number: 1, Limit: 5}, 5, 1, false},
		{Page{Number: 1, Limit: 5}, 6, 2, true},
		{Page{Number: 2, Limit: 5}, 6, 2, false},
		{Page{Number: 2, Limit: 4}, 9, 3, true},
	}
	for _, tt := range tests {
		info := NewPageInfo(tt.page, tt.total)
		if info.TotalPages != tt.wantPages || info.HasMore != tt.wantMore || info.Total != tt.total {
			t.Errorf("NewPageInfo(%+v, %d) = %+v", tt.page, tt.total, info)
		}
	}
	if got := (Page{Number: 3, Limit: 4}).Offset(); got != 8 {
		t.Errorf("Offset() = %d, want 8", got)
	}
}

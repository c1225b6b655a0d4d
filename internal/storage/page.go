package storage

// MaxPageLimit caps every listing.
const MaxPageLimit = 50

// Default page sizes of the listings.
const (
	DefaultFriendsLimit  = 4
	DefaultReceiptsLimit = 5
)

// Page selects a 1-based page of a listing.
type Page struct {
	Number int
	Limit  int
}

// Normalize clamps the page to Number >= 1 and 1 <= Limit <= MaxPageLimit,
// using defaultLimit when no limit was given.
func (p Page) Normalize(defaultLimit int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset is the number of rows before the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// PageInfo describes where a page sits in the full listing.
type PageInfo struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// NewPageInfo computes PageInfo for a normalized page over total rows.
func NewPageInfo(p Page, total int) PageInfo {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return PageInfo{
		Page:       p.Number,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: pages,
		HasMore:    p.Number*p.Limit < total,
	}
}

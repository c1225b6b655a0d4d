package ledger

import (
	"strings"
	"time"
)

// Period names accepted by the expense summary.
const (
	PeriodToday     = "Today"
	PeriodWeekly    = "Weekly"
	PeriodThisMonth = "This Month"
)

// PeriodStart returns the start of the window named by period, in now's
// location. Unknown names fall back to This Month.
func PeriodStart(period string, now time.Time) time.Time {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case "weekly", "week":
		return now.AddDate(0, 0, -7)
	}
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

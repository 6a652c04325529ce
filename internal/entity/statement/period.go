package statement

import (
	"fmt"
	"time"

	"github.com/spendfree/spendfree/internal/entity/expense"
)

// Period renders a calendar month as the "mm-yyyy" cache key segment.
func Period(month, year int) string {
	return fmt.Sprintf("%02d-%04d", month, year)
}

// PeriodOfDate maps an ISO expense date onto its period. Unparseable input
// yields the empty string; callers skip those.
func PeriodOfDate(date string) string {
	t, err := time.Parse(expense.DateLayout, date)
	if err != nil {
		return ""
	}
	return Period(int(t.Month()), t.Year())
}

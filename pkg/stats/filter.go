package stats

import (
	"time"

	"github.com/persely/persely/pkg/expense"
	"github.com/persely/persely/pkg/period"
	"github.com/persely/persely/pkg/user"
)

// MonthFormat is the wire format of the month filter value.
const MonthFormat = "2006-01"

// Filter selects the date window of the budget view. The zero value selects
// everything.
type Filter struct {
	Mode      user.FilterMode
	Month     string
	PeriodUid string
}

// FilterByDate returns the expenses falling inside the filter's window. An
// empty mode, an empty month, or a period uid that matches no known period
// leaves the list untouched rather than hiding data behind a stale
// selection. The filter is pure; now resolves the open end of the latest
// salary period.
func FilterByDate(items []expense.Expense, f Filter, periods []period.SalaryPeriod, now time.Time) []expense.Expense {
	switch f.Mode {
	case user.FilterByMonth:
		if f.Month == "" {
			return items
		}
		return filterItems(items, func(e expense.Expense) bool {
			return e.Date.Format(MonthFormat) == f.Month
		})
	case user.FilterByPeriod:
		selected := findPeriod(periods, f.PeriodUid)
		if selected == nil {
			return items
		}
		return filterItems(items, func(e expense.Expense) bool {
			return selected.Contains(e.Date, now)
		})
	default:
		return items
	}
}

func filterItems(items []expense.Expense, keep func(expense.Expense) bool) []expense.Expense {
	result := make([]expense.Expense, 0, len(items))
	for _, item := range items {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}

func findPeriod(periods []period.SalaryPeriod, uid string) *period.SalaryPeriod {
	if uid == "" {
		return nil
	}
	for i := range periods {
		if periods[i].Uid == uid {
			return &periods[i]
		}
	}
	return nil
}

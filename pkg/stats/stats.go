package stats

import (
	"github.com/persely/persely/pkg/category"
	"github.com/persely/persely/pkg/expense"
	"github.com/shopspring/decimal"
)

// CategoryTotal is the amount attributed to one category over the filtered
// expenses: the primary splits of expenses filed under it plus the secondary
// splits spilling over from other categories.
type CategoryTotal struct {
	Category category.Category
	Total    decimal.Decimal
}

// Summary is the aggregated budget view for one filter selection.
type Summary struct {
	Categories []CategoryTotal
	// MonthlyTotal is the full spending over the filtered window. Unsorted
	// expenses are folded in when the user's settings say so.
	MonthlyTotal decimal.Decimal
	// RecurringTotal sums all recurring expenses regardless of the filter.
	RecurringTotal          decimal.Decimal
	EffectiveBudget         decimal.Decimal
	RemainingBudget         decimal.Decimal
	RemainingAfterRecurring decimal.Decimal
	// Expenses is the filtered sorted collection the totals were computed
	// from, in date order. The CSV export renders exactly these rows.
	Expenses []expense.Expense
}

type StatsRenderer interface {
	RenderStats(summary Summary) (string, error)
}

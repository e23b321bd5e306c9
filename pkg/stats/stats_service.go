package stats

import (
	"context"
	"fmt"

	"github.com/persely/persely/internal/utils"
	"github.com/persely/persely/pkg/budget"
	"github.com/persely/persely/pkg/category"
	"github.com/persely/persely/pkg/expense"
	"github.com/persely/persely/pkg/period"
	"github.com/persely/persely/pkg/user"
	"github.com/shopspring/decimal"
)

type StatsService interface {
	// GetStats aggregates the budget view under the given filter. A filter
	// with an empty mode falls back to the user's persisted selection.
	GetStats(ctx context.Context, f Filter) (Summary, error)
}

type StatsServiceImpl struct {
	expenseService expense.Service
	periodService  period.Service
	budgetService  budget.Service
	userService    user.Service
	clock          utils.Clock
}

func NewStatsService(
	expenseService expense.Service,
	periodService period.Service,
	budgetService budget.Service,
	userService user.Service,
	clock utils.Clock,
) *StatsServiceImpl {
	return &StatsServiceImpl{
		expenseService: expenseService,
		periodService:  periodService,
		budgetService:  budgetService,
		userService:    userService,
		clock:          clock,
	}
}

func (s *StatsServiceImpl) GetStats(ctx context.Context, f Filter) (Summary, error) {
	currentUser, err := s.userService.GetCurrentUser(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if f.Mode == "" {
		f = Filter{
			Mode:      currentUser.Settings.FilterMode,
			Month:     currentUser.Settings.FilterMonth,
			PeriodUid: currentUser.Settings.FilterPeriodUid,
		}
	}

	sorted, err := s.expenseService.ListSorted(ctx)
	if err != nil {
		return Summary{}, err
	}
	unsorted, err := s.expenseService.ListUnsorted(ctx)
	if err != nil {
		return Summary{}, err
	}
	periods, err := s.periodService.GetAll(ctx)
	if err != nil {
		return Summary{}, err
	}

	now := s.clock.Now()
	filtered := FilterByDate(sorted, f, periods, now)
	filteredUnsorted := FilterByDate(unsorted, f, periods, now)

	categories := make([]CategoryTotal, 0, len(category.All()))
	for _, c := range category.All() {
		categories = append(categories, CategoryTotal{
			Category: c,
			Total:    categoryTotal(filtered, c),
		})
	}

	monthlyTotal := sumFullPrices(filtered)
	if currentUser.Settings.IncludeUnsortedInTotal {
		monthlyTotal = monthlyTotal.Add(sumFullPrices(filteredUnsorted))
	}

	recurringTotal := decimal.Zero
	for _, e := range sorted {
		if e.IsRecurring {
			recurringTotal = recurringTotal.Add(e.FullPrice)
		}
	}

	effectiveBudget, err := s.budgetService.EffectiveBudget(ctx, f.Mode, f.PeriodUid)
	if err != nil {
		return Summary{}, err
	}
	remaining := effectiveBudget.Sub(monthlyTotal)

	return Summary{
		Categories:              categories,
		MonthlyTotal:            monthlyTotal,
		RecurringTotal:          recurringTotal,
		EffectiveBudget:         effectiveBudget,
		RemainingBudget:         remaining,
		RemainingAfterRecurring: remaining.Sub(recurringTotal),
		Expenses:                filtered,
	}, nil
}

// categoryTotal attributes to c the primary split of expenses filed under it
// and the secondary split of expenses spilling into it.
func categoryTotal(items []expense.Expense, c category.Category) decimal.Decimal {
	total := decimal.Zero
	for _, e := range items {
		if e.PrimaryCategory == string(c) {
			total = total.Add(e.PrimarySplit())
		}
		if e.SecondaryCategory == string(c) {
			total = total.Add(e.SecondarySplit())
		}
	}
	return total
}

func sumFullPrices(items []expense.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range items {
		total = total.Add(e.FullPrice)
	}
	return total
}

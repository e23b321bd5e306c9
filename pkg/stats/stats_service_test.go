package stats

import (
	"context"
	"testing"
	"time"

	"github.com/persely/persely/internal/utils"
	"github.com/persely/persely/pkg/budget"
	"github.com/persely/persely/pkg/category"
	"github.com/persely/persely/pkg/expense"
	"github.com/persely/persely/pkg/period"
	"github.com/persely/persely/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expenseRepoStub = expense.NewStubExpenseRepo()

var periodRepoStub = period.NewStubPeriodRepo()

var budgetRepoStub = budget.NewStubBudgetRepo()

var userRepoStub = user.NewStubUserRepo()

var clock = &utils.MockClock{FixedNow: time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)}

var expenseService expense.Service

var periodService period.Service

var service StatsService

func setup(t *testing.T, settings user.Settings) (context.Context, func()) {
	userService := user.NewUserService(userRepoStub)
	expenseService = expense.NewExpenseService(expenseRepoStub, clock)
	budgetService := budget.NewBudgetService(budgetRepoStub, periodRepoStub, decimal.NewFromInt(500000))
	periodService = period.NewPeriodService(periodRepoStub, userService, budgetService, clock)
	service = NewStatsService(expenseService, periodService, budgetService, userService, clock)

	stored, err := userRepoStub.Store(context.Background(), user.User{
		Uid:         "test-user",
		Email:       "test@example.com",
		DisplayName: "Test User",
		Settings:    settings,
	})
	require.NoError(t, err)
	ctx := user.WithUser(context.Background(), stored)

	return ctx, func() {
		t.Log("Teardown after test")
		expenseRepoStub.Cleanup()
		periodRepoStub.Cleanup()
		budgetRepoStub.Cleanup()
		userRepoStub.Cleanup()
	}
}

func defaultSettings() user.Settings {
	return user.Settings{IncludeUnsortedInTotal: true, FilterMode: user.FilterByMonth}
}

func addSorted(t *testing.T, ctx context.Context, name string, price int64, d time.Time, cat category.Category, recurring bool) {
	t.Helper()
	_, err := expenseService.Create(ctx, expense.Expense{
		Name:            name,
		FullPrice:       decimal.NewFromInt(price),
		Date:            d,
		PrimaryCategory: string(cat),
		CategoryMatch:   100,
		IsRecurring:     recurring,
	})
	require.NoError(t, err)
}

func TestStatsServiceImpl_GetStats(t *testing.T) {
	t.Run("should compute remaining budgets for the documented scenario", func(t *testing.T) {
		// budget 500000, monthly spending 30000, recurring 20000 outside the
		// window: remaining 470000, after recurring 450000
		ctx, teardown := setup(t, defaultSettings())
		defer teardown()

		// given
		addSorted(t, ctx, "Groceries", 18000, date(2024, time.March, 3), category.EssentialMaintenance, false)
		addSorted(t, ctx, "Cinema", 12000, date(2024, time.March, 9), category.PlannedSocial, false)
		addSorted(t, ctx, "Gym", 20000, date(2024, time.February, 1), category.GrowthInvestment, true)

		// when
		summary, err := service.GetStats(ctx, Filter{Mode: user.FilterByMonth, Month: "2024-03"})

		// then
		assert.NoError(t, err)
		assert.True(t, decimal.NewFromInt(30000).Equal(summary.MonthlyTotal), "monthly total was %s", summary.MonthlyTotal)
		assert.True(t, decimal.NewFromInt(20000).Equal(summary.RecurringTotal), "recurring total was %s", summary.RecurringTotal)
		assert.True(t, decimal.NewFromInt(500000).Equal(summary.EffectiveBudget))
		assert.True(t, decimal.NewFromInt(470000).Equal(summary.RemainingBudget), "remaining was %s", summary.RemainingBudget)
		assert.True(t, decimal.NewFromInt(450000).Equal(summary.RemainingAfterRecurring), "after recurring was %s", summary.RemainingAfterRecurring)
	})

	t.Run("should attribute split expenses to both categories and keep totals consistent", func(t *testing.T) {
		ctx, teardown := setup(t, defaultSettings())
		defer teardown()

		// given a 70/30 split between social and comfort
		_, err := expenseService.Create(ctx, expense.Expense{
			Name:              "Board game night",
			FullPrice:         decimal.NewFromInt(10000),
			Date:              date(2024, time.March, 9),
			PrimaryCategory:   string(category.PlannedSocial),
			CategoryMatch:     70,
			SecondaryCategory: string(category.ImpulseComfort),
		})
		require.NoError(t, err)
		addSorted(t, ctx, "Groceries", 5000, date(2024, time.March, 3), category.EssentialMaintenance, false)

		// when
		summary, err := service.GetStats(ctx, Filter{Mode: user.FilterByMonth, Month: "2024-03"})

		// then
		require.NoError(t, err)
		totals := map[category.Category]decimal.Decimal{}
		for _, c := range summary.Categories {
			totals[c.Category] = c.Total
		}
		assert.True(t, decimal.NewFromInt(7000).Equal(totals[category.PlannedSocial]))
		assert.True(t, decimal.NewFromInt(3000).Equal(totals[category.ImpulseComfort]))
		assert.True(t, decimal.NewFromInt(5000).Equal(totals[category.EssentialMaintenance]))

		sumOfCategories := decimal.Zero
		for _, c := range summary.Categories {
			sumOfCategories = sumOfCategories.Add(c.Total)
		}
		assert.True(t, summary.MonthlyTotal.Equal(sumOfCategories),
			"monthly total %s does not match category sum %s", summary.MonthlyTotal, sumOfCategories)
	})

	t.Run("should fold unsorted expenses into the monthly total when enabled", func(t *testing.T) {
		ctx, teardown := setup(t, defaultSettings())
		defer teardown()

		// given
		addSorted(t, ctx, "Groceries", 10000, date(2024, time.March, 3), category.EssentialMaintenance, false)
		_, err := expenseService.CreateUnsorted(ctx, expense.Expense{
			Name:      "Mystery",
			FullPrice: decimal.NewFromInt(2500),
			Date:      date(2024, time.March, 5),
		})
		require.NoError(t, err)

		// when
		summary, err := service.GetStats(ctx, Filter{Mode: user.FilterByMonth, Month: "2024-03"})

		// then
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(12500).Equal(summary.MonthlyTotal), "monthly total was %s", summary.MonthlyTotal)
	})

	t.Run("should leave unsorted expenses out of the monthly total when disabled", func(t *testing.T) {
		settings := defaultSettings()
		settings.IncludeUnsortedInTotal = false
		ctx, teardown := setup(t, settings)
		defer teardown()

		// given
		addSorted(t, ctx, "Groceries", 10000, date(2024, time.March, 3), category.EssentialMaintenance, false)
		_, err := expenseService.CreateUnsorted(ctx, expense.Expense{
			Name:      "Mystery",
			FullPrice: decimal.NewFromInt(2500),
			Date:      date(2024, time.March, 5),
		})
		require.NoError(t, err)

		// when
		summary, err := service.GetStats(ctx, Filter{Mode: user.FilterByMonth, Month: "2024-03"})

		// then
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(10000).Equal(summary.MonthlyTotal), "monthly total was %s", summary.MonthlyTotal)
	})

	t.Run("should count recurring expenses regardless of the filter window", func(t *testing.T) {
		ctx, teardown := setup(t, defaultSettings())
		defer teardown()

		// given a recurring expense long before the filtered month
		addSorted(t, ctx, "Insurance", 15000, date(2023, time.June, 1), category.EssentialMaintenance, true)

		// when
		summary, err := service.GetStats(ctx, Filter{Mode: user.FilterByMonth, Month: "2024-03"})

		// then
		require.NoError(t, err)
		assert.True(t, summary.MonthlyTotal.IsZero())
		assert.True(t, decimal.NewFromInt(15000).Equal(summary.RecurringTotal))
	})

	t.Run("should use the selected period's budget and window", func(t *testing.T) {
		ctx, teardown := setup(t, defaultSettings())
		defer teardown()

		// given two periods with the second owning a custom budget
		_, err := periodService.Create(ctx, date(2024, time.January, 15))
		require.NoError(t, err)
		second, err := periodService.Create(ctx, date(2024, time.February, 15))
		require.NoError(t, err)
		err = periodService.SetBudget(ctx, second.Uid, decimal.NewFromInt(430000))
		require.NoError(t, err)

		addSorted(t, ctx, "In first period", 10000, date(2024, time.February, 1), category.EssentialMaintenance, false)
		addSorted(t, ctx, "In second period", 20000, date(2024, time.February, 15), category.EssentialMaintenance, false)

		// when
		summary, err := service.GetStats(ctx, Filter{Mode: user.FilterByPeriod, PeriodUid: second.Uid})

		// then
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(20000).Equal(summary.MonthlyTotal), "monthly total was %s", summary.MonthlyTotal)
		assert.True(t, decimal.NewFromInt(430000).Equal(summary.EffectiveBudget))
		assert.True(t, decimal.NewFromInt(410000).Equal(summary.RemainingBudget))
	})

	t.Run("should fall back to the persisted filter selection when none is given", func(t *testing.T) {
		settings := defaultSettings()
		settings.FilterMonth = "2024-03"
		ctx, teardown := setup(t, settings)
		defer teardown()

		// given
		addSorted(t, ctx, "In March", 10000, date(2024, time.March, 3), category.EssentialMaintenance, false)
		addSorted(t, ctx, "In April", 99999, date(2024, time.April, 3), category.EssentialMaintenance, false)

		// when
		summary, err := service.GetStats(ctx, Filter{})

		// then
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(10000).Equal(summary.MonthlyTotal), "monthly total was %s", summary.MonthlyTotal)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		_, teardown := setup(t, defaultSettings())
		defer teardown()

		// when
		_, err := service.GetStats(context.Background(), Filter{})

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

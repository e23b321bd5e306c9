package stats

import (
	"testing"
	"time"

	"github.com/persely/persely/pkg/category"
	"github.com/persely/persely/pkg/expense"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsvStatsRendererImpl_RenderStats(t *testing.T) {
	renderer := NewCsvStatsRenderer()

	t.Run("should render the filtered expenses with derived splits", func(t *testing.T) {
		// given
		summary := Summary{
			Expenses: []expense.Expense{
				{
					Name:            "Groceries",
					FullPrice:       decimal.RequireFromString("18000.50"),
					Date:            time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
					PrimaryCategory: string(category.EssentialMaintenance),
					CategoryMatch:   100,
				},
				{
					Name:              "Board game night",
					FullPrice:         decimal.NewFromInt(10000),
					Date:              time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
					PrimaryCategory:   string(category.PlannedSocial),
					CategoryMatch:     70,
					SecondaryCategory: string(category.ImpulseComfort),
					IsRecurring:       true,
					CartUid:           "cart-1",
					CartName:          "Game store run",
				},
			},
		}

		// when
		rendered, err := renderer.RenderStats(summary)

		// then
		require.NoError(t, err)
		expected := "Date,Name,Primary Category,Category Match %,Secondary Category,Full Price,Primary Split,Secondary Split,Is Recurring,Cart Name\n" +
			"2024-03-03,Groceries," + string(category.EssentialMaintenance) + ",100,,18000.50,18000.50,0.00,No,\n" +
			"2024-03-09,Board game night," + string(category.PlannedSocial) + ",70," + string(category.ImpulseComfort) + ",10000.00,7000.00,3000.00,Yes,Game store run\n"
		assert.Equal(t, expected, rendered)
	})

	t.Run("should render the header only for an empty summary", func(t *testing.T) {
		// when
		rendered, err := renderer.RenderStats(Summary{})

		// then
		require.NoError(t, err)
		assert.Equal(t, "Date,Name,Primary Category,Category Match %,Secondary Category,Full Price,Primary Split,Secondary Split,Is Recurring,Cart Name\n", rendered)
	})
}

package expense

import (
	"context"
	"testing"
	"time"

	"github.com/persely/persely/internal/utils"
	"github.com/persely/persely/pkg/category"
	"github.com/persely/persely/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1})

var expenseRepoStub = NewStubExpenseRepo()

var clock = &utils.MockClock{FixedNow: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}

var service Service

func setup(t *testing.T) func() {
	service = NewExpenseService(expenseRepoStub, clock)
	return func() {
		t.Log("Teardown after test")
		expenseRepoStub.Cleanup()
	}
}

func testDate() time.Time {
	return time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should create a sorted expense and capitalize its name", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, Expense{
			Name:            "coffee beans",
			FullPrice:       decimal.NewFromInt(4500),
			Date:            testDate(),
			PrimaryCategory: string(category.EssentialMaintenance),
			CategoryMatch:   100,
		})

		// then
		assert.NoError(t, err)
		assert.NotEmpty(t, created.Uid)
		assert.Equal(t, "Coffee beans", created.Name)
		assert.Equal(t, clock.FixedNow, created.CreatedAt)

		sorted, err := service.ListSorted(ctx)
		assert.NoError(t, err)
		assert.Len(t, sorted, 1)
	})

	t.Run("should reject a non-positive price", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(ctx, Expense{
			Name:            "Refund",
			FullPrice:       decimal.NewFromInt(-100),
			Date:            testDate(),
			PrimaryCategory: string(category.EssentialMaintenance),
			CategoryMatch:   100,
		})

		// then
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("should reject match percentage above 100", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(ctx, Expense{
			Name:            "Dinner",
			FullPrice:       decimal.NewFromInt(8000),
			Date:            testDate(),
			PrimaryCategory: string(category.PlannedSocial),
			CategoryMatch:   150,
		})

		// then
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(context.Background(), Expense{})

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

func TestServiceImpl_CreateUnsorted(t *testing.T) {
	t.Run("should store an expense without a category in the item box", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.CreateUnsorted(ctx, Expense{
			Name:      "mystery purchase",
			FullPrice: decimal.NewFromInt(2500),
			Date:      testDate(),
		})

		// then
		assert.NoError(t, err)
		assert.False(t, created.IsSorted())

		unsorted, err := service.ListUnsorted(ctx)
		assert.NoError(t, err)
		assert.Len(t, unsorted, 1)

		sorted, err := service.ListSorted(ctx)
		assert.NoError(t, err)
		assert.Empty(t, sorted)
	})

	t.Run("should store directly as sorted when a primary category is already chosen", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.CreateUnsorted(ctx, Expense{
			Name:            "groceries",
			FullPrice:       decimal.NewFromInt(15000),
			Date:            testDate(),
			PrimaryCategory: string(category.EssentialMaintenance),
			CategoryMatch:   100,
		})

		// then
		assert.NoError(t, err)
		assert.True(t, created.IsSorted())

		unsorted, err := service.ListUnsorted(ctx)
		assert.NoError(t, err)
		assert.Empty(t, unsorted)
	})
}

func TestServiceImpl_Sort(t *testing.T) {
	t.Run("should move an unsorted expense to the sorted collection with a 70/30 split", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateUnsorted(ctx, Expense{
			Name:      "Board game night",
			FullPrice: decimal.NewFromInt(10000),
			Date:      testDate(),
		})
		require.NoError(t, err)

		// when
		sorted, next, err := service.Sort(ctx, created.Uid, SortRequest{
			PrimaryCategory:   string(category.PlannedSocial),
			CategoryMatch:     70,
			SecondaryCategory: string(category.ImpulseComfort),
		}, false)

		// then
		assert.NoError(t, err)
		assert.Nil(t, next)
		assert.Equal(t, string(category.PlannedSocial), sorted.PrimaryCategory)
		assert.Equal(t, 70, sorted.CategoryMatch)
		assert.True(t, decimal.NewFromInt(7000).Equal(sorted.PrimarySplit()))
		assert.True(t, decimal.NewFromInt(3000).Equal(sorted.SecondarySplit()))

		unsorted, err := service.ListUnsorted(ctx)
		assert.NoError(t, err)
		assert.Empty(t, unsorted)

		sortedList, err := service.ListSorted(ctx)
		assert.NoError(t, err)
		assert.Len(t, sortedList, 1)
	})

	t.Run("should return the next unsorted expense in insertion order when cascading", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		first, err := service.CreateUnsorted(ctx, Expense{Name: "First", FullPrice: decimal.NewFromInt(100), Date: testDate()})
		require.NoError(t, err)
		second, err := service.CreateUnsorted(ctx, Expense{Name: "Second", FullPrice: decimal.NewFromInt(200), Date: testDate()})
		require.NoError(t, err)

		// when
		_, next, err := service.Sort(ctx, first.Uid, SortRequest{
			PrimaryCategory: string(category.EssentialMaintenance),
		}, true)

		// then
		assert.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, second.Uid, next.Uid)
	})

	t.Run("should return nil next when the item box becomes empty", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		only, err := service.CreateUnsorted(ctx, Expense{Name: "Only", FullPrice: decimal.NewFromInt(100), Date: testDate()})
		require.NoError(t, err)

		// when
		_, next, err := service.Sort(ctx, only.Uid, SortRequest{
			PrimaryCategory: string(category.EssentialMaintenance),
		}, true)

		// then
		assert.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("should default an omitted match to 100", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateUnsorted(ctx, Expense{Name: "Snacks", FullPrice: decimal.NewFromInt(900), Date: testDate()})
		require.NoError(t, err)

		// when
		sorted, _, err := service.Sort(ctx, created.Uid, SortRequest{
			PrimaryCategory: string(category.ImpulseComfort),
		}, false)

		// then
		assert.NoError(t, err)
		assert.Equal(t, 100, sorted.CategoryMatch)
	})

	t.Run("should not sort an already sorted expense again", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Expense{
			Name:            "Rent",
			FullPrice:       decimal.NewFromInt(250000),
			Date:            testDate(),
			PrimaryCategory: string(category.EssentialMaintenance),
			CategoryMatch:   100,
		})
		require.NoError(t, err)

		// when
		_, _, err = service.Sort(ctx, created.Uid, SortRequest{
			PrimaryCategory: string(category.ImpulseComfort),
		}, false)

		// then
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should reject an invalid split before touching the expense", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateUnsorted(ctx, Expense{Name: "Thing", FullPrice: decimal.NewFromInt(100), Date: testDate()})
		require.NoError(t, err)

		// when
		_, _, err = service.Sort(ctx, created.Uid, SortRequest{
			PrimaryCategory:   string(category.PlannedSocial),
			CategoryMatch:     70,
			SecondaryCategory: string(category.PlannedSocial),
		}, false)

		// then
		assert.ErrorIs(t, err, ErrValidation)
		unsorted, err := service.ListUnsorted(ctx)
		assert.NoError(t, err)
		assert.Len(t, unsorted, 1)
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	t.Run("should discard an unsorted expense", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateUnsorted(ctx, Expense{Name: "Mistake", FullPrice: decimal.NewFromInt(100), Date: testDate()})
		require.NoError(t, err)

		// when
		err = service.Delete(ctx, created.Uid)

		// then
		assert.NoError(t, err)
		unsorted, err := service.ListUnsorted(ctx)
		assert.NoError(t, err)
		assert.Empty(t, unsorted)
	})

	t.Run("should return not found for an unknown uid", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		err := service.Delete(ctx, "no-such-expense")

		// then
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestServiceImpl_Update(t *testing.T) {
	t.Run("should update and re-capitalize the expense", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Expense{
			Name:            "Lunch",
			FullPrice:       decimal.NewFromInt(3000),
			Date:            testDate(),
			PrimaryCategory: string(category.PlannedSocial),
			CategoryMatch:   100,
		})
		require.NoError(t, err)

		// when
		updated, err := service.Update(ctx, Expense{
			Uid:             created.Uid,
			Name:            "team lunch",
			FullPrice:       decimal.NewFromInt(3500),
			Date:            testDate(),
			PrimaryCategory: string(category.PlannedSocial),
			CategoryMatch:   100,
		})

		// then
		assert.NoError(t, err)
		assert.Equal(t, "Team lunch", updated.Name)
		assert.True(t, decimal.NewFromInt(3500).Equal(updated.FullPrice))
	})

	t.Run("should reject invalid split on a sorted expense", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Expense{
			Name:            "Lunch",
			FullPrice:       decimal.NewFromInt(3000),
			Date:            testDate(),
			PrimaryCategory: string(category.PlannedSocial),
			CategoryMatch:   100,
		})
		require.NoError(t, err)

		// when
		_, err = service.Update(ctx, Expense{
			Uid:             created.Uid,
			Name:            "Lunch",
			FullPrice:       decimal.NewFromInt(3000),
			Date:            testDate(),
			PrimaryCategory: "Not a category",
			CategoryMatch:   100,
		})

		// then
		assert.ErrorIs(t, err, ErrValidation)
	})
}

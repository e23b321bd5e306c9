package cart

import (
	"context"
	"testing"
	"time"

	"github.com/persely/persely/internal/utils"
	"github.com/persely/persely/pkg/category"
	"github.com/persely/persely/pkg/expense"
	"github.com/persely/persely/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1})

var cartRepoStub = NewStubCartRepo()

var clock = &utils.MockClock{FixedNow: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}

var service Service

func setup(t *testing.T) func() {
	service = NewCartService(cartRepoStub, clock)
	return func() {
		t.Log("Teardown after test")
		cartRepoStub.Cleanup()
	}
}

func testCart() Cart {
	return Cart{
		Name:       "weekly groceries",
		TotalPrice: decimal.NewFromInt(25000),
		Date:       time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Items: []CartItem{
			{Name: "milk", Price: decimal.NewFromInt(800)},
			{Name: "chocolate", Price: decimal.NewFromInt(1200)},
		},
	}
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should create a cart with positioned unsorted items", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, testCart())

		// then
		assert.NoError(t, err)
		assert.NotEmpty(t, created.Uid)
		assert.Equal(t, "Weekly groceries", created.Name)
		require.Len(t, created.Items, 2)
		assert.Equal(t, "Milk", created.Items[0].Name)
		assert.Equal(t, 0, created.Items[0].Position)
		assert.Equal(t, 1, created.Items[1].Position)
		assert.False(t, created.Items[0].IsSorted())
		assert.False(t, created.Items[1].IsSorted())
	})

	t.Run("should keep the entered total instead of recomputing it from items", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, testCart())

		// then
		assert.NoError(t, err)
		// items add up to 2000 but the till said 25000
		assert.True(t, decimal.NewFromInt(25000).Equal(created.TotalPrice))
	})

	t.Run("should reject a cart without items", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(ctx, Cart{
			Name:       "Empty",
			TotalPrice: decimal.NewFromInt(100),
			Date:       time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		})

		// then
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("should reject an item with a non-positive price", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		invalid := testCart()
		invalid.Items[1].Price = decimal.Zero

		// when
		_, err := service.Create(ctx, invalid)

		// then
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(context.Background(), testCart())

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

func TestServiceImpl_SortItem(t *testing.T) {
	t.Run("should publish the sorted item as an expense carrying the cart's name and date", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, testCart())
		require.NoError(t, err)
		item := created.Items[1]

		// when
		published, err := service.SortItem(ctx, created.Uid, item.Uid, expense.SortRequest{
			PrimaryCategory:   string(category.ImpulseComfort),
			CategoryMatch:     70,
			SecondaryCategory: string(category.EssentialMaintenance),
		})

		// then
		assert.NoError(t, err)
		assert.Equal(t, "Chocolate", published.Name)
		assert.True(t, item.Price.Equal(published.FullPrice))
		assert.Equal(t, created.Uid, published.CartUid)
		assert.Equal(t, "Weekly groceries", published.CartName)
		assert.Equal(t, created.Date, published.Date)
		assert.Equal(t, string(category.ImpulseComfort), published.PrimaryCategory)
		assert.Equal(t, 70, published.CategoryMatch)

		require.Len(t, cartRepoStub.Published, 1)
		assert.Equal(t, published.Uid, cartRepoStub.Published[0].Uid)

		stored, err := service.Get(ctx, created.Uid)
		require.NoError(t, err)
		assert.True(t, stored.Items[1].IsSorted())
	})

	t.Run("should not sort the same item twice", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, testCart())
		require.NoError(t, err)
		_, err = service.SortItem(ctx, created.Uid, created.Items[0].Uid, expense.SortRequest{
			PrimaryCategory: string(category.EssentialMaintenance),
		})
		require.NoError(t, err)

		// when
		_, err = service.SortItem(ctx, created.Uid, created.Items[0].Uid, expense.SortRequest{
			PrimaryCategory: string(category.ImpulseComfort),
		})

		// then
		assert.Error(t, err)
		assert.Len(t, cartRepoStub.Published, 1)
	})

	t.Run("should reject an invalid split", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, testCart())
		require.NoError(t, err)

		// when
		_, err = service.SortItem(ctx, created.Uid, created.Items[0].Uid, expense.SortRequest{
			PrimaryCategory: "Not a category",
		})

		// then
		assert.ErrorIs(t, err, expense.ErrValidation)
		assert.Empty(t, cartRepoStub.Published)
	})

	t.Run("should return not found for an unknown item", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, testCart())
		require.NoError(t, err)

		// when
		_, err = service.SortItem(ctx, created.Uid, "no-such-item", expense.SortRequest{
			PrimaryCategory: string(category.EssentialMaintenance),
		})

		// then
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestServiceImpl_UpdateItem(t *testing.T) {
	t.Run("should update name and price of a line item", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, testCart())
		require.NoError(t, err)

		// when
		err = service.UpdateItem(ctx, created.Uid, CartItem{
			Uid:      created.Items[0].Uid,
			Name:     "oat milk",
			Price:    decimal.NewFromInt(950),
			Position: 0,
		})

		// then
		assert.NoError(t, err)
		stored, err := service.Get(ctx, created.Uid)
		require.NoError(t, err)
		assert.Equal(t, "Oat milk", stored.Items[0].Name)
		assert.True(t, decimal.NewFromInt(950).Equal(stored.Items[0].Price))
	})
}

func TestServiceImpl_DeleteItem(t *testing.T) {
	t.Run("should remove a line item from the cart", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, testCart())
		require.NoError(t, err)

		// when
		err = service.DeleteItem(ctx, created.Uid, created.Items[0].Uid)

		// then
		assert.NoError(t, err)
		stored, err := service.Get(ctx, created.Uid)
		require.NoError(t, err)
		assert.Len(t, stored.Items, 1)
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	t.Run("should delete the cart", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, testCart())
		require.NoError(t, err)

		// when
		err = service.Delete(ctx, created.Uid)

		// then
		assert.NoError(t, err)
		_, err = service.Get(ctx, created.Uid)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

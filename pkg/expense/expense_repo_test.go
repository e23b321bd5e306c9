package expense

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/persely/persely/internal/test_utils"
	"github.com/persely/persely/pkg/category"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) (context.Context, Repository, int) {
	db := test_utils.SetupTestDB(t)
	return context.Background(), NewExpenseRepo(db), createTestUser(t, db)
}

func createTestUser(t *testing.T, db *sql.DB) int {
	t.Helper()
	result, err := db.Exec(
		"INSERT INTO user (uid, email, display_name) VALUES (?, ?, ?)",
		uuid.New().String(), uuid.New().String()+"@example.com", "Test User",
	)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO user_settings (user_id) VALUES (?)", id)
	require.NoError(t, err)
	return int(id)
}

func storedExpense(name string, date string, sorted bool) Expense {
	e := Expense{
		Uid:       uuid.New().String(),
		Name:      name,
		FullPrice: decimal.NewFromInt(1000),
		Date:      mustParseDate(date),
		CreatedAt: time.Unix(1700000000, 0),
	}
	if sorted {
		e.PrimaryCategory = string(category.EssentialMaintenance)
		e.CategoryMatch = 100
	}
	return e
}

func mustParseDate(s string) time.Time {
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRepositoryImpl_Store(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)

	// when
	created, err := repo.Store(ctx, userId, Expense{
		Uid:               uuid.New().String(),
		Name:              "Groceries",
		FullPrice:         decimal.RequireFromString("12345.67"),
		Date:              mustParseDate("2024-03-05"),
		PrimaryCategory:   string(category.EssentialMaintenance),
		CategoryMatch:     70,
		SecondaryCategory: string(category.ImpulseComfort),
		IsRecurring:       true,
		CreatedAt:         time.Unix(1700000000, 0),
	})
	require.NoError(t, err)

	// then
	stored, err := repo.FindByUid(ctx, userId, created.Uid)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Groceries", stored.Name)
	assert.True(t, decimal.RequireFromString("12345.67").Equal(stored.FullPrice))
	assert.Equal(t, "2024-03-05", stored.Date.Format(DateFormat))
	assert.Equal(t, 70, stored.CategoryMatch)
	assert.Equal(t, string(category.ImpulseComfort), stored.SecondaryCategory)
	assert.True(t, stored.IsRecurring)
}

func TestRepositoryImpl_Lists(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	_, err := repo.Store(ctx, userId, storedExpense("Sorted old", "2024-03-01", true))
	require.NoError(t, err)
	_, err = repo.Store(ctx, userId, storedExpense("Unsorted", "2024-03-02", false))
	require.NoError(t, err)
	recurring := storedExpense("Recurring", "2024-02-01", true)
	recurring.IsRecurring = true
	_, err = repo.Store(ctx, userId, recurring)
	require.NoError(t, err)

	// when
	sorted, err := repo.ListSorted(ctx, userId)
	require.NoError(t, err)
	unsorted, err := repo.ListUnsorted(ctx, userId)
	require.NoError(t, err)
	recurringList, err := repo.ListRecurring(ctx, userId)
	require.NoError(t, err)

	// then
	assert.Len(t, sorted, 2)
	// sorted list is ordered by date
	assert.Equal(t, "Recurring", sorted[0].Name)
	assert.Equal(t, "Sorted old", sorted[1].Name)
	assert.Len(t, unsorted, 1)
	assert.Equal(t, "Unsorted", unsorted[0].Name)
	assert.Len(t, recurringList, 1)
	assert.Equal(t, "Recurring", recurringList[0].Name)
}

func TestRepositoryImpl_Lists_ShouldNotLeakBetweenUsers(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	_, err := repo.Store(ctx, userId, storedExpense("Mine", "2024-03-01", true))
	require.NoError(t, err)

	// when
	otherUsersList, err := repo.ListSorted(ctx, userId+1)

	// then
	require.NoError(t, err)
	assert.Empty(t, otherUsersList)
}

func TestRepositoryImpl_MarkSorted(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	created, err := repo.Store(ctx, userId, storedExpense("In the box", "2024-03-02", false))
	require.NoError(t, err)

	// when
	sortedAt := time.Unix(1710000000, 0)
	ok, err := repo.MarkSorted(ctx, userId, created.Uid, SortFields{
		PrimaryCategory:   string(category.PlannedSocial),
		CategoryMatch:     70,
		SecondaryCategory: string(category.ImpulseComfort),
	}, sortedAt)
	require.NoError(t, err)
	assert.True(t, ok)

	// then
	stored, err := repo.FindByUid(ctx, userId, created.Uid)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsSorted())
	assert.Equal(t, 70, stored.CategoryMatch)
	assert.Equal(t, sortedAt.Unix(), stored.CreatedAt.Unix())

	unsorted, err := repo.ListUnsorted(ctx, userId)
	require.NoError(t, err)
	assert.Empty(t, unsorted)

	// a second sort of the same row must not match anything
	ok, err = repo.MarkSorted(ctx, userId, created.Uid, SortFields{
		PrimaryCategory: string(category.EssentialMaintenance),
		CategoryMatch:   100,
	}, sortedAt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryImpl_Update(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	created, err := repo.Store(ctx, userId, storedExpense("Before", "2024-03-02", true))
	require.NoError(t, err)

	// when
	created.Name = "After"
	created.FullPrice = decimal.NewFromInt(4200)
	ok, err := repo.Update(ctx, userId, created)

	// then
	require.NoError(t, err)
	assert.True(t, ok)
	stored, err := repo.FindByUid(ctx, userId, created.Uid)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "After", stored.Name)
	assert.True(t, decimal.NewFromInt(4200).Equal(stored.FullPrice))
}

func TestRepositoryImpl_Delete(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	created, err := repo.Store(ctx, userId, storedExpense("Doomed", "2024-03-02", false))
	require.NoError(t, err)

	// when
	ok, err := repo.Delete(ctx, userId, created.Uid)

	// then
	require.NoError(t, err)
	assert.True(t, ok)
	stored, err := repo.FindByUid(ctx, userId, created.Uid)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

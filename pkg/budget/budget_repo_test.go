package budget

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/persely/persely/internal/test_utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) (Repository, *sql.DB, int) {
	db := test_utils.SetupTestDB(t)
	return NewBudgetRepo(db), db, createTestUser(t, db)
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

func TestRepositoryImpl_FindDefault_NeverSet(t *testing.T) {
	// given
	repo, _, userId := setupTestRepository(t)

	// when
	found, err := repo.FindDefault(context.Background(), userId)

	// then
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepositoryImpl_StoreDefault(t *testing.T) {
	// given
	repo, _, userId := setupTestRepository(t)

	// when
	updated, err := repo.StoreDefault(context.Background(), userId, decimal.NewFromInt(430000))

	// then
	require.NoError(t, err)
	assert.True(t, updated)
	found, err := repo.FindDefault(context.Background(), userId)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, decimal.NewFromInt(430000).Equal(*found))
}

func TestRepositoryImpl_StoreDefault_UnknownUser(t *testing.T) {
	// given
	repo, _, _ := setupTestRepository(t)

	// when
	updated, err := repo.StoreDefault(context.Background(), 42, decimal.NewFromInt(430000))

	// then
	require.NoError(t, err)
	assert.False(t, updated)
}

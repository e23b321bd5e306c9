package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// FindDefault returns the user's default monthly budget, or nil when
	// the user has never set one.
	FindDefault(ctx context.Context, userId int) (*decimal.Decimal, error)
	StoreDefault(ctx context.Context, userId int, budget decimal.Decimal) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewBudgetRepo(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) FindDefault(ctx context.Context, userId int) (*decimal.Decimal, error) {
	query := "SELECT monthly_budget FROM user_settings WHERE user_id = ?"
	row := r.db.QueryRowContext(ctx, query, userId)

	var budgetString sql.NullString
	if err := row.Scan(&budgetString); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		err := fmt.Errorf("could not scan budget: %w", err)
		log.Error(err)
		return nil, err
	}
	if !budgetString.Valid {
		return nil, nil
	}

	budget, err := decimal.NewFromString(budgetString.String)
	if err != nil {
		err := fmt.Errorf("could not parse budget: %w", err)
		log.Error(err)
		return nil, err
	}
	return &budget, nil
}

func (r *RepositoryImpl) StoreDefault(ctx context.Context, userId int, budget decimal.Decimal) (bool, error) {
	query := "UPDATE user_settings SET monthly_budget = ? WHERE user_id = ?"
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, budget.String(), userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

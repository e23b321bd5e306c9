package period

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// StoreWithRollover inserts the new period and, in the same
	// transaction, closes the currently open period (the one with the
	// latest start date and no end) at the day before the new start.
	// Returns the created period and the closed one, if any.
	StoreWithRollover(ctx context.Context, userId int, period SalaryPeriod) (SalaryPeriod, *SalaryPeriod, error)
	GetAll(ctx context.Context, userId int) ([]SalaryPeriod, error)
	FindByUid(ctx context.Context, userId int, uid string) (*SalaryPeriod, error)
	// FindLatest returns the period with the latest start date, or nil.
	FindLatest(ctx context.Context, userId int) (*SalaryPeriod, error)
	UpdateBudget(ctx context.Context, userId int, uid string, budget decimal.Decimal) (bool, error)
	Delete(ctx context.Context, userId int, uid string) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewPeriodRepo(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const periodColumns = "id, uid, name, start_date, end_date, monthly_budget, created_at"

func (r *RepositoryImpl) StoreWithRollover(ctx context.Context, userId int, period SalaryPeriod) (SalaryPeriod, *SalaryPeriod, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return SalaryPeriod{}, nil, err
	}
	defer tx.Rollback()

	latest, err := findLatest(ctx, tx, userId)
	if err != nil {
		return SalaryPeriod{}, nil, err
	}

	var closed *SalaryPeriod
	if latest != nil && latest.IsOpen() {
		endDate := period.StartDate.AddDate(0, 0, -1)
		result, err := tx.ExecContext(ctx,
			"UPDATE salary_period SET end_date = ? WHERE id = ? AND user_id = ?",
			endDate.Format(DateFormat), latest.Id, userId,
		)
		if err != nil {
			err := fmt.Errorf("could not close open period: %w", err)
			log.Error(err)
			return SalaryPeriod{}, nil, err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			err := fmt.Errorf("could not get rows affected: %w", err)
			log.Error(err)
			return SalaryPeriod{}, nil, err
		}
		if rowsAffected != 1 {
			err := fmt.Errorf("open period %s disappeared during rollover", latest.Uid)
			log.Error(err)
			return SalaryPeriod{}, nil, err
		}
		latest.EndDate = &endDate
		closed = latest
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO salary_period (uid, user_id, name, start_date, end_date, monthly_budget, created_at)
		 VALUES (?, ?, ?, ?, NULL, ?, ?)`,
		period.Uid,
		userId,
		period.Name,
		period.StartDate.Format(DateFormat),
		period.MonthlyBudget.String(),
		period.CreatedAt.Unix(),
	)
	if err != nil {
		err := fmt.Errorf("could not store period: %w", err)
		log.Error(err)
		return SalaryPeriod{}, nil, err
	}
	lastInsertID, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return SalaryPeriod{}, nil, err
	}
	period.Id = int(lastInsertID)
	period.EndDate = nil

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit transaction: %w", err)
		log.Error(err)
		return SalaryPeriod{}, nil, err
	}

	return period, closed, nil
}

func (r *RepositoryImpl) GetAll(ctx context.Context, userId int) ([]SalaryPeriod, error) {
	query := fmt.Sprintf("SELECT %s FROM salary_period WHERE user_id = ? ORDER BY start_date", periodColumns)
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query periods: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var periods []SalaryPeriod
	for rows.Next() {
		period, err := scanPeriod(rows.Scan)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}

	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	return periods, nil
}

func (r *RepositoryImpl) FindByUid(ctx context.Context, userId int, uid string) (*SalaryPeriod, error) {
	query := fmt.Sprintf("SELECT %s FROM salary_period WHERE user_id = ? AND uid = ?", periodColumns)
	row := r.db.QueryRowContext(ctx, query, userId, uid)

	period, err := scanPeriod(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

func (r *RepositoryImpl) FindLatest(ctx context.Context, userId int) (*SalaryPeriod, error) {
	return findLatest(ctx, r.db, userId)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findLatest(ctx context.Context, db queryRower, userId int) (*SalaryPeriod, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM salary_period WHERE user_id = ? ORDER BY start_date DESC LIMIT 1",
		periodColumns,
	)
	row := db.QueryRowContext(ctx, query, userId)

	period, err := scanPeriod(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

func (r *RepositoryImpl) UpdateBudget(ctx context.Context, userId int, uid string, budget decimal.Decimal) (bool, error) {
	query := "UPDATE salary_period SET monthly_budget = ? WHERE uid = ? AND user_id = ?"
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, budget.String(), uid, userId)
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

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, uid string) (bool, error) {
	query := "DELETE FROM salary_period WHERE uid = ? AND user_id = ?"
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, uid, userId)
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

func scanPeriod(scan func(dest ...any) error) (SalaryPeriod, error) {
	var period SalaryPeriod
	var startDateString string
	var endDateString, budgetString sql.NullString
	var createdAtUnix int64

	err := scan(
		&period.Id,
		&period.Uid,
		&period.Name,
		&startDateString,
		&endDateString,
		&budgetString,
		&createdAtUnix,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SalaryPeriod{}, err
		}
		err := fmt.Errorf("could not scan period: %w", err)
		log.Error(err)
		return SalaryPeriod{}, err
	}

	startDate, err := time.Parse(DateFormat, startDateString)
	if err != nil {
		err := fmt.Errorf("could not parse start date: %w", err)
		log.Error(err)
		return SalaryPeriod{}, err
	}
	period.StartDate = startDate

	if endDateString.Valid {
		endDate, err := time.Parse(DateFormat, endDateString.String)
		if err != nil {
			err := fmt.Errorf("could not parse end date: %w", err)
			log.Error(err)
			return SalaryPeriod{}, err
		}
		period.EndDate = &endDate
	}

	if budgetString.Valid {
		budget, err := decimal.NewFromString(budgetString.String)
		if err != nil {
			err := fmt.Errorf("could not parse budget: %w", err)
			log.Error(err)
			return SalaryPeriod{}, err
		}
		period.MonthlyBudget = budget
	}

	period.CreatedAt = time.Unix(createdAtUnix, 0)
	return period, nil
}

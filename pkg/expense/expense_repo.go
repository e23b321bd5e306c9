package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
)

// SortFields are the category split attributes attached to an expense when
// it is sorted out of the Item Box.
type SortFields struct {
	PrimaryCategory   string
	CategoryMatch     int
	SecondaryCategory string
}

type Repository interface {
	Store(ctx context.Context, userId int, expense Expense) (Expense, error)
	ListSorted(ctx context.Context, userId int) ([]Expense, error)
	// ListUnsorted returns unsorted expenses in insertion order.
	ListUnsorted(ctx context.Context, userId int) ([]Expense, error)
	ListRecurring(ctx context.Context, userId int) ([]Expense, error)
	FindByUid(ctx context.Context, userId int, uid string) (*Expense, error)
	Update(ctx context.Context, userId int, expense Expense) (bool, error)
	Delete(ctx context.Context, userId int, uid string) (bool, error)
	// MarkSorted moves an unsorted expense into the sorted collection by
	// attaching the split fields and restamping createdAt. The move is a
	// single row update, so it cannot leave the expense in both states.
	MarkSorted(ctx context.Context, userId int, uid string, fields SortFields, sortedAt time.Time) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewExpenseRepo(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const expenseColumns = `id, uid, name, full_price, date, primary_category, category_match,
	secondary_category, is_recurring, cart_uid, cart_name, created_at`

func (r *RepositoryImpl) Store(ctx context.Context, userId int, expense Expense) (Expense, error) {
	query := `INSERT INTO expense (
	                uid,
	                user_id,
	                name,
	                full_price,
	                date,
	                primary_category,
	                category_match,
	                secondary_category,
	                is_recurring,
	                cart_uid,
	                cart_name,
	                created_at
	            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return Expense{}, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		expense.Uid,
		userId,
		expense.Name,
		expense.FullPrice.String(),
		expense.Date.Format(DateFormat),
		nullIfEmpty(expense.PrimaryCategory),
		expense.CategoryMatch,
		nullIfEmpty(expense.SecondaryCategory),
		boolToInt(expense.IsRecurring),
		nullIfEmpty(expense.CartUid),
		nullIfEmpty(expense.CartName),
		expense.CreatedAt.Unix(),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Expense{}, err
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return Expense{}, err
	}
	expense.Id = int(lastInsertID)

	return expense, nil
}

func (r *RepositoryImpl) ListSorted(ctx context.Context, userId int) ([]Expense, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM expense WHERE user_id = ? AND primary_category IS NOT NULL ORDER BY date, id",
		expenseColumns,
	)
	return r.list(ctx, query, userId)
}

func (r *RepositoryImpl) ListUnsorted(ctx context.Context, userId int) ([]Expense, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM expense WHERE user_id = ? AND primary_category IS NULL ORDER BY id",
		expenseColumns,
	)
	return r.list(ctx, query, userId)
}

func (r *RepositoryImpl) ListRecurring(ctx context.Context, userId int) ([]Expense, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM expense WHERE user_id = ? AND primary_category IS NOT NULL AND is_recurring = 1 ORDER BY date, id",
		expenseColumns,
	)
	return r.list(ctx, query, userId)
}

func (r *RepositoryImpl) list(ctx context.Context, query string, userId int) ([]Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		expense, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	return expenses, nil
}

func (r *RepositoryImpl) FindByUid(ctx context.Context, userId int, uid string) (*Expense, error) {
	query := fmt.Sprintf("SELECT %s FROM expense WHERE user_id = ? AND uid = ?", expenseColumns)
	row := r.db.QueryRowContext(ctx, query, userId, uid)

	expense, err := scanExpense(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &expense, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, expense Expense) (bool, error) {
	query := `UPDATE expense SET
	              name = ?,
	              full_price = ?,
	              date = ?,
	              primary_category = ?,
	              category_match = ?,
	              secondary_category = ?,
	              is_recurring = ?
	          WHERE uid = ? AND user_id = ?`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		expense.Name,
		expense.FullPrice.String(),
		expense.Date.Format(DateFormat),
		nullIfEmpty(expense.PrimaryCategory),
		expense.CategoryMatch,
		nullIfEmpty(expense.SecondaryCategory),
		boolToInt(expense.IsRecurring),
		expense.Uid,
		userId,
	)
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
	query := "DELETE FROM expense WHERE uid = ? AND user_id = ?"
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

func (r *RepositoryImpl) MarkSorted(ctx context.Context, userId int, uid string, fields SortFields, sortedAt time.Time) (bool, error) {
	query := `UPDATE expense SET
	              primary_category = ?,
	              category_match = ?,
	              secondary_category = ?,
	              created_at = ?
	          WHERE uid = ? AND user_id = ? AND primary_category IS NULL`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		fields.PrimaryCategory,
		fields.CategoryMatch,
		nullIfEmpty(fields.SecondaryCategory),
		sortedAt.Unix(),
		uid,
		userId,
	)
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

func scanExpense(scan func(dest ...any) error) (Expense, error) {
	var expense Expense
	var fullPrice string
	var dateString string
	var primaryCategory, secondaryCategory, cartUid, cartName sql.NullString
	var isRecurring int
	var createdAtUnix int64

	err := scan(
		&expense.Id,
		&expense.Uid,
		&expense.Name,
		&fullPrice,
		&dateString,
		&primaryCategory,
		&expense.CategoryMatch,
		&secondaryCategory,
		&isRecurring,
		&cartUid,
		&cartName,
		&createdAtUnix,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Expense{}, err
		}
		err := fmt.Errorf("could not scan expense: %w", err)
		log.Error(err)
		return Expense{}, err
	}

	price, err := decimal.NewFromString(fullPrice)
	if err != nil {
		err := fmt.Errorf("could not parse price: %w", err)
		log.Error(err)
		return Expense{}, err
	}
	expense.FullPrice = price

	date, err := time.Parse(DateFormat, dateString)
	if err != nil {
		err := fmt.Errorf("could not parse date: %w", err)
		log.Error(err)
		return Expense{}, err
	}
	expense.Date = date

	expense.PrimaryCategory = primaryCategory.String
	expense.SecondaryCategory = secondaryCategory.String
	expense.CartUid = cartUid.String
	expense.CartName = cartName.String
	expense.IsRecurring = isRecurring != 0
	expense.CreatedAt = time.Unix(createdAtUnix, 0)

	return expense, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

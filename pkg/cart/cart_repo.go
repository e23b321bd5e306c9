package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/persely/persely/pkg/expense"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Store(ctx context.Context, userId int, cart Cart) (Cart, error)
	GetAll(ctx context.Context, userId int) ([]Cart, error)
	FindByUid(ctx context.Context, userId int, uid string) (*Cart, error)
	UpdateItem(ctx context.Context, userId int, cartUid string, item CartItem) (bool, error)
	DeleteItem(ctx context.Context, userId int, cartUid string, itemUid string) (bool, error)
	Delete(ctx context.Context, userId int, uid string) (bool, error)
	// SortItem attaches the split fields to an unsorted line item and inserts
	// the published expense in the same transaction, so the item and its
	// expense can never disagree.
	SortItem(ctx context.Context, userId int, cartUid string, itemUid string, fields expense.SortFields, published expense.Expense) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, userId int, cart Cart) (Cart, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return Cart{}, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"INSERT INTO cart (uid, user_id, name, total_price, date, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		cart.Uid,
		userId,
		cart.Name,
		cart.TotalPrice.String(),
		cart.Date.Format(DateFormat),
		cart.CreatedAt.Unix(),
	)
	if err != nil {
		err := fmt.Errorf("could not insert cart: %w", err)
		log.Error(err)
		return Cart{}, err
	}
	cartId, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return Cart{}, err
	}
	cart.Id = int(cartId)

	for i := range cart.Items {
		item := &cart.Items[i]
		itemResult, err := tx.ExecContext(ctx,
			`INSERT INTO cart_item (uid, cart_id, name, price, position, primary_category, category_match, secondary_category)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.Uid,
			cart.Id,
			item.Name,
			item.Price.String(),
			item.Position,
			nullIfEmpty(item.PrimaryCategory),
			item.CategoryMatch,
			nullIfEmpty(item.SecondaryCategory),
		)
		if err != nil {
			err := fmt.Errorf("could not insert cart item: %w", err)
			log.Error(err)
			return Cart{}, err
		}
		itemId, err := itemResult.LastInsertId()
		if err != nil {
			err := fmt.Errorf("could not retrieve last insert id: %w", err)
			log.Error(err)
			return Cart{}, err
		}
		item.Id = int(itemId)
	}

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit transaction: %w", err)
		log.Error(err)
		return Cart{}, err
	}
	return cart, nil
}

func (r *RepositoryImpl) GetAll(ctx context.Context, userId int) ([]Cart, error) {
	query := `SELECT id, uid, name, total_price, date, created_at
	          FROM cart WHERE user_id = ? ORDER BY date, id`
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query carts: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var carts []Cart
	for rows.Next() {
		cart, err := scanCart(rows.Scan)
		if err != nil {
			return nil, err
		}
		carts = append(carts, cart)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	for i := range carts {
		items, err := r.listItems(ctx, carts[i].Id)
		if err != nil {
			return nil, err
		}
		carts[i].Items = items
	}
	return carts, nil
}

func (r *RepositoryImpl) FindByUid(ctx context.Context, userId int, uid string) (*Cart, error) {
	query := `SELECT id, uid, name, total_price, date, created_at
	          FROM cart WHERE user_id = ? AND uid = ?`
	row := r.db.QueryRowContext(ctx, query, userId, uid)

	cart, err := scanCart(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.listItems(ctx, cart.Id)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return &cart, nil
}

func (r *RepositoryImpl) listItems(ctx context.Context, cartId int) ([]CartItem, error) {
	query := `SELECT id, uid, name, price, position, primary_category, category_match, secondary_category
	          FROM cart_item WHERE cart_id = ? ORDER BY position, id`
	rows, err := r.db.QueryContext(ctx, query, cartId)
	if err != nil {
		err := fmt.Errorf("could not query cart items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var item CartItem
		var price string
		var primaryCategory, secondaryCategory sql.NullString
		err := rows.Scan(
			&item.Id,
			&item.Uid,
			&item.Name,
			&price,
			&item.Position,
			&primaryCategory,
			&item.CategoryMatch,
			&secondaryCategory,
		)
		if err != nil {
			err := fmt.Errorf("could not scan cart item: %w", err)
			log.Error(err)
			return nil, err
		}
		item.Price, err = decimal.NewFromString(price)
		if err != nil {
			err := fmt.Errorf("could not parse price: %w", err)
			log.Error(err)
			return nil, err
		}
		item.PrimaryCategory = primaryCategory.String
		item.SecondaryCategory = secondaryCategory.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return items, nil
}

func (r *RepositoryImpl) UpdateItem(ctx context.Context, userId int, cartUid string, item CartItem) (bool, error) {
	query := `UPDATE cart_item SET
	              name = ?,
	              price = ?,
	              position = ?
	          WHERE uid = ?
	            AND cart_id = (SELECT id FROM cart WHERE uid = ? AND user_id = ?)`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		item.Name,
		item.Price.String(),
		item.Position,
		item.Uid,
		cartUid,
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

func (r *RepositoryImpl) DeleteItem(ctx context.Context, userId int, cartUid string, itemUid string) (bool, error) {
	query := `DELETE FROM cart_item
	          WHERE uid = ?
	            AND cart_id = (SELECT id FROM cart WHERE uid = ? AND user_id = ?)`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, itemUid, cartUid, userId)
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
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return false, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM cart_item WHERE cart_id = (SELECT id FROM cart WHERE uid = ? AND user_id = ?)",
		uid, userId,
	)
	if err != nil {
		err := fmt.Errorf("could not delete cart items: %w", err)
		log.Error(err)
		return false, err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM cart WHERE uid = ? AND user_id = ?", uid, userId)
	if err != nil {
		err := fmt.Errorf("could not delete cart: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	if rowsAffected != 1 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit transaction: %w", err)
		log.Error(err)
		return false, err
	}
	return true, nil
}

func (r *RepositoryImpl) SortItem(ctx context.Context, userId int, cartUid string, itemUid string, fields expense.SortFields, published expense.Expense) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE cart_item SET
		     primary_category = ?,
		     category_match = ?,
		     secondary_category = ?
		 WHERE uid = ?
		   AND primary_category IS NULL
		   AND cart_id = (SELECT id FROM cart WHERE uid = ? AND user_id = ?)`,
		fields.PrimaryCategory,
		fields.CategoryMatch,
		nullIfEmpty(fields.SecondaryCategory),
		itemUid,
		cartUid,
		userId,
	)
	if err != nil {
		err := fmt.Errorf("could not update cart item: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	if rowsAffected != 1 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expense (
		     uid, user_id, name, full_price, date, primary_category, category_match,
		     secondary_category, is_recurring, cart_uid, cart_name, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		published.Uid,
		userId,
		published.Name,
		published.FullPrice.String(),
		published.Date.Format(DateFormat),
		published.PrimaryCategory,
		published.CategoryMatch,
		nullIfEmpty(published.SecondaryCategory),
		0,
		published.CartUid,
		published.CartName,
		published.CreatedAt.Unix(),
	)
	if err != nil {
		err := fmt.Errorf("could not insert expense: %w", err)
		log.Error(err)
		return false, err
	}

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit transaction: %w", err)
		log.Error(err)
		return false, err
	}
	return true, nil
}

func scanCart(scan func(dest ...any) error) (Cart, error) {
	var cart Cart
	var totalPrice string
	var dateString string
	var createdAtUnix int64

	err := scan(
		&cart.Id,
		&cart.Uid,
		&cart.Name,
		&totalPrice,
		&dateString,
		&createdAtUnix,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, err
		}
		err := fmt.Errorf("could not scan cart: %w", err)
		log.Error(err)
		return Cart{}, err
	}

	cart.TotalPrice, err = decimal.NewFromString(totalPrice)
	if err != nil {
		err := fmt.Errorf("could not parse total price: %w", err)
		log.Error(err)
		return Cart{}, err
	}
	cart.Date, err = time.Parse(DateFormat, dateString)
	if err != nil {
		err := fmt.Errorf("could not parse date: %w", err)
		log.Error(err)
		return Cart{}, err
	}
	cart.CreatedAt = time.Unix(createdAtUnix, 0)
	return cart, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, user User) (User, error)
	FindByUid(ctx context.Context, uid string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindById(ctx context.Context, id int) (*User, error)
	UpdateSettings(ctx context.Context, userId int, settings Settings) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, user User) (User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return User{}, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"INSERT INTO user (uid, email, display_name) VALUES (?, ?, ?)",
		user.Uid, user.Email, user.DisplayName,
	)
	if err != nil {
		err := fmt.Errorf("could not store user: %w", err)
		log.Error(err)
		return User{}, err
	}
	lastInsertID, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return User{}, err
	}
	user.Id = int(lastInsertID)

	// Settings row is created together with the user, so later updates can
	// always be plain UPDATEs.
	_, err = tx.ExecContext(ctx,
		"INSERT INTO user_settings (user_id, include_unsorted_in_total, filter_mode) VALUES (?, ?, ?)",
		user.Id, boolToInt(user.Settings.IncludeUnsortedInTotal), string(FilterByMonth),
	)
	if err != nil {
		err := fmt.Errorf("could not store user settings: %w", err)
		log.Error(err)
		return User{}, err
	}

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit transaction: %w", err)
		log.Error(err)
		return User{}, err
	}
	user.Settings.FilterMode = FilterByMonth
	return user, nil
}

func (r *RepositoryImpl) FindByUid(ctx context.Context, uid string) (*User, error) {
	return r.findOne(ctx, "u.uid = ?", uid)
}

func (r *RepositoryImpl) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, "u.email = ?", email)
}

func (r *RepositoryImpl) FindById(ctx context.Context, id int) (*User, error) {
	return r.findOne(ctx, "u.id = ?", id)
}

func (r *RepositoryImpl) findOne(ctx context.Context, where string, arg any) (*User, error) {
	query := `SELECT u.id, u.uid, u.email, u.display_name,
	                 s.include_unsorted_in_total, s.filter_mode, s.filter_month, s.filter_period_uid
	          FROM user u
	          JOIN user_settings s ON s.user_id = u.id
	          WHERE ` + where

	row := r.db.QueryRowContext(ctx, query, arg)

	var user User
	var includeUnsorted int
	var filterMode string
	var filterMonth, filterPeriodUid sql.NullString
	err := row.Scan(
		&user.Id,
		&user.Uid,
		&user.Email,
		&user.DisplayName,
		&includeUnsorted,
		&filterMode,
		&filterMonth,
		&filterPeriodUid,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		err := fmt.Errorf("could not scan user: %w", err)
		log.Error(err)
		return nil, err
	}
	user.Settings.IncludeUnsortedInTotal = includeUnsorted != 0
	user.Settings.FilterMode = FilterMode(filterMode)
	if filterMonth.Valid {
		user.Settings.FilterMonth = filterMonth.String
	}
	if filterPeriodUid.Valid {
		user.Settings.FilterPeriodUid = filterPeriodUid.String
	}
	return &user, nil
}

func (r *RepositoryImpl) UpdateSettings(ctx context.Context, userId int, settings Settings) (bool, error) {
	query := `UPDATE user_settings SET
	              include_unsorted_in_total = ?,
	              filter_mode = ?,
	              filter_month = ?,
	              filter_period_uid = ?
	          WHERE user_id = ?`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		boolToInt(settings.IncludeUnsortedInTotal),
		string(settings.FilterMode),
		nullIfEmpty(settings.FilterMonth),
		nullIfEmpty(settings.FilterPeriodUid),
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

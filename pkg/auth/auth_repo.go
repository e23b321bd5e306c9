package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	StoreNonce(ctx context.Context, nonce string, redirectUrl string, createdAt time.Time) error
	// ConsumeNonce returns the redirect url stored with the nonce and
	// deletes it, so a nonce can authorize only one callback.
	ConsumeNonce(ctx context.Context, nonce string) (string, bool, error)
	StoreSession(ctx context.Context, session Session) error
	// FindUserIdByToken resolves a session token to its user. Expired
	// sessions resolve to nothing.
	FindUserIdByToken(ctx context.Context, token string, now time.Time) (int, bool, error)
	DeleteSession(ctx context.Context, token string) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewAuthRepo(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreNonce(ctx context.Context, nonce string, redirectUrl string, createdAt time.Time) error {
	query := "INSERT INTO auth_nonce (nonce, redirect_url, created_at) VALUES (?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query, nonce, redirectUrl, createdAt.Unix())
	if err != nil {
		err := fmt.Errorf("could not store nonce: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) ConsumeNonce(ctx context.Context, nonce string) (string, bool, error) {
	var redirectUrl string
	query := "SELECT redirect_url FROM auth_nonce WHERE nonce = ?"
	err := r.db.QueryRowContext(ctx, query, nonce).Scan(&redirectUrl)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		err := fmt.Errorf("could not find nonce: %w", err)
		log.Error(err)
		return "", false, err
	}

	_, err = r.db.ExecContext(ctx, "DELETE FROM auth_nonce WHERE nonce = ?", nonce)
	if err != nil {
		err := fmt.Errorf("could not delete nonce: %w", err)
		log.Error(err)
		return "", false, err
	}
	return redirectUrl, true, nil
}

func (r *RepositoryImpl) StoreSession(ctx context.Context, session Session) error {
	query := "INSERT INTO auth_session (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query,
		session.Token,
		session.UserId,
		session.CreatedAt.Unix(),
		session.ExpiresAt.Unix(),
	)
	if err != nil {
		err := fmt.Errorf("could not store session: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) FindUserIdByToken(ctx context.Context, token string, now time.Time) (int, bool, error) {
	var userId int
	query := "SELECT user_id FROM auth_session WHERE token = ? AND expires_at > ?"
	err := r.db.QueryRowContext(ctx, query, token, now.Unix()).Scan(&userId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		err := fmt.Errorf("could not find session: %w", err)
		log.Error(err)
		return 0, false, err
	}
	return userId, true, nil
}

func (r *RepositoryImpl) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM auth_session WHERE token = ?", token)
	if err != nil {
		err := fmt.Errorf("could not delete session: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

package auth

import (
	"context"
	"sync"
	"time"
)

// StubAuthRepo is an in-memory Repository for tests.
type StubAuthRepo struct {
	mu       sync.Mutex
	nonces   map[string]string
	sessions map[string]Session
}

func NewStubAuthRepo() *StubAuthRepo {
	return &StubAuthRepo{nonces: map[string]string{}, sessions: map[string]Session{}}
}

func (s *StubAuthRepo) StoreNonce(_ context.Context, nonce string, redirectUrl string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[nonce] = redirectUrl
	return nil
}

func (s *StubAuthRepo) ConsumeNonce(_ context.Context, nonce string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	redirectUrl, ok := s.nonces[nonce]
	if ok {
		delete(s.nonces, nonce)
	}
	return redirectUrl, ok, nil
}

func (s *StubAuthRepo) StoreSession(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *StubAuthRepo) FindUserIdByToken(_ context.Context, token string, now time.Time) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok || !session.ExpiresAt.After(now) {
		return 0, false, nil
	}
	return session.UserId, true, nil
}

func (s *StubAuthRepo) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *StubAuthRepo) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces = map[string]string{}
	s.sessions = map[string]Session{}
}

package budget

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// StubBudgetRepo is an in-memory Repository for tests.
type StubBudgetRepo struct {
	mu       sync.Mutex
	defaults map[int]decimal.Decimal
}

func NewStubBudgetRepo() *StubBudgetRepo {
	return &StubBudgetRepo{defaults: map[int]decimal.Decimal{}}
}

func (s *StubBudgetRepo) FindDefault(_ context.Context, userId int) (*decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	budget, ok := s.defaults[userId]
	if !ok {
		return nil, nil
	}
	return &budget, nil
}

func (s *StubBudgetRepo) StoreDefault(_ context.Context, userId int, budget decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[userId] = budget
	return true, nil
}

func (s *StubBudgetRepo) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = map[int]decimal.Decimal{}
}

package expense

import (
	"context"
	"sync"
	"time"
)

// StubExpenseRepo is an in-memory Repository for tests. Expenses are kept in
// insertion order, matching the ORDER BY id of the SQL implementation.
type StubExpenseRepo struct {
	mu       sync.Mutex
	nextId   int
	expenses []Expense
	owners   map[string]int
}

func NewStubExpenseRepo() *StubExpenseRepo {
	return &StubExpenseRepo{nextId: 1, owners: map[string]int{}}
}

func (s *StubExpenseRepo) Store(_ context.Context, userId int, expense Expense) (Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expense.Id = s.nextId
	s.nextId++
	s.expenses = append(s.expenses, expense)
	s.owners[expense.Uid] = userId
	return expense, nil
}

func (s *StubExpenseRepo) ListSorted(_ context.Context, userId int) ([]Expense, error) {
	return s.filter(userId, func(e Expense) bool { return e.IsSorted() }), nil
}

func (s *StubExpenseRepo) ListUnsorted(_ context.Context, userId int) ([]Expense, error) {
	return s.filter(userId, func(e Expense) bool { return !e.IsSorted() }), nil
}

func (s *StubExpenseRepo) ListRecurring(_ context.Context, userId int) ([]Expense, error) {
	return s.filter(userId, func(e Expense) bool { return e.IsSorted() && e.IsRecurring }), nil
}

func (s *StubExpenseRepo) filter(userId int, keep func(Expense) bool) []Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []Expense
	for _, e := range s.expenses {
		if s.owners[e.Uid] == userId && keep(e) {
			result = append(result, e)
		}
	}
	return result
}

func (s *StubExpenseRepo) FindByUid(_ context.Context, userId int, uid string) (*Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owners[uid] != userId {
		return nil, nil
	}
	for _, e := range s.expenses {
		if e.Uid == uid {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (s *StubExpenseRepo) Update(_ context.Context, userId int, expense Expense) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owners[expense.Uid] != userId {
		return false, nil
	}
	for i, e := range s.expenses {
		if e.Uid == expense.Uid {
			expense.Id = e.Id
			expense.CreatedAt = e.CreatedAt
			s.expenses[i] = expense
			return true, nil
		}
	}
	return false, nil
}

func (s *StubExpenseRepo) Delete(_ context.Context, userId int, uid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owners[uid] != userId {
		return false, nil
	}
	for i, e := range s.expenses {
		if e.Uid == uid {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			delete(s.owners, uid)
			return true, nil
		}
	}
	return false, nil
}

func (s *StubExpenseRepo) MarkSorted(_ context.Context, userId int, uid string, fields SortFields, sortedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owners[uid] != userId {
		return false, nil
	}
	for i, e := range s.expenses {
		if e.Uid == uid && !e.IsSorted() {
			e.PrimaryCategory = fields.PrimaryCategory
			e.CategoryMatch = fields.CategoryMatch
			e.SecondaryCategory = fields.SecondaryCategory
			e.CreatedAt = sortedAt
			s.expenses[i] = e
			return true, nil
		}
	}
	return false, nil
}

func (s *StubExpenseRepo) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = nil
	s.owners = map[string]int{}
	s.nextId = 1
}

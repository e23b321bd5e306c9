package period

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// StubPeriodRepo is an in-memory Repository for tests.
type StubPeriodRepo struct {
	mu      sync.Mutex
	nextId  int
	periods []SalaryPeriod
	owners  map[string]int
}

func NewStubPeriodRepo() *StubPeriodRepo {
	return &StubPeriodRepo{nextId: 1, owners: map[string]int{}}
}

func (s *StubPeriodRepo) StoreWithRollover(_ context.Context, userId int, period SalaryPeriod) (SalaryPeriod, *SalaryPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var closed *SalaryPeriod
	latestIdx := -1
	for i, p := range s.periods {
		if s.owners[p.Uid] != userId {
			continue
		}
		if latestIdx == -1 || p.StartDate.After(s.periods[latestIdx].StartDate) {
			latestIdx = i
		}
	}
	if latestIdx >= 0 && s.periods[latestIdx].IsOpen() {
		endDate := period.StartDate.AddDate(0, 0, -1)
		s.periods[latestIdx].EndDate = &endDate
		closedCopy := s.periods[latestIdx]
		closed = &closedCopy
	}

	period.Id = s.nextId
	s.nextId++
	period.EndDate = nil
	s.periods = append(s.periods, period)
	s.owners[period.Uid] = userId
	return period, closed, nil
}

func (s *StubPeriodRepo) GetAll(_ context.Context, userId int) ([]SalaryPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []SalaryPeriod
	for _, p := range s.periods {
		if s.owners[p.Uid] == userId {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *StubPeriodRepo) FindByUid(_ context.Context, userId int, uid string) (*SalaryPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owners[uid] != userId {
		return nil, nil
	}
	for _, p := range s.periods {
		if p.Uid == uid {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (s *StubPeriodRepo) FindLatest(_ context.Context, userId int) (*SalaryPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *SalaryPeriod
	for i, p := range s.periods {
		if s.owners[p.Uid] != userId {
			continue
		}
		if latest == nil || p.StartDate.After(latest.StartDate) {
			latest = &s.periods[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	found := *latest
	return &found, nil
}

func (s *StubPeriodRepo) UpdateBudget(_ context.Context, userId int, uid string, budget decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owners[uid] != userId {
		return false, nil
	}
	for i, p := range s.periods {
		if p.Uid == uid {
			s.periods[i].MonthlyBudget = budget
			return true, nil
		}
	}
	return false, nil
}

func (s *StubPeriodRepo) Delete(_ context.Context, userId int, uid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owners[uid] != userId {
		return false, nil
	}
	for i, p := range s.periods {
		if p.Uid == uid {
			s.periods = append(s.periods[:i], s.periods[i+1:]...)
			delete(s.owners, uid)
			return true, nil
		}
	}
	return false, nil
}

func (s *StubPeriodRepo) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods = nil
	s.owners = map[string]int{}
	s.nextId = 1
}

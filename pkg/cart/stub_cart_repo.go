package cart

import (
	"context"
	"sync"

	"github.com/persely/persely/pkg/expense"
)

// StubCartRepo is an in-memory Repository for tests. Expenses published by
// SortItem are collected in Published for assertions.
type StubCartRepo struct {
	mu        sync.Mutex
	nextId    int
	carts     []Cart
	owners    map[string]int
	Published []expense.Expense
}

func NewStubCartRepo() *StubCartRepo {
	return &StubCartRepo{nextId: 1, owners: map[string]int{}}
}

func (s *StubCartRepo) Store(_ context.Context, userId int, cart Cart) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart.Id = s.nextId
	s.nextId++
	for i := range cart.Items {
		cart.Items[i].Id = s.nextId
		s.nextId++
	}
	s.carts = append(s.carts, cart)
	s.owners[cart.Uid] = userId
	return cart, nil
}

func (s *StubCartRepo) GetAll(_ context.Context, userId int) ([]Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []Cart
	for _, c := range s.carts {
		if s.owners[c.Uid] == userId {
			result = append(result, c)
		}
	}
	return result, nil
}

func (s *StubCartRepo) FindByUid(_ context.Context, userId int, uid string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(userId, uid), nil
}

func (s *StubCartRepo) UpdateItem(_ context.Context, userId int, cartUid string, item CartItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.find(userId, cartUid)
	if cart == nil {
		return false, nil
	}
	for i := range cart.Items {
		if cart.Items[i].Uid == item.Uid {
			cart.Items[i].Name = item.Name
			cart.Items[i].Price = item.Price
			cart.Items[i].Position = item.Position
			return true, nil
		}
	}
	return false, nil
}

func (s *StubCartRepo) DeleteItem(_ context.Context, userId int, cartUid string, itemUid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.find(userId, cartUid)
	if cart == nil {
		return false, nil
	}
	for i := range cart.Items {
		if cart.Items[i].Uid == itemUid {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *StubCartRepo) Delete(_ context.Context, userId int, uid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owners[uid] != userId {
		return false, nil
	}
	for i, c := range s.carts {
		if c.Uid == uid {
			s.carts = append(s.carts[:i], s.carts[i+1:]...)
			delete(s.owners, uid)
			return true, nil
		}
	}
	return false, nil
}

func (s *StubCartRepo) SortItem(_ context.Context, userId int, cartUid string, itemUid string, fields expense.SortFields, published expense.Expense) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.find(userId, cartUid)
	if cart == nil {
		return false, nil
	}
	for i := range cart.Items {
		if cart.Items[i].Uid != itemUid || cart.Items[i].IsSorted() {
			continue
		}
		cart.Items[i].PrimaryCategory = fields.PrimaryCategory
		cart.Items[i].CategoryMatch = fields.CategoryMatch
		cart.Items[i].SecondaryCategory = fields.SecondaryCategory
		s.Published = append(s.Published, published)
		return true, nil
	}
	return false, nil
}

func (s *StubCartRepo) find(userId int, uid string) *Cart {
	if s.owners[uid] != userId {
		return nil
	}
	for i := range s.carts {
		if s.carts[i].Uid == uid {
			return &s.carts[i]
		}
	}
	return nil
}

func (s *StubCartRepo) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts = nil
	s.owners = map[string]int{}
	s.Published = nil
	s.nextId = 1
}

package user

import (
	"context"
	"sync"
)

// StubUserRepo is an in-memory Repository for tests.
type StubUserRepo struct {
	mu     sync.Mutex
	nextId int
	users  map[int]User
}

func NewStubUserRepo() *StubUserRepo {
	return &StubUserRepo{nextId: 1, users: map[int]User{}}
}

func (s *StubUserRepo) Store(_ context.Context, user User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Id = s.nextId
	s.nextId++
	s.users[user.Id] = user
	return user, nil
}

func (s *StubUserRepo) FindByUid(_ context.Context, uid string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Uid == uid {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (s *StubUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (s *StubUserRepo) FindById(_ context.Context, id int) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		found := u
		return &found, nil
	}
	return nil, nil
}

func (s *StubUserRepo) UpdateSettings(_ context.Context, userId int, settings Settings) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userId]
	if !ok {
		return false, nil
	}
	u.Settings = settings
	s.users[userId] = u
	return true, nil
}

func (s *StubUserRepo) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = map[int]User{}
	s.nextId = 1
}

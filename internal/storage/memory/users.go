// Package memory holds the in-memory store implementations, the default
// backend and the one the tests run against.
package memory

import (
	"context"
	"sync"

	"github.com/metameet/server/internal/domain"
	"github.com/metameet/server/internal/storage"
)

type UserStore struct {
	mu         sync.RWMutex
	users      map[domain.UserID]*domain.User
	byUsername map[string]domain.UserID
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:      make(map[domain.UserID]*domain.User),
		byUsername: make(map[string]domain.UserID),
	}
}

func (s *UserStore) CreateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byUsername[u.Username]; taken {
		return storage.ErrUsernameTaken
	}
	cp := *u
	s.users[u.ID] = &cp
	s.byUsername[u.Username] = u.ID
	return nil
}

func (s *UserStore) GetUser(_ context.Context, id domain.UserID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

package memory

import (
	"context"
	"sync"

	"github.com/metameet/server/internal/domain"
	"github.com/metameet/server/internal/storage"
)

type SpaceStore struct {
	mu         sync.RWMutex
	spaces     map[domain.SpaceID]*domain.Space
	ownerIndex map[domain.UserID][]domain.SpaceID
}

func NewSpaceStore() *SpaceStore {
	return &SpaceStore{
		spaces:     make(map[domain.SpaceID]*domain.Space),
		ownerIndex: make(map[domain.UserID][]domain.SpaceID),
	}
}

func (s *SpaceStore) CreateSpace(_ context.Context, sp *domain.Space) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sp
	s.spaces[sp.ID] = &cp
	s.ownerIndex[sp.OwnerID] = append(s.ownerIndex[sp.OwnerID], sp.ID)
	return nil
}

func (s *SpaceStore) GetSpace(_ context.Context, id domain.SpaceID) (*domain.Space, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.spaces[id]
	if !ok {
		return nil, storage.ErrSpaceNotFound
	}
	cp := *sp
	return &cp, nil
}

func (s *SpaceStore) ListSpacesByOwner(_ context.Context, owner domain.UserID) ([]*domain.Space, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Space, 0, len(s.ownerIndex[owner]))
	for _, id := range s.ownerIndex[owner] {
		if sp, ok := s.spaces[id]; ok {
			cp := *sp
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *SpaceStore) DeleteSpace(_ context.Context, id domain.SpaceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.spaces[id]
	if !ok {
		return storage.ErrSpaceNotFound
	}
	delete(s.spaces, id)
	ids := s.ownerIndex[sp.OwnerID]
	for i, sid := range ids {
		if sid == id {
			s.ownerIndex[sp.OwnerID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

package memory

import (
	"context"
	"sync"

	"github.com/metameet/server/internal/domain"
)

// Catalog is the static element/avatar catalog, seeded once at startup.
type Catalog struct {
	mu       sync.RWMutex
	elements []domain.Element
	avatars  []domain.Avatar
}

func NewCatalog(elements []domain.Element, avatars []domain.Avatar) *Catalog {
	return &Catalog{elements: elements, avatars: avatars}
}

func (c *Catalog) ListElements(_ context.Context) ([]domain.Element, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Element, len(c.elements))
	copy(out, c.elements)
	return out, nil
}

func (c *Catalog) ListAvatars(_ context.Context) ([]domain.Avatar, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Avatar, len(c.avatars))
	copy(out, c.avatars)
	return out, nil
}

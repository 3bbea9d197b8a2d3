// Package storage defines the persistence boundary for the catalog of
// users and spaces. The presence core never touches these stores
// directly; it sees spaces only through the directory lookup at join
// time.
package storage

import (
	"context"
	"errors"

	"github.com/metameet/server/internal/domain"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username taken")
	ErrSpaceNotFound = errors.New("space not found")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

type SpaceStore interface {
	CreateSpace(ctx context.Context, s *domain.Space) error
	GetSpace(ctx context.Context, id domain.SpaceID) (*domain.Space, error)
	ListSpacesByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Space, error)
	DeleteSpace(ctx context.Context, id domain.SpaceID) error
}

// CatalogStore serves the static element and avatar catalogs.
type CatalogStore interface {
	ListElements(ctx context.Context) ([]domain.Element, error)
	ListAvatars(ctx context.Context) ([]domain.Avatar, error)
}

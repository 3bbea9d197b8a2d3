// Package valkey backs the catalog stores with a Valkey instance, for
// deployments where the catalog must outlive the process. Values are
// JSON blobs; usernames and space ownership are kept in index keys.
package valkey

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/metameet/server/internal/domain"
	"github.com/metameet/server/internal/storage"
)

func userKey(id domain.UserID) string   { return "user:" + string(id) }
func usernameKey(name string) string    { return "user:name:" + name }
func spaceKey(id domain.SpaceID) string { return "space:" + string(id) }
func ownerKey(id domain.UserID) string  { return "space:owner:" + string(id) }

type UserStore struct {
	client valkey.Client
}

func NewUserStore(client valkey.Client) *UserStore {
	return &UserStore{client: client}
}

// userRecord is the stored form; domain.User hides the password hash
// from JSON, which is right for API responses and wrong for storage.
type userRecord struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	PasswordHash string `json:"passwordHash"`
}

func toRecord(u *domain.User) userRecord {
	return userRecord{
		ID:           string(u.ID),
		Username:     u.Username,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           domain.UserID(r.ID),
		Username:     r.Username,
		Role:         domain.Role(r.Role),
		PasswordHash: r.PasswordHash,
	}
}

func (s *UserStore) CreateUser(ctx context.Context, u *domain.User) error {
	// Claim the username first; SET NX is the uniqueness check.
	resp := s.client.Do(ctx, s.client.B().Set().
		Key(usernameKey(u.Username)).Value(string(u.ID)).Nx().Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return storage.ErrUsernameTaken
		}
		return fmt.Errorf("claim username: %w", err)
	}

	blob, err := json.Marshal(toRecord(u))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := s.client.Do(ctx, s.client.B().Set().
		Key(userKey(u.ID)).Value(string(blob)).Build()).Error(); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

func (s *UserStore) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	blob, err := s.client.Do(ctx, s.client.B().Get().Key(userKey(id)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	var rec userRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	id, err := s.client.Do(ctx, s.client.B().Get().Key(usernameKey(username)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("resolve username: %w", err)
	}
	return s.GetUser(ctx, domain.UserID(id))
}

package valkey

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/metameet/server/internal/domain"
	"github.com/metameet/server/internal/storage"
)

type SpaceStore struct {
	client valkey.Client
}

func NewSpaceStore(client valkey.Client) *SpaceStore {
	return &SpaceStore{client: client}
}

func (s *SpaceStore) CreateSpace(ctx context.Context, sp *domain.Space) error {
	blob, err := json.Marshal(sp)
	if err != nil {
		return fmt.Errorf("marshal space: %w", err)
	}
	if err := s.client.Do(ctx, s.client.B().Set().
		Key(spaceKey(sp.ID)).Value(string(blob)).Build()).Error(); err != nil {
		return fmt.Errorf("store space: %w", err)
	}
	if err := s.client.Do(ctx, s.client.B().Sadd().
		Key(ownerKey(sp.OwnerID)).Member(string(sp.ID)).Build()).Error(); err != nil {
		return fmt.Errorf("index space owner: %w", err)
	}
	return nil
}

func (s *SpaceStore) GetSpace(ctx context.Context, id domain.SpaceID) (*domain.Space, error) {
	blob, err := s.client.Do(ctx, s.client.B().Get().Key(spaceKey(id)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, storage.ErrSpaceNotFound
		}
		return nil, fmt.Errorf("get space: %w", err)
	}
	var sp domain.Space
	if err := json.Unmarshal(blob, &sp); err != nil {
		return nil, fmt.Errorf("decode space: %w", err)
	}
	return &sp, nil
}

func (s *SpaceStore) ListSpacesByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Space, error) {
	ids, err := s.client.Do(ctx, s.client.B().Smembers().Key(ownerKey(owner)).Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("list owner spaces: %w", err)
	}
	out := make([]*domain.Space, 0, len(ids))
	for _, id := range ids {
		sp, err := s.GetSpace(ctx, domain.SpaceID(id))
		if err == storage.ErrSpaceNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, nil
}

func (s *SpaceStore) DeleteSpace(ctx context.Context, id domain.SpaceID) error {
	sp, err := s.GetSpace(ctx, id)
	if err != nil {
		return err
	}
	if err := s.client.Do(ctx, s.client.B().Del().Key(spaceKey(id)).Build()).Error(); err != nil {
		return fmt.Errorf("delete space: %w", err)
	}
	if err := s.client.Do(ctx, s.client.B().Srem().
		Key(ownerKey(sp.OwnerID)).Member(string(id)).Build()).Error(); err != nil {
		return fmt.Errorf("unindex space owner: %w", err)
	}
	return nil
}

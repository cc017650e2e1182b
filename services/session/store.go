package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tripmeet/models"
	"tripmeet/utils"

	"github.com/go-redis/redis/v8"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a room.
var ErrSnapshotNotFound = errors.New("session snapshot not found")

// SnapshotStore persists session snapshots so the polling fallback can
// serve state even for sessions hosted on another instance.
type SnapshotStore interface {
	Save(ctx context.Context, state models.SessionState) error
	Load(ctx context.Context, roomID string) (*models.SessionState, error)
	Delete(ctx context.Context, roomID string) error
}

// RedisSnapshotStore stores snapshots as marshalled JSON with a TTL.
type RedisSnapshotStore struct {
	client *redis.Client
}

// NewRedisSnapshotStore returns a SnapshotStore backed by Redis.
func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client}
}

func (s *RedisSnapshotStore) Save(ctx context.Context, state models.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}
	key := utils.SessionCachePrefix + state.RoomID
	if err := s.client.Set(ctx, key, data, utils.SessionCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to store session snapshot: %w", err)
	}
	return nil
}

func (s *RedisSnapshotStore) Load(ctx context.Context, roomID string) (*models.SessionState, error) {
	data, err := s.client.Get(ctx, utils.SessionCachePrefix+roomID).Result()
	if err == redis.Nil {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}
	var state models.SessionState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to parse session snapshot: %w", err)
	}
	return &state, nil
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, roomID string) error {
	return s.client.Del(ctx, utils.SessionCachePrefix+roomID).Err()
}

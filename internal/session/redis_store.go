package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore persists sessions in Redis. Idle expiry rides on the key TTL,
// which Put refreshes, so stalled conversations vanish on their own and the
// session table survives a bot restart.
type RedisStore struct {
	redis       *redis.Client
	idleTimeout time.Duration
}

// NewRedisStore creates a RedisStore. The client is required.
func NewRedisStore(client *redis.Client, idleTimeout time.Duration) *RedisStore {
	if client == nil {
		panic("session: redis client required")
	}
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}
	return &RedisStore{redis: client, idleTimeout: idleTimeout}
}

func (r *RedisStore) Get(ctx context.Context, customerID string) (*Session, error) {
	raw, err := r.redis.Get(ctx, redisKeyPrefix+customerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("session: decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, customerID string, s *Session) error {
	copied := *s
	copied.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(&copied)
	if err != nil {
		return fmt.Errorf("session: encode session: %w", err)
	}
	if err := r.redis.Set(ctx, redisKeyPrefix+customerID, raw, r.idleTimeout).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, customerID string) error {
	if err := r.redis.Del(ctx, redisKeyPrefix+customerID).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

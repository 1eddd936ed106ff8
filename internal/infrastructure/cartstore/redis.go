package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lateleria/storefront/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisTTL is how long an untouched cart survives
const DefaultRedisTTL = 30 * 24 * time.Hour

// RedisStore keeps each snapshot under cart:<key>. Every save refreshes the TTL.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore; a non-positive ttl uses DefaultRedisTTL
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(key string) string {
	return "cart:" + key
}

// Load fetches the snapshot
func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

// Save stores the snapshot with a fresh TTL
func (s *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, redisKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete removes the snapshot
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

var _ cart.SnapshotStore = (*RedisStore)(nil)

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lateleria/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClock is advanced manually by tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestInMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := newInMemoryIdempotencyStore(time.Hour, clock.Now)
	t.Cleanup(func() { _ = store.Close() })

	isNew, err := store.MarkProcessed(ctx, "evt-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "evt-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, isNew)

	processed, err := store.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, processed)

	clock.Advance(2 * time.Minute)
	processed, err = store.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, processed)

	store.sweep()
	assert.Zero(t, store.Size())

	isNew, err = store.MarkProcessed(ctx, "evt-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func newMiniredisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	client, mr := newMiniredisClient(t)
	store := NewRedisIdempotencyStore(client, "")

	isNew, err := store.MarkProcessed(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.True(t, mr.Exists(DefaultIdempotencyPrefix+"evt-1"))
	assert.Equal(t, time.Hour, mr.TTL(DefaultIdempotencyPrefix+"evt-1"))

	isNew, err = store.MarkProcessed(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew)

	mr.FastForward(2 * time.Hour)
	processed, err := store.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, processed)

	mr.SetError("LOADING")
	_, err = store.MarkProcessed(ctx, "evt-2", time.Hour)
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	t.Run("connects to a live server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		host, port := mr.Host(), mr.Server().Addr().Port

		client, err := NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: port})
		require.NoError(t, err)
		defer client.Close()
		assert.NoError(t, client.Ping(context.Background()).Err())
	})

	t.Run("fails when nothing listens", func(t *testing.T) {
		mr := miniredis.RunT(t)
		host, port := mr.Host(), mr.Server().Addr().Port
		mr.Close()

		_, err := NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: port})
		assert.Error(t, err)
	})
}

func TestNewIdempotencyStore(t *testing.T) {
	client, _ := newMiniredisClient(t)
	assert.IsType(t, &RedisIdempotencyStore{}, NewIdempotencyStore(client, zap.NewNop()))

	store := NewIdempotencyStore(nil, zap.NewNop())
	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	_ = store.Close()
}

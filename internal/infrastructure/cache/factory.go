package cache

import (
	"github.com/lateleria/storefront/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore picks redis when a client is available and falls back
// to the in-process store otherwise
func NewIdempotencyStore(client redis.UniversalClient, logger *zap.Logger) shared.IdempotencyStore {
	if client != nil {
		logger.Info("using Redis idempotency store")
		return NewRedisIdempotencyStore(client, "")
	}
	logger.Info("using in-memory idempotency store; duplicates are only detected per instance")
	return NewInMemoryIdempotencyStore()
}

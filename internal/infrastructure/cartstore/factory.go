package cartstore

import (
	"fmt"

	"github.com/lateleria/storefront/internal/domain/cart"
	"github.com/lateleria/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Backends carries the connections a store may need
type Backends struct {
	DB    *gorm.DB
	Redis redis.UniversalClient
}

// New builds the store selected by cfg.Store
func New(cfg config.CartConfig, backends Backends) (cart.SnapshotStore, error) {
	switch cfg.Store {
	case "file":
		store, err := NewFileStore(cfg.FileDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "redis":
		if backends.Redis == nil {
			return nil, fmt.Errorf("cart store %q requires a redis client", cfg.Store)
		}
		return NewRedisStore(backends.Redis, cfg.RedisTTL), nil
	case "database", "":
		if backends.DB == nil {
			return nil, fmt.Errorf("cart store %q requires a database", cfg.Store)
		}
		return NewDatabaseStore(backends.DB), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cart store %q", cfg.Store)
	}
}

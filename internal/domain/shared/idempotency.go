package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which events were already handled, so a
// republished OrderPlaced event does not send a second confirmation email
type IdempotencyStore interface {
	// MarkProcessed records eventID for ttl. It reports false when the id
	// was already recorded.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig controls duplicate detection for event handlers
type IdempotencyConfig struct {
	// TTL is how long a handled event id is remembered
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig remembers event ids for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}

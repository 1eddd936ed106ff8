package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CartPurger deletes carts untouched since a cutoff
type CartPurger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewCartPurgeJob drops abandoned carts older than maxAge every interval
func NewCartPurgeJob(purger CartPurger, maxAge, interval time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "cart-purge",
		Interval: interval,
		Run: func(ctx context.Context) error {
			removed, err := purger.PurgeOlderThan(ctx, time.Now().Add(-maxAge))
			if err != nil {
				return err
			}
			if removed > 0 {
				logger.Info("Abandoned carts purged", zap.Int64("removed", removed))
			}
			return nil
		},
	}
}

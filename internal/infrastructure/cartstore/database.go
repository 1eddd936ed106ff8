package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lateleria/storefront/internal/domain/cart"
	"github.com/lateleria/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatabaseStore keeps each snapshot in a cart_snapshots row
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabaseStore creates a DatabaseStore
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db, now: time.Now}
}

// Load reads the row for key
func (s *DatabaseStore) Load(ctx context.Context, key string) ([]byte, error) {
	var row models.CartSnapshotModel
	err := s.db.WithContext(ctx).Where("session_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cart.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	return []byte(row.Data), nil
}

// Save upserts the row for key
func (s *DatabaseStore) Save(ctx context.Context, key string, data []byte) error {
	row := models.CartSnapshotModel{
		SessionKey: key,
		Data:       string(data),
		UpdatedAt:  s.now(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

// Delete removes the row for key
func (s *DatabaseStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).
		Where("session_key = ?", key).
		Delete(&models.CartSnapshotModel{}).Error; err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}

// PurgeOlderThan deletes snapshots untouched since cutoff and returns how
// many were removed
func (s *DatabaseStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&models.CartSnapshotModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("purge cart snapshots: %w", result.Error)
	}
	return result.RowsAffected, nil
}

var _ cart.SnapshotStore = (*DatabaseStore)(nil)

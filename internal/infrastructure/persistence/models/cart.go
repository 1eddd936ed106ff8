package models

import "time"

// CartSnapshotModel holds one serialised cart keyed by its session
type CartSnapshotModel struct {
	SessionKey string    `gorm:"type:varchar(100);primaryKey"`
	Data       string    `gorm:"type:text;not null"`
	UpdatedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CartSnapshotModel) TableName() string {
	return "cart_snapshots"
}

package models

import (
	"time"

	"github.com/lateleria/storefront/internal/domain/identity"
)

// AdminUserModel is the persistence model for the AdminUser domain entity.
type AdminUserModel struct {
	AggregateModel
	Username     string `gorm:"type:varchar(100);not null;uniqueIndex:idx_admin_username"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Active       bool   `gorm:"not null"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (AdminUserModel) TableName() string {
	return "admin_users"
}

// ToDomain converts the persistence model to a domain AdminUser entity.
func (m *AdminUserModel) ToDomain() *identity.AdminUser {
	return &identity.AdminUser{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Username:          m.Username,
		PasswordHash:      m.PasswordHash,
		Active:            m.Active,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain AdminUser entity.
func (m *AdminUserModel) FromDomain(u *identity.AdminUser) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.PasswordHash = u.PasswordHash
	m.Active = u.Active
	m.LastLoginAt = u.LastLoginAt
}

package identity

import (
	"context"

	"github.com/google/uuid"
)

// AdminUserRepository defines the interface for admin account persistence
type AdminUserRepository interface {
	// FindByID finds an admin by ID
	FindByID(ctx context.Context, id uuid.UUID) (*AdminUser, error)

	// FindByUsername finds an admin by lower-cased username
	FindByUsername(ctx context.Context, username string) (*AdminUser, error)

	// ExistsByUsername checks if a username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Save creates or updates an admin
	Save(ctx context.Context, user *AdminUser) error
}

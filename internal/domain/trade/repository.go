package trade

import (
	"context"

	"github.com/google/uuid"
)

// OrderFilter narrows the admin order list
type OrderFilter struct {
	Status OrderStatus
	Search string // matched against order number, customer name and email
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create inserts the order and its items in one transaction. A clash on
	// the order number is reported as shared.ErrAlreadyExists.
	Create(ctx context.Context, order *Order) error

	// FindByID loads an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll lists orders newest first with their items
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, error)

	// ExistsByOrderNumber checks whether an order number is taken
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// UpdateStatus persists a status change
	UpdateStatus(ctx context.Context, order *Order) error

	// Count counts all orders
	Count(ctx context.Context) (int64, error)
}

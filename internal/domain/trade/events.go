package trade

import (
	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type for order events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)

// OrderPlacedItem is an item snapshot carried by OrderPlacedEvent
type OrderPlacedItem struct {
	ProductName      string            `json:"product_name"`
	Price            decimal.Decimal   `json:"price"`
	Quantity         int               `json:"quantity"`
	SelectedVariants map[string]string `json:"selected_variants,omitempty"`
}

// OrderPlacedEvent is published once an order has been stored
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	Shipping    ShippingInfo      `json:"shipping"`
	Items       []OrderPlacedItem `json:"items"`
	Subtotal    decimal.Decimal   `json:"subtotal"`
	IVA         decimal.Decimal   `json:"iva"`
	Total       decimal.Decimal   `json:"total"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(order *Order) *OrderPlacedEvent {
	items := make([]OrderPlacedItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderPlacedItem{
			ProductName:      item.ProductName,
			Price:            item.Price,
			Quantity:         item.Quantity,
			SelectedVariants: item.SelectedVariants,
		}
	}
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Shipping:        order.Shipping,
		Items:           items,
		Subtotal:        order.Subtotal,
		IVA:             order.IVA,
		Total:           order.Total,
	}
}

// OrderStatusChangedEvent is published when an admin moves an order along
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	OldStatus   OrderStatus `json:"old_status"`
	NewStatus   OrderStatus `json:"new_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(order *Order, oldStatus, newStatus OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

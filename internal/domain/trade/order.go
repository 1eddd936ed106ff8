package trade

import (
	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/cart"
	"github.com/lateleria/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "pagado"
	OrderStatusShipped OrderStatus = "enviado"
)

// PaymentMethodBankTransfer is the only payment method the shop offers
const PaymentMethodBankTransfer = "bank_transfer"

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// OrderItem is a purchased line. Product data is copied so the order stays
// readable after the product changes.
type OrderItem struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	ProductSlug      string
	Price            decimal.Decimal
	Quantity         int
	SelectedVariants map[string]string
}

// LineTotal is price times quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderLine is the input used to build an OrderItem
type OrderLine struct {
	ProductID        uuid.UUID
	ProductName      string
	ProductSlug      string
	Price            decimal.Decimal
	Quantity         int
	SelectedVariants map[string]string
}

// Order is a placed purchase awaiting bank transfer
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber   string
	Status        OrderStatus
	PaymentMethod string
	Subtotal      decimal.Decimal
	IVA           decimal.Decimal
	Total         decimal.Decimal
	Shipping      ShippingInfo
	Items         []OrderItem
}

// NewOrder creates a pending order. Totals are computed from the lines with
// the cart pricing rules.
func NewOrder(orderNumber string, shipping ShippingInfo, lines []OrderLine) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	shipping = shipping.Normalize()
	if errs := shipping.Validate(); errs != nil {
		return nil, errs
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "El pedido no contiene productos")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Status:            OrderStatusPending,
		PaymentMethod:     PaymentMethodBankTransfer,
		Shipping:          shipping,
		Items:             make([]OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		if err := validateLine(line); err != nil {
			return nil, err
		}
		variants := make(map[string]string, len(line.SelectedVariants))
		for k, v := range line.SelectedVariants {
			variants[k] = v
		}
		order.Items = append(order.Items, OrderItem{
			ID:               uuid.New(),
			OrderID:          order.ID,
			ProductID:        line.ProductID,
			ProductName:      line.ProductName,
			ProductSlug:      line.ProductSlug,
			Price:            line.Price,
			Quantity:         line.Quantity,
			SelectedVariants: variants,
		})
	}

	totals := ComputeTotals(lines)
	order.Subtotal = totals.Subtotal
	order.IVA = totals.Tax
	order.Total = totals.Total

	order.AddDomainEvent(NewOrderPlacedEvent(order))
	return order, nil
}

// ChangeStatus moves the order to status. Setting the current status again
// is a no-op.
func (o *Order) ChangeStatus(status OrderStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Estado no válido. Debe ser: pending, pagado o enviado")
	}
	if o.Status == status {
		return nil
	}
	old := o.Status
	o.Status = status
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old, status))
	return nil
}

// ItemCount returns the total number of units ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// ComputeTotals prices order lines exactly like a cart
func ComputeTotals(lines []OrderLine) cart.PriceBreakdown {
	items := make([]cart.Item, 0, len(lines))
	for _, line := range lines {
		items = append(items, cart.Item{ProductID: line.ProductID, Price: line.Price, Quantity: line.Quantity})
	}
	return cart.ComputeTotals(items)
}

func validateLine(line OrderLine) error {
	if line.ProductID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Producto no válido")
	}
	if line.Quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "La cantidad debe ser al menos 1")
	}
	if line.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "El precio no puede ser negativo")
	}
	return nil
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order domain entity.
type OrderModel struct {
	AggregateModel
	OrderNumber        string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_order_number"`
	Status             trade.OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod      string            `gorm:"type:varchar(30);not null"`
	Subtotal           decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	IVA                decimal.Decimal   `gorm:"column:iva;type:decimal(12,2);not null"`
	Total              decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	ShippingName       string            `gorm:"type:varchar(200);not null"`
	ShippingEmail      string            `gorm:"type:varchar(200);not null"`
	ShippingPhone      string            `gorm:"type:varchar(30);not null"`
	ShippingAddress    string            `gorm:"type:varchar(300);not null"`
	ShippingPostalCode string            `gorm:"type:varchar(10);not null"`
	ShippingCity       string            `gorm:"type:varchar(100);not null"`
	ShippingProvince   string            `gorm:"type:varchar(100);not null"`
	Items              []OrderItemModel  `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		Status:            m.Status,
		PaymentMethod:     m.PaymentMethod,
		Subtotal:          m.Subtotal,
		IVA:               m.IVA,
		Total:             m.Total,
		Shipping: trade.ShippingInfo{
			Name:       m.ShippingName,
			Email:      m.ShippingEmail,
			Phone:      m.ShippingPhone,
			Address:    m.ShippingAddress,
			PostalCode: m.ShippingPostalCode,
			City:       m.ShippingCity,
			Province:   m.ShippingProvince,
		},
		Items: make([]trade.OrderItem, 0, len(m.Items)),
	}
	for i := range m.Items {
		o.Items = append(o.Items, m.Items[i].ToDomain())
	}
	return o
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.Status = o.Status
	m.PaymentMethod = o.PaymentMethod
	m.Subtotal = o.Subtotal
	m.IVA = o.IVA
	m.Total = o.Total
	m.ShippingName = o.Shipping.Name
	m.ShippingEmail = o.Shipping.Email
	m.ShippingPhone = o.Shipping.Phone
	m.ShippingAddress = o.Shipping.Address
	m.ShippingPostalCode = o.Shipping.PostalCode
	m.ShippingCity = o.Shipping.City
	m.ShippingProvince = o.Shipping.Province
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i].FromDomain(o.ID, item)
	}
}

// OrderItemModel is the persistence model for an order line.
type OrderItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	ProductSlug      string          `gorm:"type:varchar(260);not null"`
	Price            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity         int             `gorm:"not null"`
	SelectedVariants VariantsJSON    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() trade.OrderItem {
	variants := map[string]string(m.SelectedVariants)
	if variants == nil {
		variants = map[string]string{}
	}
	return trade.OrderItem{
		ID:               m.ID,
		OrderID:          m.OrderID,
		ProductID:        m.ProductID,
		ProductName:      m.ProductName,
		ProductSlug:      m.ProductSlug,
		Price:            m.Price,
		Quantity:         m.Quantity,
		SelectedVariants: variants,
	}
}

// FromDomain populates the persistence model from a domain OrderItem.
func (m *OrderItemModel) FromDomain(orderID uuid.UUID, item trade.OrderItem) {
	m.ID = item.ID
	m.OrderID = orderID
	m.ProductID = item.ProductID
	m.ProductName = item.ProductName
	m.ProductSlug = item.ProductSlug
	m.Price = item.Price
	m.Quantity = item.Quantity
	m.SelectedVariants = VariantsJSON(item.SelectedVariants)
}

// VariantsJSON stores a variant selection as a JSON object in a text column
type VariantsJSON map[string]string

// Value implements driver.Valuer
func (v VariantsJSON) Value() (driver.Value, error) {
	if v == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(v))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (v *VariantsJSON) Scan(src any) error {
	var raw []byte
	switch s := src.(type) {
	case nil:
		*v = VariantsJSON{}
		return nil
	case string:
		raw = []byte(s)
	case []byte:
		raw = s
	default:
		return fmt.Errorf("unsupported type %T for selected variants", src)
	}
	out := VariantsJSON{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("decode selected variants: %w", err)
		}
	}
	*v = out
	return nil
}

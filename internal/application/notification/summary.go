package notification

import (
	"github.com/lateleria/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderSummary is the flat order view the confirmation email is built from
type OrderSummary struct {
	OrderNumber        string
	CustomerName       string
	CustomerEmail      string
	Items              []SummaryItem
	Subtotal           decimal.Decimal
	IVA                decimal.Decimal
	Total              decimal.Decimal
	ShippingAddress    string
	ShippingCity       string
	ShippingPostalCode string
	ShippingProvince   string
}

// SummaryItem is one ordered line
type SummaryItem struct {
	ProductName      string
	Quantity         int
	Price            decimal.Decimal
	SelectedVariants map[string]string
}

// LineTotal is price times quantity
func (i SummaryItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SummaryFromEvent flattens an OrderPlacedEvent
func SummaryFromEvent(e *trade.OrderPlacedEvent) OrderSummary {
	items := make([]SummaryItem, len(e.Items))
	for i, item := range e.Items {
		items[i] = SummaryItem{
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			Price:            item.Price,
			SelectedVariants: item.SelectedVariants,
		}
	}
	return OrderSummary{
		OrderNumber:        e.OrderNumber,
		CustomerName:       e.Shipping.Name,
		CustomerEmail:      e.Shipping.Email,
		Items:              items,
		Subtotal:           e.Subtotal,
		IVA:                e.IVA,
		Total:              e.Total,
		ShippingAddress:    e.Shipping.Address,
		ShippingCity:       e.Shipping.City,
		ShippingPostalCode: e.Shipping.PostalCode,
		ShippingProvince:   e.Shipping.Province,
	}
}

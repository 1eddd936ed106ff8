package cart

import (
	"github.com/lateleria/storefront/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// VATRate is the Spanish IVA applied uniformly to the subtotal
var VATRate = decimal.RequireFromString("0.21")

// PriceBreakdown holds derived totals. It is never stored.
type PriceBreakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"iva"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals returns subtotal = Σ price×qty, tax = round(subtotal×0.21, 2)
// and total = subtotal + tax.
func ComputeTotals(items []Item) PriceBreakdown {
	subtotal := valueobject.ZeroEUR()
	for _, item := range items {
		subtotal = subtotal.MustAdd(valueobject.NewEUR(item.Price).MultiplyByInt(int64(item.Quantity)))
	}
	tax := subtotal.Multiply(VATRate).Round(2)
	return PriceBreakdown{
		Subtotal: subtotal.Amount(),
		Tax:      tax.Amount(),
		Total:    subtotal.MustAdd(tax).Amount(),
	}
}

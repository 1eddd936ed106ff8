package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog view the cart needs to add a line
type Product struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	Image     *string
	Price     decimal.Decimal
	SalePrice *decimal.Decimal
	Variants  []VariantOption
}

// VariantOption is a purchasable variant value with an optional price override
type VariantOption struct {
	Name  string
	Value string
	Price *decimal.Decimal
}

// UnitPrice resolves the effective price for a selection: the first variant
// whose value is selected and carries an override wins, then a positive
// sale price, then the base price.
func (p Product) UnitPrice(selected VariantSelection) decimal.Decimal {
	if len(selected) > 0 {
		for _, v := range p.Variants {
			if v.Price == nil {
				continue
			}
			if chosen, ok := selected[v.Name]; ok && chosen == v.Value {
				return *v.Price
			}
		}
	}
	if p.SalePrice != nil && p.SalePrice.IsPositive() {
		return *p.SalePrice
	}
	return p.Price
}

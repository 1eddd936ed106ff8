package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one cart line. At most one item exists per (ProductID, signature).
type Item struct {
	ProductID        uuid.UUID        `json:"productId"`
	ProductName      string           `json:"productName"`
	ProductSlug      string           `json:"productSlug"`
	ProductImage     *string          `json:"productImage"`
	Price            decimal.Decimal  `json:"price"`
	Quantity         int              `json:"quantity"`
	SelectedVariants VariantSelection `json:"selectedVariants"`
}

// Signature returns the canonical variant signature of the item
func (i Item) Signature() VariantSignature {
	return i.SelectedVariants.Signature()
}

// Matches reports whether the item has the given identity
func (i Item) Matches(productID uuid.UUID, sig VariantSignature) bool {
	return i.ProductID == productID && i.Signature().Equal(sig)
}

// LineTotal is price times quantity
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i Item) clone() Item {
	i.SelectedVariants = i.SelectedVariants.Clone()
	if i.ProductImage != nil {
		img := *i.ProductImage
		i.ProductImage = &img
	}
	return i
}

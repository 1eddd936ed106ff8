package cart

import (
	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/cart"
)

// AddItemRequest adds a product to the session cart. Product accepts an ID
// or a slug; the unit price always comes from the catalog.
type AddItemRequest struct {
	Product          string            `json:"product" binding:"required" example:"toalla-lino"`
	Quantity         int               `json:"quantity" binding:"required,min=1" example:"1"`
	SelectedVariants map[string]string `json:"selectedVariants"`
}

// UpdateItemRequest sets the quantity of a cart line. Zero or less removes it.
type UpdateItemRequest struct {
	ProductID        uuid.UUID         `json:"productId" binding:"required"`
	Quantity         int               `json:"quantity"`
	SelectedVariants map[string]string `json:"selectedVariants"`
}

// RemoveItemRequest removes a cart line
type RemoveItemRequest struct {
	ProductID        uuid.UUID         `json:"productId" binding:"required"`
	SelectedVariants map[string]string `json:"selectedVariants"`
}

// CartResponse is the session cart with its derived totals
type CartResponse struct {
	Items     []cart.Item         `json:"items"`
	Totals    cart.PriceBreakdown `json:"totals"`
	ItemCount int                 `json:"itemCount"`
}

// ToCartResponse renders an engine
func ToCartResponse(e *cart.Engine) *CartResponse {
	items := e.Items()
	if items == nil {
		items = []cart.Item{}
	}
	return &CartResponse{
		Items:     items,
		Totals:    e.Totals(),
		ItemCount: e.ItemCount(),
	}
}

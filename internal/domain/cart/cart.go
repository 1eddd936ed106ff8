// Package cart implements the shopping cart: line items keyed by product and
// variant selection, merge/update/remove operations and derived totals.
package cart

import (
	"fmt"

	"github.com/google/uuid"
)

// Cart is the ordered collection of items a shopper intends to buy.
// It is single-writer; callers serialise access.
type Cart struct {
	items []Item
}

// New returns an empty cart
func New() *Cart {
	return &Cart{items: make([]Item, 0)}
}

// FromItems rebuilds a cart from persisted items, rejecting data that
// breaks the cart invariants.
func FromItems(items []Item) (*Cart, error) {
	c := New()
	for idx, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, fmt.Errorf("item %d: missing product id", idx)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("item %d: quantity %d is not positive", idx, item.Quantity)
		}
		if item.Price.IsNegative() {
			return nil, fmt.Errorf("item %d: negative price", idx)
		}
		if c.indexOf(item.ProductID, item.Signature()) >= 0 {
			return nil, fmt.Errorf("item %d: duplicate line for product %s %s", idx, item.ProductID, item.Signature())
		}
		c.items = append(c.items, item.clone())
	}
	return c, nil
}

// AddItem adds quantity units of product with the given selection. A line
// with the same identity has its quantity incremented; otherwise a new line
// is appended at the resolved unit price. Quantities below one are ignored.
func (c *Cart) AddItem(product Product, quantity int, selected VariantSelection) bool {
	if quantity < 1 {
		return false
	}
	sig := selected.Signature()
	if idx := c.indexOf(product.ID, sig); idx >= 0 {
		c.items[idx].Quantity += quantity
		return true
	}

	var image *string
	if product.Image != nil {
		img := *product.Image
		image = &img
	}
	c.items = append(c.items, Item{
		ProductID:        product.ID,
		ProductName:      product.Name,
		ProductSlug:      product.Slug,
		ProductImage:     image,
		Price:            product.UnitPrice(selected),
		Quantity:         quantity,
		SelectedVariants: selected.Clone(),
	})
	return true
}

// RemoveItem deletes the matching line. Absent lines are not an error.
func (c *Cart) RemoveItem(productID uuid.UUID, selected VariantSelection) bool {
	idx := c.indexOf(productID, selected.Signature())
	if idx < 0 {
		return false
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return true
}

// UpdateQuantity overwrites the quantity of the matching line. A quantity of
// zero or less removes the line.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int, selected VariantSelection) bool {
	if quantity <= 0 {
		return c.RemoveItem(productID, selected)
	}
	idx := c.indexOf(productID, selected.Signature())
	if idx < 0 {
		return false
	}
	c.items[idx].Quantity = quantity
	return true
}

// Clear empties the cart
func (c *Cart) Clear() bool {
	changed := len(c.items) > 0
	c.items = make([]Item, 0)
	return changed
}

// Items returns a copy of the lines in insertion order
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	for i, item := range c.items {
		out[i] = item.clone()
	}
	return out
}

// Totals computes the price breakdown over the current lines
func (c *Cart) Totals() PriceBreakdown {
	return ComputeTotals(c.items)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// ItemCount is the sum of all line quantities
func (c *Cart) ItemCount() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) indexOf(productID uuid.UUID, sig VariantSignature) int {
	for i := range c.items {
		if c.items[i].Matches(productID, sig) {
			return i
		}
	}
	return -1
}

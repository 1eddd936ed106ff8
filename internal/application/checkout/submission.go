package checkout

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/cart"
	"github.com/lateleria/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderSubmission is the order-creation request built from a cart. It is
// the body POSTed to the order endpoint.
type OrderSubmission struct {
	ShippingData trade.ShippingInfo `json:"shippingData"`
	Items        []SubmissionItem   `json:"items"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
	IVA          decimal.Decimal    `json:"iva"`
	Total        decimal.Decimal    `json:"total"`
}

// SubmissionItem is the flat item shape of an order submission
type SubmissionItem struct {
	ProductID        uuid.UUID         `json:"productId"`
	ProductName      string            `json:"productName"`
	ProductSlug      string            `json:"productSlug"`
	Price            decimal.Decimal   `json:"price"`
	Quantity         int               `json:"quantity"`
	SelectedVariants map[string]string `json:"selectedVariants"`
}

// OrderResult is what a successful submission hands back
type OrderResult struct {
	OrderNumber string `json:"orderNumber"`
	OrderID     string `json:"orderId"`
}

// SubmissionError is a rejected or failed order creation. Message is shown
// to the buyer as received.
type SubmissionError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("order submission failed (%d): %s", e.StatusCode, e.Message)
	}
	return "order submission failed: " + e.Message
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// BuildSubmission maps cart items and totals onto a submission. Items are
// copied so later cart mutations do not leak into the request.
func BuildSubmission(info trade.ShippingInfo, items []cart.Item, totals cart.PriceBreakdown) OrderSubmission {
	out := OrderSubmission{
		ShippingData: info,
		Items:        make([]SubmissionItem, len(items)),
		Subtotal:     totals.Subtotal,
		IVA:          totals.Tax,
		Total:        totals.Total,
	}
	for i, item := range items {
		variants := make(map[string]string, len(item.SelectedVariants))
		for k, v := range item.SelectedVariants {
			variants[k] = v
		}
		out.Items[i] = SubmissionItem{
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			ProductSlug:      item.ProductSlug,
			Price:            item.Price,
			Quantity:         item.Quantity,
			SelectedVariants: variants,
		}
	}
	return out
}

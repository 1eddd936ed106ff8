package checkout

import (
	"context"

	apptrade "github.com/lateleria/storefront/internal/application/trade"
	"github.com/shopspring/decimal"
)

// OrderPlacer places orders in-process
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req apptrade.PlaceOrderRequest) (*apptrade.PlaceOrderResult, error)
}

// LocalGateway submits orders to the order service running in the same
// process
type LocalGateway struct {
	orders OrderPlacer
}

// NewLocalGateway creates a new LocalGateway
func NewLocalGateway(orders OrderPlacer) *LocalGateway {
	return &LocalGateway{orders: orders}
}

// CreateOrder implements OrderGateway
func (g *LocalGateway) CreateOrder(ctx context.Context, submission OrderSubmission) (*OrderResult, error) {
	shipping := submission.ShippingData
	req := apptrade.PlaceOrderRequest{
		ShippingData: &shipping,
		Items:        make([]apptrade.PlaceOrderItem, len(submission.Items)),
		Subtotal:     decimalPtr(submission.Subtotal),
		IVA:          decimalPtr(submission.IVA),
		Total:        decimalPtr(submission.Total),
	}
	for i, item := range submission.Items {
		req.Items[i] = apptrade.PlaceOrderItem{
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			ProductSlug:      item.ProductSlug,
			Price:            decimalPtr(item.Price),
			Quantity:         item.Quantity,
			SelectedVariants: item.SelectedVariants,
		}
	}

	result, err := g.orders.PlaceOrder(ctx, req)
	if err != nil {
		return nil, &SubmissionError{Message: apptrade.PublicMessage(err), Err: err}
	}
	return &OrderResult{OrderNumber: result.OrderNumber, OrderID: result.OrderID.String()}, nil
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

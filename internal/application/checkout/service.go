package checkout

import (
	"context"
	"errors"

	"github.com/lateleria/storefront/internal/domain/cart"
	"github.com/lateleria/storefront/internal/domain/shared"
	"github.com/lateleria/storefront/internal/domain/trade"
	"go.uber.org/zap"
)

// ErrEmptyCart blocks submission of a cart without items
var ErrEmptyCart = shared.NewDomainError("EMPTY_CART", "El carrito está vacío")

// OrderGateway sends one order-creation request
type OrderGateway interface {
	CreateOrder(ctx context.Context, submission OrderSubmission) (*OrderResult, error)
}

// Cart is the part of a cart engine checkout reads and clears
type Cart interface {
	Items() []cart.Item
	Totals() cart.PriceBreakdown
	IsEmpty() bool
	Clear(ctx context.Context) error
}

// Service assembles and submits orders from a cart
type Service struct {
	gateway OrderGateway
	logger  *zap.Logger
}

// NewService creates a new checkout Service
func NewService(gateway OrderGateway, logger *zap.Logger) *Service {
	return &Service{gateway: gateway, logger: logger}
}

// Submit validates the shipping data, sends the cart as a single order
// request and clears the cart once the order exists. Validation problems
// come back as trade.ValidationErrors and remote failures as
// *SubmissionError; in both cases the cart is left as it was and nothing
// is retried.
func (s *Service) Submit(ctx context.Context, c Cart, info trade.ShippingInfo) (*OrderResult, error) {
	info = info.Normalize()
	if errs := info.Validate(); errs != nil {
		return nil, errs
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	result, err := s.gateway.CreateOrder(ctx, BuildSubmission(info, c.Items(), c.Totals()))
	if err != nil {
		var subErr *SubmissionError
		if !errors.As(err, &subErr) {
			subErr = &SubmissionError{Message: err.Error(), Err: err}
		}
		s.logger.Warn("order submission failed",
			zap.Int("status_code", subErr.StatusCode),
			zap.String("message", subErr.Message),
		)
		return nil, subErr
	}

	if err := c.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear cart after order",
			zap.String("order_number", result.OrderNumber),
			zap.Error(err),
		)
	}
	return result, nil
}

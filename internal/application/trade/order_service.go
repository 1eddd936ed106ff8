package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	catalogapp "github.com/lateleria/storefront/internal/application/catalog"
	"github.com/lateleria/storefront/internal/domain/cart"
	"github.com/lateleria/storefront/internal/domain/catalog"
	"github.com/lateleria/storefront/internal/domain/shared"
	"github.com/lateleria/storefront/internal/domain/trade"
	"github.com/lateleria/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultMaxNumberAttempts bounds order number regeneration on collisions
const DefaultMaxNumberAttempts = 5

// NumberGenerator produces candidate order numbers
type NumberGenerator interface {
	Generate() (string, error)
}

// OrderMetrics records order placement outcomes
type OrderMetrics interface {
	RecordOrderPlaced(ctx context.Context, total decimal.Decimal, units int)
}

// OrderService places storefront orders and serves the admin order views
type OrderService struct {
	orderRepo   trade.OrderRepository
	productRepo catalog.ProductRepository
	numbers     NumberGenerator
	events      shared.EventPublisher
	metrics     OrderMetrics
	logger      *zap.Logger
	maxAttempts int
}

// OrderServiceOption is a functional option for configuring the service
type OrderServiceOption func(*OrderService)

// WithMaxNumberAttempts overrides how many order numbers are tried
func WithMaxNumberAttempts(n int) OrderServiceOption {
	return func(s *OrderService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithOrderMetrics sets the metrics recorder
func WithOrderMetrics(m OrderMetrics) OrderServiceOption {
	return func(s *OrderService) {
		s.metrics = m
	}
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	numbers NumberGenerator,
	logger *zap.Logger,
	opts ...OrderServiceOption,
) *OrderService {
	s := &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		numbers:     numbers,
		logger:      logger,
		maxAttempts: DefaultMaxNumberAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEventPublisher sets the event publisher used after an order is stored
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// PlaceOrder validates an order-creation request against the catalog,
// stores the order under a fresh unique number and announces it.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "place", telemetry.AttrOrderItems.Int(len(req.Items)))
	defer span.End()

	result, err := s.placeOrder(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(telemetry.AttrOrderNumber.String(result.OrderNumber))
	return result, nil
}

func (s *OrderService) placeOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if req.ShippingData == nil || len(req.Items) == 0 {
		return nil, ErrMissingOrderData
	}
	shipping := req.ShippingData.Normalize()
	if errs := shipping.Validate(); errs != nil {
		return nil, &InvalidShippingError{Fields: errs}
	}

	lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	if err := checkTotals(req, trade.ComputeTotals(lines)); err != nil {
		return nil, err
	}

	order, err := s.store(ctx, shipping, lines)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("items_count", len(order.Items)),
	)
	if s.metrics != nil {
		s.metrics.RecordOrderPlaced(ctx, order.Total, order.ItemCount())
	}
	if s.events != nil {
		if err := s.events.Publish(ctx, order.GetDomainEvents()...); err != nil {
			s.logger.Warn("failed to publish order events",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err),
			)
		}
	}
	order.ClearDomainEvents()

	return &PlaceOrderResult{OrderNumber: order.OrderNumber, OrderID: order.ID}, nil
}

// resolveLines checks every item against the catalog. Names and slugs are
// taken from the catalog; the submitted price must equal the resolved one.
func (s *OrderService) resolveLines(ctx context.Context, items []PlaceOrderItem) ([]trade.OrderLine, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil || item.Quantity < 1 || item.Price == nil || item.Price.IsNegative() {
			return nil, &ItemRejectionError{Reason: ErrInvalidOrderItem, ProductName: item.ProductName}
		}
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load order products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]trade.OrderLine, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok || !product.Active {
			return nil, &ItemRejectionError{Reason: ErrProductUnavailable, ProductName: item.ProductName}
		}
		resolved := catalogapp.ToCartProduct(product).UnitPrice(item.SelectedVariants)
		if !resolved.Equal(*item.Price) {
			return nil, &ItemRejectionError{Reason: ErrPriceMismatch, ProductName: product.Name}
		}
		lines = append(lines, trade.OrderLine{
			ProductID:        product.ID,
			ProductName:      product.Name,
			ProductSlug:      product.Slug,
			Price:            resolved,
			Quantity:         item.Quantity,
			SelectedVariants: item.SelectedVariants,
		})
	}
	return lines, nil
}

// store inserts the order, regenerating the number when it clashes with an
// existing one
func (s *OrderService) store(ctx context.Context, shipping trade.ShippingInfo, lines []trade.OrderLine) (*trade.Order, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		number, err := s.numbers.Generate()
		if err != nil {
			return nil, fmt.Errorf("%w: generate order number: %w", ErrOrderNotCreated, err)
		}

		exists, err := s.orderRepo.ExistsByOrderNumber(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("%w: check order number: %w", ErrOrderNotCreated, err)
		}
		if exists {
			s.logger.Warn("order number collision", zap.String("order_number", number), zap.Int("attempt", attempt))
			continue
		}

		order, err := trade.NewOrder(number, shipping, lines)
		if err != nil {
			return nil, err
		}
		err = s.orderRepo.Create(ctx, order)
		if errors.Is(err, shared.ErrAlreadyExists) {
			s.logger.Warn("order number taken at insert", zap.String("order_number", number), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOrderNotCreated, err)
		}
		return order, nil
	}
	return nil, fmt.Errorf("%w: no free order number after %d attempts", ErrOrderNotCreated, s.maxAttempts)
}

func checkTotals(req PlaceOrderRequest, want cart.PriceBreakdown) error {
	if req.Subtotal == nil || req.IVA == nil || req.Total == nil {
		return ErrTotalsMismatch
	}
	if !req.Subtotal.Equal(want.Subtotal) || !req.IVA.Equal(want.Tax) || !req.Total.Equal(want.Total) {
		return ErrTotalsMismatch
	}
	return nil
}

// List lists orders newest first
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindAll(ctx, trade.OrderFilter{
		Status: trade.OrderStatus(filter.Status),
		Search: strings.TrimSpace(filter.Search),
	})
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// GetByID returns an order with its items
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// UpdateStatus moves an order to pending, pagado or enviado
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateOrderStatusRequest) (*OrderResponse, error) {
	status := trade.OrderStatus(strings.TrimSpace(req.Status))
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Estado no válido. Debe ser: pending, pagado o enviado")
	}
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.ChangeStatus(status); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateStatus(ctx, order); err != nil {
		return nil, err
	}
	if s.events != nil {
		if err := s.events.Publish(ctx, order.GetDomainEvents()...); err != nil {
			s.logger.Warn("failed to publish order events", zap.String("order_id", id.String()), zap.Error(err))
		}
	}
	order.ClearDomainEvents()

	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) find(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

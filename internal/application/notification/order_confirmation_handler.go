package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lateleria/storefront/internal/domain/shared"
	"github.com/lateleria/storefront/internal/domain/trade"
	"go.uber.org/zap"
)

// DefaultSendTimeout bounds a single confirmation delivery
const DefaultSendTimeout = 15 * time.Second

// FailureRecorder counts notification failures
type FailureRecorder interface {
	RecordNotificationFailure(ctx context.Context)
}

// OrderConfirmationHandler sends the confirmation email for placed orders.
// Delivery runs on its own goroutine with its own timeout; the publishing
// request never waits for it and never sees its outcome.
type OrderConfirmationHandler struct {
	mailer   Mailer
	renderer *EmailRenderer
	logger   *zap.Logger
	timeout  time.Duration
	failures FailureRecorder
	wg       sync.WaitGroup
}

// HandlerOption configures an OrderConfirmationHandler
type HandlerOption func(*OrderConfirmationHandler)

// WithSendTimeout overrides the per-email timeout
func WithSendTimeout(d time.Duration) HandlerOption {
	return func(h *OrderConfirmationHandler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithFailureRecorder sets the metrics sink for failed deliveries
func WithFailureRecorder(r FailureRecorder) HandlerOption {
	return func(h *OrderConfirmationHandler) {
		h.failures = r
	}
}

// NewOrderConfirmationHandler creates a new handler for order placed events
func NewOrderConfirmationHandler(mailer Mailer, renderer *EmailRenderer, logger *zap.Logger, opts ...HandlerOption) *OrderConfirmationHandler {
	h := &OrderConfirmationHandler{
		mailer:   mailer,
		renderer: renderer,
		logger:   logger,
		timeout:  DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *OrderConfirmationHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderPlaced}
}

// Handle starts the confirmation delivery and returns immediately
func (h *OrderConfirmationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	placed, ok := event.(*trade.OrderPlacedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeOrderPlaced, event.EventType())
	}

	summary := SummaryFromEvent(placed)
	sendCtx := context.WithoutCancel(ctx)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.send(sendCtx, summary)
	}()
	return nil
}

func (h *OrderConfirmationHandler) send(ctx context.Context, summary OrderSummary) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err := h.deliver(ctx, summary)
	if err == nil {
		h.logger.Info("order confirmation sent",
			zap.String("order_number", summary.OrderNumber),
			zap.String("email", summary.CustomerEmail),
		)
		return
	}

	h.logger.Warn("order confirmation not sent",
		zap.String("order_number", summary.OrderNumber),
		zap.String("email", summary.CustomerEmail),
		zap.Error(err),
	)
	if h.failures != nil {
		h.failures.RecordNotificationFailure(context.WithoutCancel(ctx))
	}
}

func (h *OrderConfirmationHandler) deliver(ctx context.Context, summary OrderSummary) error {
	email, err := h.renderer.RenderOrderConfirmation(summary)
	if err != nil {
		return err
	}
	return h.mailer.Send(ctx, email)
}

// Wait blocks until in-flight deliveries finish or ctx is done
func (h *OrderConfirmationHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package event

import (
	"context"
	"sync/atomic"

	"github.com/lateleria/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotentHandler runs the wrapped handler at most once per event ID
// within the configured TTL
type IdempotentHandler struct {
	handler    shared.EventHandler
	store      shared.IdempotencyStore
	config     shared.IdempotencyConfig
	logger     *zap.Logger
	duplicates atomic.Int64
}

// IdempotentHandlerOption is a functional option for IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig sets the idempotency configuration
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.config = config
	}
}

// NewIdempotentHandler wraps handler with duplicate detection backed by store
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	h := &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle forwards the event unless its ID was already marked. A store
// failure lets the event through.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	eventID := event.EventID().String()
	isNew, err := h.store.MarkProcessed(ctx, eventID, h.config.TTL)
	switch {
	case err != nil:
		h.logger.Warn("idempotency check failed, handling anyway",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	case !isNew:
		h.duplicates.Add(1)
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	return h.handler.Handle(ctx, event)
}

// Wait drains the wrapped handler when it has background work
func (h *IdempotentHandler) Wait(ctx context.Context) error {
	if d, ok := h.handler.(Drainer); ok {
		return d.Wait(ctx)
	}
	return nil
}

// Duplicates returns how many events were skipped
func (h *IdempotentHandler) Duplicates() int64 {
	return h.duplicates.Load()
}

var (
	_ shared.EventHandler = (*IdempotentHandler)(nil)
	_ Drainer             = (*IdempotentHandler)(nil)
)

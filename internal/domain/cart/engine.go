package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DiscardHook is told when a corrupt snapshot was thrown away
type DiscardHook func(key string, cause error)

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithDiscardHook registers a callback for discarded snapshots
func WithDiscardHook(hook DiscardHook) EngineOption {
	return func(e *Engine) {
		e.onDiscard = hook
	}
}

// Engine is a cart bound to a snapshot store. It rehydrates once when opened
// and writes the whole snapshot synchronously after every mutation.
type Engine struct {
	cart      *Cart
	store     SnapshotStore
	key       string
	onDiscard DiscardHook
}

// OpenEngine loads the cart stored under key. A missing snapshot yields an
// empty cart; a corrupt one is deleted and also yields an empty cart.
func OpenEngine(ctx context.Context, store SnapshotStore, key string, opts ...EngineOption) (*Engine, error) {
	e := &Engine{store: store, key: key, cart: New()}
	for _, opt := range opts {
		opt(e)
	}

	data, err := store.Load(ctx, key)
	if errors.Is(err, ErrSnapshotNotFound) {
		return e, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart %q: %w", key, err)
	}

	restored, err := UnmarshalSnapshot(data)
	if err != nil {
		if e.onDiscard != nil {
			e.onDiscard(key, err)
		}
		if delErr := store.Delete(ctx, key); delErr != nil && !errors.Is(delErr, ErrSnapshotNotFound) {
			return nil, fmt.Errorf("discard corrupt cart %q: %w", key, delErr)
		}
		return e, nil
	}
	e.cart = restored
	return e, nil
}

// Key returns the storage key the engine writes to
func (e *Engine) Key() string {
	return e.key
}

// AddItem adds to the cart and persists the snapshot
func (e *Engine) AddItem(ctx context.Context, product Product, quantity int, selected VariantSelection) error {
	e.cart.AddItem(product, quantity, selected)
	return e.persist(ctx)
}

// RemoveItem removes the matching line and persists the snapshot
func (e *Engine) RemoveItem(ctx context.Context, productID uuid.UUID, selected VariantSelection) error {
	e.cart.RemoveItem(productID, selected)
	return e.persist(ctx)
}

// UpdateQuantity sets a line quantity (removing on <= 0) and persists the snapshot
func (e *Engine) UpdateQuantity(ctx context.Context, productID uuid.UUID, quantity int, selected VariantSelection) error {
	e.cart.UpdateQuantity(productID, quantity, selected)
	return e.persist(ctx)
}

// Clear empties the cart and persists the empty snapshot
func (e *Engine) Clear(ctx context.Context) error {
	e.cart.Clear()
	return e.persist(ctx)
}

func (e *Engine) Items() []Item          { return e.cart.Items() }
func (e *Engine) Totals() PriceBreakdown { return e.cart.Totals() }
func (e *Engine) IsEmpty() bool          { return e.cart.IsEmpty() }
func (e *Engine) ItemCount() int         { return e.cart.ItemCount() }

func (e *Engine) persist(ctx context.Context) error {
	data, err := MarshalSnapshot(e.cart.Items())
	if err != nil {
		return fmt.Errorf("encode cart %q: %w", e.key, err)
	}
	if err := e.store.Save(ctx, e.key, data); err != nil {
		return fmt.Errorf("save cart %q: %w", e.key, err)
	}
	return nil
}

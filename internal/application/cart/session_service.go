package cart

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/cart"
	"github.com/lateleria/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

const lockStripes = 64

var (
	// ErrInvalidSession is returned for session ids that are not UUIDs
	ErrInvalidSession = shared.NewDomainError("INVALID_SESSION", "Sesión de carrito no válida")
	// ErrInvalidQuantity is returned when adding less than one unit
	ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "La cantidad debe ser al menos 1")
)

// ProductFinder resolves an active product by id or slug
type ProductFinder interface {
	FindPurchasable(ctx context.Context, idOrSlug string) (cart.Product, error)
}

// SessionService exposes one cart engine per shopper session. Calls for the
// same session are serialised; the snapshot store is the only shared state.
type SessionService struct {
	store    cart.SnapshotStore
	products ProductFinder
	logger   *zap.Logger
	locks    [lockStripes]sync.Mutex
}

// NewSessionService creates a new SessionService
func NewSessionService(store cart.SnapshotStore, products ProductFinder, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:    store,
		products: products,
		logger:   logger,
	}
}

// NewSessionID issues a fresh session id
func NewSessionID() string {
	return uuid.NewString()
}

// IsValidSessionID reports whether id can name a cart session
func IsValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// WithCart runs fn with the session's engine while holding the session lock
func (s *SessionService) WithCart(ctx context.Context, session string, fn func(*cart.Engine) error) error {
	if !IsValidSessionID(session) {
		return ErrInvalidSession
	}
	mu := s.lockFor(session)
	mu.Lock()
	defer mu.Unlock()

	engine, err := cart.OpenEngine(ctx, s.store, session, cart.WithDiscardHook(s.logDiscard))
	if err != nil {
		return err
	}
	return fn(engine)
}

// Get returns the session cart
func (s *SessionService) Get(ctx context.Context, session string) (*CartResponse, error) {
	return s.render(ctx, session, func(*cart.Engine) error { return nil })
}

// AddItem adds units of a catalog product, merging with an existing line
// for the same variant selection
func (s *SessionService) AddItem(ctx context.Context, session string, req AddItemRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.products.FindPurchasable(ctx, req.Product)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, session, func(e *cart.Engine) error {
		return e.AddItem(ctx, product, req.Quantity, req.SelectedVariants)
	})
}

// UpdateQuantity sets a line's quantity, removing it when quantity <= 0
func (s *SessionService) UpdateQuantity(ctx context.Context, session string, req UpdateItemRequest) (*CartResponse, error) {
	return s.render(ctx, session, func(e *cart.Engine) error {
		return e.UpdateQuantity(ctx, req.ProductID, req.Quantity, req.SelectedVariants)
	})
}

// RemoveItem removes a line
func (s *SessionService) RemoveItem(ctx context.Context, session string, req RemoveItemRequest) (*CartResponse, error) {
	return s.render(ctx, session, func(e *cart.Engine) error {
		return e.RemoveItem(ctx, req.ProductID, req.SelectedVariants)
	})
}

// Clear empties the cart
func (s *SessionService) Clear(ctx context.Context, session string) (*CartResponse, error) {
	return s.render(ctx, session, func(e *cart.Engine) error {
		return e.Clear(ctx)
	})
}

// Totals returns the price breakdown of the session cart
func (s *SessionService) Totals(ctx context.Context, session string) (cart.PriceBreakdown, error) {
	resp, err := s.Get(ctx, session)
	if err != nil {
		return cart.PriceBreakdown{}, err
	}
	return resp.Totals, nil
}

func (s *SessionService) render(ctx context.Context, session string, mutate func(*cart.Engine) error) (*CartResponse, error) {
	var resp *CartResponse
	err := s.WithCart(ctx, session, func(e *cart.Engine) error {
		if err := mutate(e); err != nil {
			return err
		}
		resp = ToCartResponse(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *SessionService) lockFor(session string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(session))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *SessionService) logDiscard(key string, cause error) {
	s.logger.Warn("discarded corrupt cart snapshot",
		zap.String("cart_session", key),
		zap.Error(cause),
	)
}

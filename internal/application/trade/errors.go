package trade

import (
	"errors"

	"github.com/lateleria/storefront/internal/domain/shared"
	"github.com/lateleria/storefront/internal/domain/trade"
)

// Order placement rejections. Codes are mapped to HTTP statuses by the
// order-creation endpoint.
var (
	ErrMissingOrderData   = shared.NewDomainError("MISSING_ORDER_DATA", "Datos de envío y productos son requeridos")
	ErrInvalidShipping    = shared.NewDomainError("INVALID_SHIPPING", "Datos de envío no válidos")
	ErrInvalidOrderItem   = shared.NewDomainError("INVALID_ORDER_ITEM", "Hay productos con cantidad o precio no válidos")
	ErrTotalsMismatch     = shared.NewDomainError("TOTALS_MISMATCH", "Los totales del pedido no coinciden")
	ErrProductUnavailable = shared.NewDomainError("PRODUCT_UNAVAILABLE", "Uno de los productos ya no está disponible")
	ErrPriceMismatch      = shared.NewDomainError("PRICE_MISMATCH", "El precio de uno de los productos ha cambiado")
	ErrOrderNotCreated    = shared.NewDomainError("ORDER_NOT_CREATED", "Error al crear el pedido")
	ErrOrderNotFound      = shared.NewDomainError("ORDER_NOT_FOUND", "Pedido no encontrado")
)

// InvalidShippingError carries the per-field shipping problems
type InvalidShippingError struct {
	Fields trade.ValidationErrors
}

func (e *InvalidShippingError) Error() string { return ErrInvalidShipping.Message }
func (e *InvalidShippingError) Unwrap() error { return ErrInvalidShipping }

// ItemRejectionError names the product a rejection is about
type ItemRejectionError struct {
	Reason      *shared.DomainError
	ProductName string
}

func (e *ItemRejectionError) Error() string {
	if e.ProductName == "" {
		return e.Reason.Message
	}
	return e.Reason.Message + ": " + e.ProductName
}

func (e *ItemRejectionError) Unwrap() error { return e.Reason }

// PublicMessage returns the buyer-facing message for an order placement
// error. Internal failures collapse to the generic creation message.
func PublicMessage(err error) string {
	var shipping *InvalidShippingError
	if errors.As(err, &shipping) {
		return shipping.Error()
	}
	var rejection *ItemRejectionError
	if errors.As(err, &rejection) {
		return rejection.Error()
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Code != ErrOrderNotCreated.Code {
		return domainErr.Message
	}
	return ErrOrderNotCreated.Message
}

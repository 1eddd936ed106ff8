package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	cartapp "github.com/lateleria/storefront/internal/application/cart"
	"github.com/lateleria/storefront/internal/application/checkout"
	"github.com/lateleria/storefront/internal/domain/cart"
	"github.com/lateleria/storefront/internal/domain/shared"
	"github.com/lateleria/storefront/internal/domain/trade"
	"github.com/lateleria/storefront/internal/infrastructure/logger"
	"github.com/lateleria/storefront/internal/interfaces/http/dto"
	"github.com/lateleria/storefront/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// CartHandler exposes the shopper's session cart
type CartHandler struct {
	BaseHandler
	sessions *cartapp.SessionService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(sessions *cartapp.SessionService) *CartHandler {
	return &CartHandler{sessions: sessions}
}

func (h *BaseHandler) cartSession(c *gin.Context) (string, bool) {
	session, ok := middleware.GetCartSession(c)
	if !ok {
		h.HandleError(c, cartapp.ErrInvalidSession)
	}
	return session, ok
}

// Get godoc
// @Summary      Get cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /carrito [get]
func (h *CartHandler) Get(c *gin.Context) {
	session, ok := h.cartSession(c)
	if !ok {
		return
	}
	resp, err := h.sessions.Get(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddItem godoc
// @Summary      Add to cart
// @Description  Adds units of an active product; the price comes from the catalog
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.AddItemRequest true "Item"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /carrito/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	session, ok := h.cartSession(c)
	if !ok {
		return
	}
	var req cartapp.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.sessions.AddItem(c.Request.Context(), session, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateItem godoc
// @Summary      Set item quantity
// @Description  A quantity of zero or less removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.UpdateItemRequest true "Item"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /carrito/items [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	session, ok := h.cartSession(c)
	if !ok {
		return
	}
	var req cartapp.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.sessions.UpdateQuantity(c.Request.Context(), session, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem godoc
// @Summary      Remove item
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.RemoveItemRequest true "Item"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /carrito/items [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	session, ok := h.cartSession(c)
	if !ok {
		return
	}
	var req cartapp.RemoveItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.sessions.RemoveItem(c.Request.Context(), session, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Clear godoc
// @Summary      Empty cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /carrito [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	session, ok := h.cartSession(c)
	if !ok {
		return
	}
	resp, err := h.sessions.Clear(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Totals godoc
// @Summary      Cart totals
// @Description  Subtotal, 21% IVA and total
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cart.PriceBreakdown}
// @Router       /carrito/totales [get]
func (h *CartHandler) Totals(c *gin.Context) {
	session, ok := h.cartSession(c)
	if !ok {
		return
	}
	totals, err := h.sessions.Totals(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}

// CheckoutHandler submits the session cart as an order
type CheckoutHandler struct {
	BaseHandler
	sessions *cartapp.SessionService
	checkout *checkout.Service
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(sessions *cartapp.SessionService, checkoutService *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions, checkout: checkoutService}
}

// CheckoutRequest carries the buyer's shipping data
type CheckoutRequest struct {
	ShippingData trade.ShippingInfo `json:"shippingData"`
}

// ValidateShippingRequest validates the whole form, or only Field when set
type ValidateShippingRequest struct {
	ShippingData trade.ShippingInfo `json:"shippingData"`
	Field        string             `json:"field"`
}

// ValidateShippingResponse lists the fields that failed and why
type ValidateShippingResponse struct {
	Valid  bool              `json:"valid"`
	Fields map[string]string `json:"fields"`
}

const codeOrderRejected = "ORDER_REJECTED"

// Submit godoc
// @Summary      Checkout
// @Description  Validates shipping data and places the session cart as one order. The cart is emptied only on success.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body CheckoutRequest true "Shipping data"
// @Success      201 {object} dto.Response{data=checkout.OrderResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /checkout [post]
func (h *CheckoutHandler) Submit(c *gin.Context) {
	session, ok := h.cartSession(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var result *checkout.OrderResult
	err := h.sessions.WithCart(ctx, session, func(engine *cart.Engine) error {
		var submitErr error
		result, submitErr = h.checkout.Submit(ctx, engine, req.ShippingData)
		return submitErr
	})
	if err != nil {
		h.checkoutError(c, err)
		return
	}
	h.Created(c, result)
}

func (h *CheckoutHandler) checkoutError(c *gin.Context, err error) {
	var fieldErrs trade.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]dto.ValidationDetail, 0, len(fieldErrs))
		for _, field := range trade.ShippingFields {
			if reason, ok := fieldErrs[field]; ok {
				details = append(details, dto.ValidationDetail{Field: field, Tag: reason, Message: shippingFieldMessage(reason)})
			}
		}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Revisa los datos de envío", getRequestID(c), details))
		return
	}

	var subErr *checkout.SubmissionError
	if errors.As(err, &subErr) {
		status := subErr.StatusCode
		var domainErr *shared.DomainError
		if status == 0 && errors.As(subErr.Err, &domainErr) {
			status = dto.GetHTTPStatus(domainErr.Code)
		}
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		logger.GetGinLogger(c).Warn("checkout failed", zap.Int("status", status), zap.Error(err))
		h.Error(c, status, codeOrderRejected, subErr.Message)
		return
	}

	h.HandleError(c, err)
}

func shippingFieldMessage(reason string) string {
	if reason == trade.ReasonRequired {
		return "Este campo es obligatorio"
	}
	return "Formato no válido"
}

// Validate godoc
// @Summary      Validate shipping data
// @Description  Per-field validation for the checkout form; with field set only that field is checked
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body ValidateShippingRequest true "Shipping data"
// @Success      200 {object} dto.Response{data=ValidateShippingResponse}
// @Router       /checkout/validar [post]
func (h *CheckoutHandler) Validate(c *gin.Context) {
	var req ValidateShippingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if req.Field != "" && !trade.IsShippingField(req.Field) {
		h.BadRequest(c, "Campo desconocido")
		return
	}

	fields := map[string]string{}
	if req.Field != "" {
		if reason := trade.ValidateField(req.Field, req.ShippingData.Get(req.Field)); reason != "" {
			fields[req.Field] = reason
		}
	} else {
		for field, reason := range req.ShippingData.Validate() {
			fields[field] = reason
		}
	}
	h.Success(c, ValidateShippingResponse{Valid: len(fields) == 0, Fields: fields})
}

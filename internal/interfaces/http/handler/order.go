package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/lateleria/storefront/internal/application/trade"
	"github.com/lateleria/storefront/internal/domain/shared"
	"github.com/lateleria/storefront/internal/infrastructure/logger"
	"github.com/lateleria/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// OrderHandler serves order creation and order administration
type OrderHandler struct {
	BaseHandler
	orders *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create godoc
// @Summary      Create order
// @Description  Places a bank-transfer order. Prices and totals are checked against the catalog.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.PlaceOrderRequest true "Order"
// @Success      201 {object} dto.OrderCreatedResponse
// @Failure      400 {object} dto.OrderErrorResponse
// @Failure      422 {object} dto.OrderErrorResponse
// @Failure      500 {object} dto.OrderErrorResponse
// @Router       /pedidos [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req tradeapp.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.OrderErrorResponse{Error: "Datos del pedido no válidos"})
		return
	}

	result, err := h.orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.orderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OrderCreatedResponse{
		Success:     true,
		OrderNumber: result.OrderNumber,
		OrderID:     result.OrderID.String(),
	})
}

func (h *OrderHandler) orderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status = dto.GetHTTPStatus(domainErr.Code)
	}

	body := dto.OrderErrorResponse{Error: tradeapp.PublicMessage(err)}
	var shipping *tradeapp.InvalidShippingError
	if errors.As(err, &shipping) {
		body.Fields = shipping.Fields
	}

	log := logger.GetGinLogger(c)
	if status >= http.StatusInternalServerError {
		log.Error("order creation failed", zap.Error(err))
	} else {
		log.Info("order rejected", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, body)
}

// List godoc
// @Summary      List orders
// @Description  Newest first, filtered by status and searched by number, name or email
// @Tags         admin-orders
// @Produce      json
// @Param        status query string false "pending, pagado or enviado"
// @Param        search query string false "Order number, customer name or email"
// @Success      200 {object} dto.Response{data=[]tradeapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/pedidos [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter tradeapp.OrderListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	orders, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Get godoc
// @Summary      Get order
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/pedidos/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus godoc
// @Summary      Update order status
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body tradeapp.UpdateOrderStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/pedidos/{id} [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdateOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

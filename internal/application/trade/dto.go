package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// PlaceOrderItem is one line of an order-creation request
type PlaceOrderItem struct {
	ProductID        uuid.UUID         `json:"productId"`
	ProductName      string            `json:"productName"`
	ProductSlug      string            `json:"productSlug"`
	Price            *decimal.Decimal  `json:"price"`
	Quantity         int               `json:"quantity"`
	SelectedVariants map[string]string `json:"selectedVariants"`
}

// PlaceOrderRequest is the order-creation request body
type PlaceOrderRequest struct {
	ShippingData *trade.ShippingInfo `json:"shippingData"`
	Items        []PlaceOrderItem    `json:"items"`
	Subtotal     *decimal.Decimal    `json:"subtotal"`
	IVA          *decimal.Decimal    `json:"iva"`
	Total        *decimal.Decimal    `json:"total"`
}

// PlaceOrderResult identifies a newly created order
type PlaceOrderResult struct {
	OrderNumber string    `json:"orderNumber"`
	OrderID     uuid.UUID `json:"orderId"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID               uuid.UUID         `json:"id"`
	OrderID          uuid.UUID         `json:"orderId"`
	ProductID        uuid.UUID         `json:"productId"`
	ProductName      string            `json:"productName"`
	ProductSlug      string            `json:"productSlug"`
	Price            decimal.Decimal   `json:"price"`
	Quantity         int               `json:"quantity"`
	SelectedVariants map[string]string `json:"selectedVariants"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	OrderNumber        string              `json:"orderNumber"`
	Status             string              `json:"status"`
	PaymentMethod      string              `json:"paymentMethod"`
	Subtotal           decimal.Decimal     `json:"subtotal"`
	IVA                decimal.Decimal     `json:"iva"`
	Total              decimal.Decimal     `json:"total"`
	CustomerName       string              `json:"customerName"`
	CustomerEmail      string              `json:"customerEmail"`
	CustomerPhone      string              `json:"customerPhone"`
	ShippingAddress    string              `json:"shippingAddress"`
	ShippingCity       string              `json:"shippingCity"`
	ShippingPostalCode string              `json:"shippingPostalCode"`
	ShippingProvince   string              `json:"shippingProvince"`
	Items              []OrderItemResponse `json:"items"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// OrderListFilter represents filter options for the admin order list
type OrderListFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=pending pagado enviado"`
	Search string `form:"search"`
}

// UpdateOrderStatusRequest changes an order's status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" example:"pagado"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	resp := OrderResponse{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		Status:             o.Status.String(),
		PaymentMethod:      o.PaymentMethod,
		Subtotal:           o.Subtotal,
		IVA:                o.IVA,
		Total:              o.Total,
		CustomerName:       o.Shipping.Name,
		CustomerEmail:      o.Shipping.Email,
		CustomerPhone:      o.Shipping.Phone,
		ShippingAddress:    o.Shipping.Address,
		ShippingCity:       o.Shipping.City,
		ShippingPostalCode: o.Shipping.PostalCode,
		ShippingProvince:   o.Shipping.Province,
		Items:              make([]OrderItemResponse, len(o.Items)),
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	for i, item := range o.Items {
		resp.Items[i] = OrderItemResponse{
			ID:               item.ID,
			OrderID:          item.OrderID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			ProductSlug:      item.ProductSlug,
			Price:            item.Price,
			Quantity:         item.Quantity,
			SelectedVariants: item.SelectedVariants,
		}
	}
	return resp
}

// ToOrderResponses converts a slice of domain Orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/lateleria/storefront/internal/application/cart"
	catalogapp "github.com/lateleria/storefront/internal/application/catalog"
	"github.com/lateleria/storefront/internal/application/checkout"
	tradeapp "github.com/lateleria/storefront/internal/application/trade"
	"github.com/lateleria/storefront/internal/domain/cart"
	"github.com/lateleria/storefront/internal/domain/catalog"
	"github.com/lateleria/storefront/internal/interfaces/http/dto"
	"github.com/lateleria/storefront/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartRouter(env *storeEnv) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())

	carts := NewCartHandler(env.sessions)
	checkouts := NewCheckoutHandler(env.sessions, env.checkout)

	session := r.Group("", middleware.CartSession(middleware.DefaultCartSessionConfig()))
	session.GET("/carrito", carts.Get)
	session.DELETE("/carrito", carts.Clear)
	session.GET("/carrito/totales", carts.Totals)
	session.POST("/carrito/items", carts.AddItem)
	session.PATCH("/carrito/items", carts.UpdateItem)
	session.DELETE("/carrito/items", carts.RemoveItem)
	session.POST("/checkout", checkouts.Submit)
	r.POST("/checkout/validar", checkouts.Validate)
	return r
}

// shopper keeps the cart session between requests
type shopper struct {
	t       *testing.T
	r       *gin.Engine
	session string
}

func newShopper(t *testing.T, r *gin.Engine) *shopper {
	return &shopper{t: t, r: r, session: cartapp.NewSessionID()}
}

func (s *shopper) do(method, path string, body any) (int, envelope, []byte) {
	w := doJSON(s.t, s.r, method, path, body, middleware.CartSessionHeader, s.session)
	return w.Code, decodeEnvelope(s.t, w, nil), w.Body.Bytes()
}

func (s *shopper) cart(method, path string, body any) (int, cartapp.CartResponse) {
	w := doJSON(s.t, s.r, method, path, body, middleware.CartSessionHeader, s.session)
	var resp cartapp.CartResponse
	decodeEnvelope(s.t, w, &resp)
	return w.Code, resp
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func catalogInput(name, price string) catalogapp.ProductInput {
	p := decimal.RequireFromString(price)
	return catalogapp.ProductInput{Name: name, Price: &p}
}

func TestCartHandler_SessionIssued(t *testing.T) {
	env := newStoreEnv(t)
	r := newCartRouter(env)

	w := doJSON(t, r, http.MethodGet, "/carrito", nil)
	require.Equal(t, http.StatusOK, w.Code)
	issued := w.Header().Get(middleware.CartSessionHeader)
	assert.True(t, cartapp.IsValidSessionID(issued))

	var resp cartapp.CartResponse
	decodeEnvelope(t, w, &resp)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.ItemCount)
	assertDecimal(t, "0", resp.Totals.Total)
}

func TestCartHandler_AddUpdateRemove(t *testing.T) {
	env := newStoreEnv(t)
	p := env.seedProduct(t, "Mantel de lino", "25", nil)
	r := newCartRouter(env)
	s := newShopper(t, r)

	code, resp := s.cart(http.MethodPost, "/carrito/items", map[string]any{"product": p.Slug, "quantity": 2})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.ItemCount)
	assertDecimal(t, "50", resp.Totals.Subtotal)
	assertDecimal(t, "10.5", resp.Totals.Tax)
	assertDecimal(t, "60.5", resp.Totals.Total)

	// adding by id merges into the same line
	code, resp = s.cart(http.MethodPost, "/carrito/items", map[string]any{"product": p.ID.String(), "quantity": 1})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Items[0].Quantity)

	code, resp = s.cart(http.MethodPatch, "/carrito/items", map[string]any{"productId": p.ID.String(), "quantity": 1})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, resp.ItemCount)

	code, resp = s.cart(http.MethodPatch, "/carrito/items", map[string]any{"productId": p.ID.String(), "quantity": 0})
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Items)

	s.cart(http.MethodPost, "/carrito/items", map[string]any{"product": p.Slug, "quantity": 1})
	code, resp = s.cart(http.MethodDelete, "/carrito/items", map[string]any{"productId": p.ID.String()})
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Items)
}

func TestCartHandler_Variants(t *testing.T) {
	env := newStoreEnv(t)
	large := decimal.RequireFromString("55")
	p := env.seedProduct(t, "Sábanas", "45", nil,
		catalog.VariantSpec{Name: "Talla", Value: "90", Stock: 3},
		catalog.VariantSpec{Name: "Talla", Value: "150", Price: &large, Stock: 3},
	)
	r := newCartRouter(env)
	s := newShopper(t, r)

	s.cart(http.MethodPost, "/carrito/items", map[string]any{"product": p.Slug, "quantity": 1, "selectedVariants": map[string]string{"Talla": "90"}})
	_, resp := s.cart(http.MethodPost, "/carrito/items", map[string]any{"product": p.Slug, "quantity": 1, "selectedVariants": map[string]string{"Talla": "150"}})

	require.Len(t, resp.Items, 2)
	assertDecimal(t, "100", resp.Totals.Subtotal)

	_, resp = s.cart(http.MethodDelete, "/carrito/items", map[string]any{"productId": p.ID.String(), "selectedVariants": map[string]string{"Talla": "150"}})
	require.Len(t, resp.Items, 1)
	assert.Equal(t, cart.VariantSelection{"Talla": "90"}, resp.Items[0].SelectedVariants)
}

func TestCartHandler_Errors(t *testing.T) {
	env := newStoreEnv(t)
	r := newCartRouter(env)
	s := newShopper(t, r)

	code, resp, _ := s.do(http.MethodPost, "/carrito/items", map[string]any{"product": "no-existe", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PRODUCT_NOT_FOUND", resp.Error.Code)

	code, _, _ = s.do(http.MethodPost, "/carrito/items", map[string]any{"product": "x", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, _ = s.do(http.MethodPatch, "/carrito/items", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCartHandler_TotalsAndClear(t *testing.T) {
	env := newStoreEnv(t)
	p := env.seedProduct(t, "Cojín", "10", nil)
	r := newCartRouter(env)
	s := newShopper(t, r)

	s.cart(http.MethodPost, "/carrito/items", map[string]any{"product": p.Slug, "quantity": 3})

	w := doJSON(t, r, http.MethodGet, "/carrito/totales", nil, middleware.CartSessionHeader, s.session)
	require.Equal(t, http.StatusOK, w.Code)
	var totals cart.PriceBreakdown
	decodeEnvelope(t, w, &totals)
	assertDecimal(t, "30", totals.Subtotal)
	assertDecimal(t, "6.3", totals.Tax)
	assertDecimal(t, "36.3", totals.Total)

	other := newShopper(t, r)
	_, resp := other.cart(http.MethodGet, "/carrito", nil)
	assert.Empty(t, resp.Items)

	code, resp := s.cart(http.MethodDelete, "/carrito", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Items)
}

func TestCheckoutHandler_Submit(t *testing.T) {
	env := newStoreEnv(t)
	p := env.seedProduct(t, "Mantel de lino", "25", nil)
	r := newCartRouter(env)
	s := newShopper(t, r)

	s.cart(http.MethodPost, "/carrito/items", map[string]any{"product": p.Slug, "quantity": 2})

	w := doJSON(t, r, http.MethodPost, "/checkout", map[string]any{"shippingData": validShippingJSON()},
		middleware.CartSessionHeader, s.session)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result checkout.OrderResult
	decodeEnvelope(t, w, &result)
	assert.NotEmpty(t, result.OrderNumber)

	orderID, err := uuid.Parse(result.OrderID)
	require.NoError(t, err)
	order, err := env.orders.GetByID(t.Context(), orderID)
	require.NoError(t, err)
	assert.Equal(t, result.OrderNumber, order.OrderNumber)
	assertDecimal(t, "60.5", order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	_, cartResp := s.cart(http.MethodGet, "/carrito", nil)
	assert.Empty(t, cartResp.Items)
}

func TestCheckoutHandler_SubmitRejected(t *testing.T) {
	env := newStoreEnv(t)
	p := env.seedProduct(t, "Mantel de lino", "25", nil)
	r := newCartRouter(env)

	t.Run("empty cart", func(t *testing.T) {
		s := newShopper(t, r)
		code, resp, _ := s.do(http.MethodPost, "/checkout", map[string]any{"shippingData": validShippingJSON()})
		assert.Equal(t, http.StatusBadRequest, code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "EMPTY_CART", resp.Error.Code)
	})

	t.Run("invalid shipping keeps the cart", func(t *testing.T) {
		s := newShopper(t, r)
		s.cart(http.MethodPost, "/carrito/items", map[string]any{"product": p.Slug, "quantity": 1})

		shipping := validShippingJSON()
		shipping["email"] = "ana"
		delete(shipping, "ciudad")
		code, resp, _ := s.do(http.MethodPost, "/checkout", map[string]any{"shippingData": shipping})
		assert.Equal(t, http.StatusBadRequest, code)
		require.NotNil(t, resp.Error)
		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Tag
		}
		assert.Equal(t, map[string]string{"email": "invalid", "ciudad": "required"}, fields)

		_, cartResp := s.cart(http.MethodGet, "/carrito", nil)
		assert.Len(t, cartResp.Items, 1)
	})

	t.Run("price changed since adding keeps the cart", func(t *testing.T) {
		s := newShopper(t, r)
		s.cart(http.MethodPost, "/carrito/items", map[string]any{"product": p.Slug, "quantity": 1})

		_, err := env.products.Update(t.Context(), p.ID, catalogInput(p.Name, "30"))
		require.NoError(t, err)

		code, resp, _ := s.do(http.MethodPost, "/checkout", map[string]any{"shippingData": validShippingJSON()})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ORDER_REJECTED", resp.Error.Code)
		assert.Contains(t, resp.Error.Message, p.Name)

		_, cartResp := s.cart(http.MethodGet, "/carrito", nil)
		assert.Len(t, cartResp.Items, 1)

		orders, err := env.orders.List(t.Context(), tradeapp.OrderListFilter{})
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestCheckoutHandler_Validate(t *testing.T) {
	env := newStoreEnv(t)
	r := newCartRouter(env)

	t.Run("whole form", func(t *testing.T) {
		shipping := validShippingJSON()
		shipping["codigoPostal"] = "ABCDE"
		w := doJSON(t, r, http.MethodPost, "/checkout/validar", map[string]any{"shippingData": shipping})
		require.Equal(t, http.StatusOK, w.Code)
		var resp ValidateShippingResponse
		decodeEnvelope(t, w, &resp)
		assert.False(t, resp.Valid)
		assert.Equal(t, map[string]string{"codigoPostal": "invalid"}, resp.Fields)
	})

	t.Run("single field ignores the rest", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/checkout/validar", map[string]any{
			"shippingData": map[string]string{"telefono": "+34 612 345 678"},
			"field":        "telefono",
		})
		require.Equal(t, http.StatusOK, w.Code)
		var resp ValidateShippingResponse
		decodeEnvelope(t, w, &resp)
		assert.True(t, resp.Valid)
		assert.Empty(t, resp.Fields)
	})

	t.Run("unknown field", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/checkout/validar", map[string]any{
			"shippingData": validShippingJSON(),
			"field":        "nonexistent",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeEnvelope(t, w, nil)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		assert.Equal(t, "Campo desconocido", resp.Error.Message)
	})

	t.Run("valid form", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/checkout/validar", map[string]any{"shippingData": validShippingJSON()})
		require.Equal(t, http.StatusOK, w.Code)
		var resp ValidateShippingResponse
		decodeEnvelope(t, w, &resp)
		assert.True(t, resp.Valid)
	})
}

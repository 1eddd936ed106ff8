package ordergateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/application/checkout"
	"github.com/lateleria/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubmission() checkout.OrderSubmission {
	return checkout.OrderSubmission{
		ShippingData: trade.ShippingInfo{
			Name:       "Ana García",
			Email:      "ana@example.com",
			Phone:      "612 345 678",
			Address:    "Calle Mayor 1",
			PostalCode: "28013",
			City:       "Madrid",
			Province:   "Madrid",
		},
		Items: []checkout.SubmissionItem{{
			ProductID:        uuid.New(),
			ProductName:      "Mantel Lino",
			ProductSlug:      "mantel-lino",
			Price:            decimal.RequireFromString("25"),
			Quantity:         2,
			SelectedVariants: map[string]string{"Color": "Rojo"},
		}},
		Subtotal: decimal.RequireFromString("50"),
		IVA:      decimal.RequireFromString("10.5"),
		Total:    decimal.RequireFromString("60.5"),
	}
}

func TestHTTPGateway_CreateOrder(t *testing.T) {
	orderID := uuid.New()
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, OrdersPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"orderNumber": "LAT-MABC12-X9Z1",
			"orderId":     orderID,
		})
	}))
	defer srv.Close()

	g, err := NewHTTPGateway(srv.URL + "/")
	require.NoError(t, err)

	res, err := g.CreateOrder(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.Equal(t, "LAT-MABC12-X9Z1", res.OrderNumber)
	assert.Equal(t, orderID.String(), res.OrderID)

	shipping := received["shippingData"].(map[string]any)
	assert.Equal(t, "Ana García", shipping["nombre"])
	assert.Equal(t, "28013", shipping["codigoPostal"])
	assert.Equal(t, "60.5", received["total"])
	items := received["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "mantel-lino", items[0].(map[string]any)["productSlug"])
}

func TestHTTPGateway_CreateOrder_OpaqueOrderID(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID string
	}{
		{
			name:   "cuid",
			body:   `{"success":true,"orderNumber":"LAT-MABC12-X9Z1","orderId":"clx1abc23000008l4"}`,
			wantID: "clx1abc23000008l4",
		},
		{
			name:   "numeric",
			body:   `{"success":true,"orderNumber":"LAT-MABC12-X9Z1","orderId":4815}`,
			wantID: "4815",
		},
		{
			name:   "malformed id and error fields",
			body:   `{"success":true,"orderNumber":"LAT-MABC12-X9Z1","orderId":{"v":1},"error":7}`,
			wantID: "",
		},
		{
			name:   "no id",
			body:   `{"success":true,"orderNumber":"LAT-MABC12-X9Z1"}`,
			wantID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g, err := NewHTTPGateway(srv.URL)
			require.NoError(t, err)

			res, err := g.CreateOrder(context.Background(), testSubmission())
			require.NoError(t, err)
			assert.Equal(t, "LAT-MABC12-X9Z1", res.OrderNumber)
			assert.Equal(t, tt.wantID, res.OrderID)
		})
	}
}

func TestHTTPGateway_CreateOrder_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantStatus int
	}{
		{
			name:       "server message surfaces verbatim",
			status:     http.StatusBadRequest,
			body:       `{"error":"Los totales no coinciden"}`,
			wantMsg:    "Los totales no coinciden",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "non json error body",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantMsg:    msgCreateFailed,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "success status without success flag",
			status:     http.StatusOK,
			body:       `{"success":false}`,
			wantMsg:    msgCreateFailed,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing order number",
			status:     http.StatusCreated,
			body:       `{"success":true}`,
			wantMsg:    msgCreateFailed,
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g, err := NewHTTPGateway(srv.URL)
			require.NoError(t, err)

			_, err = g.CreateOrder(context.Background(), testSubmission())
			var subErr *checkout.SubmissionError
			require.ErrorAs(t, err, &subErr)
			assert.Equal(t, tt.wantMsg, subErr.Message)
			assert.Equal(t, tt.wantStatus, subErr.StatusCode)
		})
	}
}

func TestHTTPGateway_CreateOrder_DoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Error al crear el pedido"}`))
	}))
	defer srv.Close()

	g, err := NewHTTPGateway(srv.URL)
	require.NoError(t, err)
	_, err = g.CreateOrder(context.Background(), testSubmission())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestHTTPGateway_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	g, err := NewHTTPGateway(srv.URL, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = g.CreateOrder(context.Background(), testSubmission())
	var subErr *checkout.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, msgTransportFailed, subErr.Message)
	assert.Zero(t, subErr.StatusCode)
}

func TestNewHTTPGateway_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "://x"} {
		_, err := NewHTTPGateway(raw)
		assert.Error(t, err, raw)
	}

	g, err := NewHTTPGateway("http://shop.local")
	require.NoError(t, err)
	assert.Zero(t, g.client.Timeout)

	g, err = NewHTTPGateway("http://shop.local", WithTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, g.client.Timeout)

	g, err = NewHTTPGateway("http://shop.local", WithHTTPClient(http.DefaultClient))
	require.NoError(t, err)
	assert.Same(t, http.DefaultClient, g.client)
	assert.Equal(t, "http://shop.local/api/v1/pedidos", g.endpoint)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	catalogapp "github.com/lateleria/storefront/internal/application/catalog"
	"github.com/lateleria/storefront/internal/application/checkout"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorefront serves one product and records submitted orders
type fakeStorefront struct {
	mu        sync.Mutex
	product   catalogapp.ProductResponse
	orders    []checkout.OrderSubmission
	rejectMsg string
}

func newFakeStorefront(t *testing.T) (*fakeStorefront, *httptest.Server) {
	t.Helper()
	large := decimal.RequireFromString("30")
	fs := &fakeStorefront{product: catalogapp.ProductResponse{
		ID:     uuid.New(),
		Name:   "Mantel Lino",
		Slug:   "mantel-lino",
		Price:  decimal.RequireFromString("25"),
		Active: true,
		Variants: []catalogapp.ProductVariantResponse{
			{Name: "Tamaño", Value: "Grande", Price: &large},
		},
	}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/productos/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		slug := r.PathValue("slug")
		if slug != fs.product.Slug && slug != fs.product.ID.String() {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": fs.product})
	})
	mux.HandleFunc("POST /api/v1/pedidos", func(w http.ResponseWriter, r *http.Request) {
		var sub checkout.OrderSubmission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sub))
		w.Header().Set("Content-Type", "application/json")

		fs.mu.Lock()
		defer fs.mu.Unlock()
		if fs.rejectMsg != "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": fs.rejectMsg})
			return
		}
		fs.orders = append(fs.orders, sub)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"orderNumber": "LAT-TEST-0001",
			"orderId":     uuid.New(),
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fs, srv
}

type cli struct {
	t      *testing.T
	server string
	dir    string
}

func (c cli) run(args ...string) (int, string, string) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"-server", c.server, "-dir", c.dir, "-log-level", "error"}, args...)
	code := run(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeShipping(t *testing.T, fields map[string]string) string {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "envio.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func validShipping() map[string]string {
	return map[string]string{
		"nombre":       "Ana García",
		"email":        "ana@example.com",
		"telefono":     "612345678",
		"direccion":    "Calle Mayor 1",
		"codigoPostal": "28013",
		"ciudad":       "Madrid",
		"provincia":    "Madrid",
	}
}

func TestCartctl_CartPersistsAcrossRuns(t *testing.T) {
	_, srv := newFakeStorefront(t)
	c := cli{t: t, server: srv.URL, dir: t.TempDir()}

	code, out, errOut := c.run("add", "mantel-lino", "2")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "mantel-lino")
	assert.Contains(t, out, "Total: 60.50 €")

	code, out, _ = c.run("add", "mantel-lino", "1", "Tamaño=Grande")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Tamaño=Grande")

	code, out, _ = c.run("show")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Subtotal: 80.00 €")

	code, out, _ = c.run("set", "mantel-lino", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Subtotal: 55.00 €")

	code, out, _ = c.run("remove", "mantel-lino", "Tamaño=Grande")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Subtotal: 25.00 €")

	// a different cart name is a different cart
	code, out, _ = c.run("-session", "otro", "show")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "El carrito está vacío")

	code, out, _ = c.run("clear")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "El carrito está vacío")
}

func TestCartctl_Checkout(t *testing.T) {
	fs, srv := newFakeStorefront(t)
	c := cli{t: t, server: srv.URL, dir: t.TempDir()}

	code, _, errOut := c.run("add", "mantel-lino", "2")
	require.Equal(t, 0, code, errOut)

	code, out, errOut := c.run("checkout", writeShipping(t, validShipping()))
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Pedido LAT-TEST-0001 creado")

	fs.mu.Lock()
	require.Len(t, fs.orders, 1)
	assert.True(t, fs.orders[0].Total.Equal(decimal.RequireFromString("60.5")))
	assert.Equal(t, "28013", fs.orders[0].ShippingData.PostalCode)
	fs.mu.Unlock()

	_, out, _ = c.run("show")
	assert.Contains(t, out, "El carrito está vacío")
}

func TestCartctl_CheckoutFailuresKeepCart(t *testing.T) {
	fs, srv := newFakeStorefront(t)
	c := cli{t: t, server: srv.URL, dir: t.TempDir()}
	code, _, _ := c.run("add", "mantel-lino", "1")
	require.Equal(t, 0, code)

	invalid := validShipping()
	invalid["email"] = "no-es-un-email"
	code, _, errOut := c.run("checkout", writeShipping(t, invalid))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "email: invalid")

	fs.mu.Lock()
	fs.rejectMsg = "El precio de Mantel Lino ha cambiado"
	fs.mu.Unlock()
	code, _, errOut = c.run("checkout", writeShipping(t, validShipping()))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "ha cambiado")

	_, out, _ := c.run("show")
	assert.Contains(t, out, "mantel-lino")
	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.Empty(t, fs.orders)
}

func TestCartctl_UsageErrors(t *testing.T) {
	_, srv := newFakeStorefront(t)
	c := cli{t: t, server: srv.URL, dir: t.TempDir()}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"pagar"}, 2},
		{"missing quantity", []string{"add", "mantel-lino"}, 2},
		{"zero quantity", []string{"add", "mantel-lino", "0"}, 2},
		{"bad variant", []string{"add", "mantel-lino", "1", "Color"}, 2},
		{"unknown product", []string{"add", "no-existe", "1"}, 1},
		{"missing shipping file", []string{"checkout", "/nonexistent/envio.json"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := c.run(tt.args...)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, sessionKey("tienda"), sessionKey("tienda"))
	assert.NotEqual(t, sessionKey("tienda"), sessionKey("otra"))

	id := uuid.NewString()
	assert.Equal(t, id, sessionKey(id))
}

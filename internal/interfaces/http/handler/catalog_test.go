package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/lateleria/storefront/internal/application/catalog"
	"github.com/lateleria/storefront/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogRouter(env *storeEnv) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())

	storefront := NewStorefrontHandler(env.storefront)
	r.GET("/productos", storefront.ListProducts)
	r.GET("/productos/:slug", storefront.GetProduct)
	r.GET("/categorias", storefront.ListCategories)

	products := NewProductAdminHandler(env.products)
	admin := r.Group("/admin")
	admin.GET("/productos", products.List)
	admin.POST("/productos", products.Create)
	admin.GET("/productos/:id", products.Get)
	admin.PUT("/productos/:id", products.Update)
	admin.DELETE("/productos/:id", products.Delete)
	admin.POST("/productos/:id/imagenes", products.AddImage)
	admin.DELETE("/productos/:id/imagenes/:imageId", products.RemoveImage)
	admin.POST("/productos/:id/imagenes/upload-url", products.CreateUploadURL)
	admin.PUT("/productos/:id/variantes", products.ReplaceVariants)
	admin.GET("/stats", products.Stats)

	categories := NewCategoryAdminHandler(env.categories)
	admin.GET("/categorias", categories.List)
	admin.POST("/categorias", categories.Create)
	admin.POST("/categorias/seed", categories.Seed)
	return r
}

func TestStorefrontHandler_ListProducts(t *testing.T) {
	env := newStoreEnv(t)
	bedding := env.seedCategory(t, "Ropa de cama")
	env.seedProduct(t, "Funda nórdica", "59.90", &bedding.ID)
	env.seedProduct(t, "Mantel de lino", "39.90", nil)
	r := newCatalogRouter(env)

	t.Run("all active products", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/productos", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var products []catalogapp.ProductResponse
		resp := decodeEnvelope(t, w, &products)
		assert.True(t, resp.Success)
		assert.Len(t, products, 2)
	})

	t.Run("filtered by category slug", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/productos?category="+bedding.Slug, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var products []catalogapp.ProductResponse
		decodeEnvelope(t, w, &products)
		require.Len(t, products, 1)
		assert.Equal(t, "Funda nórdica", products[0].Name)
	})

	t.Run("unknown category yields an empty list", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/productos?category=no-existe", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var products []catalogapp.ProductResponse
		decodeEnvelope(t, w, &products)
		assert.Empty(t, products)
	})
}

func TestStorefrontHandler_GetProduct(t *testing.T) {
	env := newStoreEnv(t)
	p := env.seedProduct(t, "Cojín de algodón", "19.50", nil)
	r := newCatalogRouter(env)

	w := doJSON(t, r, http.MethodGet, "/productos/"+p.Slug, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var product catalogapp.ProductResponse
	decodeEnvelope(t, w, &product)
	assert.Equal(t, p.ID, product.ID)
	assert.Equal(t, "19.5", product.Price.String())

	w = doJSON(t, r, http.MethodGet, "/productos/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeEnvelope(t, w, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PRODUCT_NOT_FOUND", resp.Error.Code)
}

func TestStorefrontHandler_ListCategories(t *testing.T) {
	env := newStoreEnv(t)
	env.seedCategory(t, "Toallas")
	env.seedCategory(t, "Cortinas")
	r := newCatalogRouter(env)

	w := doJSON(t, r, http.MethodGet, "/categorias", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var categories []catalogapp.CategoryResponse
	decodeEnvelope(t, w, &categories)
	require.Len(t, categories, 2)
	assert.Equal(t, "Cortinas", categories[0].Name)
	assert.Equal(t, "Toallas", categories[1].Name)
}

func TestProductAdminHandler_CreateAndUpdate(t *testing.T) {
	env := newStoreEnv(t)
	r := newCatalogRouter(env)

	w := doJSON(t, r, http.MethodPost, "/admin/productos", map[string]any{
		"name":  "Toalla de baño",
		"price": "24.00",
		"stock": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created catalogapp.ProductResponse
	decodeEnvelope(t, w, &created)
	assert.Equal(t, "toalla-de-bano", created.Slug)
	assert.True(t, created.Active)
	assert.Equal(t, 5, created.Stock)

	w = doJSON(t, r, http.MethodPut, "/admin/productos/"+created.ID.String(), map[string]any{
		"name":   "Toalla de baño",
		"price":  "22.00",
		"active": false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated catalogapp.ProductResponse
	decodeEnvelope(t, w, &updated)
	assert.Equal(t, created.Slug, updated.Slug)
	assert.False(t, updated.Active)
	assert.Equal(t, 5, updated.Stock)
	assert.Equal(t, "22", updated.Price.String())

	// inactive products disappear from the storefront
	w = doJSON(t, r, http.MethodGet, "/productos/"+created.Slug, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductAdminHandler_CreateValidation(t *testing.T) {
	env := newStoreEnv(t)
	r := newCatalogRouter(env)

	tests := []struct {
		name     string
		body     any
		wantCode string
	}{
		{name: "missing price", body: map[string]any{"name": "Sábana"}, wantCode: "INVALID_PRICE"},
		{name: "negative price", body: map[string]any{"name": "Sábana", "price": "-1"}, wantCode: "INVALID_PRICE"},
		{name: "blank name", body: map[string]any{"name": "  ", "price": "10"}, wantCode: "INVALID_NAME"},
		{name: "unknown category", body: map[string]any{"name": "Sábana", "price": "10", "categoryId": "9b2f4c8e-1d3a-4f5b-8c7d-0e1f2a3b4c5d"}, wantCode: "INVALID_CATEGORY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/admin/productos", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeEnvelope(t, w, nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/admin/productos", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProductAdminHandler_ListFilters(t *testing.T) {
	env := newStoreEnv(t)
	towels := env.seedCategory(t, "Toallas")
	env.seedProduct(t, "Toalla grande", "20", &towels.ID)
	env.seedProduct(t, "Cortina blanca", "45", nil)
	r := newCatalogRouter(env)

	w := doJSON(t, r, http.MethodGet, "/admin/productos?categoryId="+towels.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []catalogapp.ProductResponse
	decodeEnvelope(t, w, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Toalla grande", products[0].Name)

	w = doJSON(t, r, http.MethodGet, "/admin/productos?search=cortina", nil)
	require.Equal(t, http.StatusOK, w.Code)
	products = nil
	decodeEnvelope(t, w, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Cortina blanca", products[0].Name)

	w = doJSON(t, r, http.MethodGet, "/admin/productos?categoryId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductAdminHandler_GetAndDelete(t *testing.T) {
	env := newStoreEnv(t)
	p := env.seedProduct(t, "Colcha", "80", nil)
	r := newCatalogRouter(env)

	w := doJSON(t, r, http.MethodGet, "/admin/productos/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/admin/productos/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/admin/productos/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeEnvelope(t, w, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PRODUCT_NOT_FOUND", resp.Error.Code)
}

func TestProductAdminHandler_Images(t *testing.T) {
	env := newStoreEnv(t)
	p := env.seedProduct(t, "Plaid", "35", nil)
	r := newCatalogRouter(env)

	w := doJSON(t, r, http.MethodPost, "/admin/productos/"+p.ID.String()+"/imagenes", map[string]any{
		"url":   "https://cdn.example.com/plaid.jpg",
		"order": 0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var image catalogapp.ProductImageResponse
	decodeEnvelope(t, w, &image)
	assert.Equal(t, p.ID, image.ProductID)

	w = doJSON(t, r, http.MethodPost, "/admin/productos/"+p.ID.String()+"/imagenes", map[string]any{"url": "no es una url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/admin/productos/"+p.ID.String()+"/imagenes/"+image.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestProductAdminHandler_UploadURLWithoutStorage(t *testing.T) {
	env := newStoreEnv(t)
	p := env.seedProduct(t, "Alfombra", "120", nil)
	r := newCatalogRouter(env)

	w := doJSON(t, r, http.MethodPost, "/admin/productos/"+p.ID.String()+"/imagenes/upload-url", map[string]any{
		"fileName":    "alfombra.jpg",
		"contentType": "image/jpeg",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeEnvelope(t, w, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "STORAGE_DISABLED", resp.Error.Code)
}

func TestProductAdminHandler_ReplaceVariants(t *testing.T) {
	env := newStoreEnv(t)
	p := env.seedProduct(t, "Sábanas", "45", nil)
	r := newCatalogRouter(env)

	w := doJSON(t, r, http.MethodPut, "/admin/productos/"+p.ID.String()+"/variantes", map[string]any{
		"variants": []map[string]any{
			{"name": "Talla", "value": "90", "stock": 3},
			{"name": "Talla", "value": "150", "price": "55", "stock": 2},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var product catalogapp.ProductResponse
	decodeEnvelope(t, w, &product)
	assert.Len(t, product.Variants, 2)

	w = doJSON(t, r, http.MethodPut, "/admin/productos/"+p.ID.String()+"/variantes", map[string]any{
		"variants": []map[string]any{
			{"name": "Talla", "value": "90"},
			{"name": "Talla", "value": "90"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_VARIANT", resp.Error.Code)
}

func TestProductAdminHandler_Stats(t *testing.T) {
	env := newStoreEnv(t)
	towels := env.seedCategory(t, "Toallas")
	env.seedProduct(t, "Toalla lavabo", "9", &towels.ID)
	env.seedProduct(t, "Toalla ducha", "18", &towels.ID)
	r := newCatalogRouter(env)

	w := doJSON(t, r, http.MethodGet, "/admin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats catalogapp.StatsResponse
	decodeEnvelope(t, w, &stats)
	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 2, stats.ActiveProducts)
	assert.EqualValues(t, 0, stats.InactiveProducts)
	require.Len(t, stats.Categories, 1)
	assert.EqualValues(t, 2, stats.Categories[0].ProductCount)
}

func TestCategoryAdminHandler(t *testing.T) {
	env := newStoreEnv(t)
	r := newCatalogRouter(env)

	w := doJSON(t, r, http.MethodPost, "/admin/categorias", map[string]any{"name": "Menaje"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category catalogapp.CategoryResponse
	decodeEnvelope(t, w, &category)
	assert.Equal(t, "menaje", category.Slug)

	w = doJSON(t, r, http.MethodPost, "/admin/categorias", map[string]any{"name": "menaje"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/admin/categorias", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/admin/categorias/seed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results []catalogapp.SeedResult
	decodeEnvelope(t, w, &results)
	assert.NotEmpty(t, results)
	for _, res := range results {
		assert.NotEqual(t, catalogapp.SeedStatusError, res.Status, res.Name)
	}

	w = doJSON(t, r, http.MethodGet, "/admin/categorias", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var categories []catalogapp.CategoryResponse
	decodeEnvelope(t, w, &categories)
	assert.GreaterOrEqual(t, len(categories), len(results))
}

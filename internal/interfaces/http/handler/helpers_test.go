package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/lateleria/storefront/internal/application/cart"
	catalogapp "github.com/lateleria/storefront/internal/application/catalog"
	"github.com/lateleria/storefront/internal/application/checkout"
	tradeapp "github.com/lateleria/storefront/internal/application/trade"
	"github.com/lateleria/storefront/internal/domain/catalog"
	"github.com/lateleria/storefront/internal/domain/trade"
	"github.com/lateleria/storefront/internal/infrastructure/cartstore"
	"github.com/lateleria/storefront/internal/infrastructure/persistence"
	"github.com/lateleria/storefront/internal/infrastructure/persistence/models"
	"github.com/lateleria/storefront/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// storeEnv wires the storefront services over a private in-memory database
type storeEnv struct {
	db           *gorm.DB
	categoryRepo *persistence.GormCategoryRepository
	productRepo  *persistence.GormProductRepository
	orderRepo    *persistence.GormOrderRepository
	storefront   *catalogapp.StorefrontService
	products     *catalogapp.ProductService
	categories   *catalogapp.CategoryService
	orders       *tradeapp.OrderService
	sessions     *cartapp.SessionService
	checkout     *checkout.Service
}

func newStoreEnv(t *testing.T) *storeEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	env := &storeEnv{
		db:           db,
		categoryRepo: persistence.NewGormCategoryRepository(db),
		productRepo:  persistence.NewGormProductRepository(db),
		orderRepo:    persistence.NewGormOrderRepository(db),
	}
	env.storefront = catalogapp.NewStorefrontService(env.productRepo, env.categoryRepo)
	env.products = catalogapp.NewProductService(env.productRepo, env.categoryRepo, nil)
	env.categories = catalogapp.NewCategoryService(env.categoryRepo)
	env.orders = tradeapp.NewOrderService(env.orderRepo, env.productRepo, trade.NewOrderNumberGenerator("LAT"), zap.NewNop())
	env.sessions = cartapp.NewSessionService(cartstore.NewMemoryStore(), env.storefront, zap.NewNop())
	env.checkout = checkout.NewService(checkout.NewLocalGateway(env.orders), zap.NewNop())
	return env
}

func (e *storeEnv) seedCategory(t *testing.T, name string) *catalog.Category {
	t.Helper()
	c, err := catalog.NewCategory(name)
	require.NoError(t, err)
	require.NoError(t, e.categoryRepo.Save(context.Background(), c))
	return c
}

func (e *storeEnv) seedProduct(t *testing.T, name, price string, categoryID *uuid.UUID, variants ...catalog.VariantSpec) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductDetails{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      10,
		Active:     true,
		CategoryID: categoryID,
	}, catalog.Slugify(name))
	require.NoError(t, err)
	if len(variants) > 0 {
		require.NoError(t, p.ReplaceVariants(variants))
	}
	require.NoError(t, e.productRepo.Save(context.Background(), p))
	return p
}

func validShippingJSON() map[string]string {
	return map[string]string{
		"nombre":       "Ana García",
		"email":        "ana@example.com",
		"telefono":     "612 345 678",
		"direccion":    "Calle Mayor 1",
		"codigoPostal": "28013",
		"ciudad":       "Madrid",
		"provincia":    "Madrid",
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope mirrors dto.Response with a raw data payload
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field string `json:"field"`
			Tag   string `json:"tag"`
		} `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

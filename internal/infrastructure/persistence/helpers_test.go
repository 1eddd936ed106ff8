package persistence

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/catalog"
	"github.com/lateleria/storefront/internal/domain/trade"
	"github.com/lateleria/storefront/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens a private in-memory database with the full schema
func newSQLiteDB(t *testing.T) *gorm.DB {
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
	return db
}

// newMockGormDB opens GORM on a sqlmock connection with the postgres dialect
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newTestCategory(t *testing.T, name string) *catalog.Category {
	t.Helper()
	c, err := catalog.NewCategory(name)
	require.NoError(t, err)
	return c
}

func newTestProduct(t *testing.T, name, price string, categoryID *uuid.UUID) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductDetails{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      5,
		Active:     true,
		CategoryID: categoryID,
	}, catalog.Slugify(name))
	require.NoError(t, err)
	return p
}

func validShipping() trade.ShippingInfo {
	return trade.ShippingInfo{
		Name:       "Ana García",
		Email:      "ana@example.com",
		Phone:      "612 345 678",
		Address:    "Calle Mayor 1",
		PostalCode: "28013",
		City:       "Madrid",
		Province:   "Madrid",
	}
}

func newTestOrder(t *testing.T, number string) *trade.Order {
	t.Helper()
	o, err := trade.NewOrder(number, validShipping(), []trade.OrderLine{
		{
			ProductID:        uuid.New(),
			ProductName:      "Mantel Lino",
			ProductSlug:      "mantel-lino",
			Price:            decimal.RequireFromString("25.00"),
			Quantity:         2,
			SelectedVariants: map[string]string{"Color": "Rojo"},
		},
	})
	require.NoError(t, err)
	return o
}

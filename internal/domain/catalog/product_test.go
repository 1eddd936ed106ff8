package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() ProductDetails {
	return ProductDetails{
		Name:   "  Mantel Lino Natural ",
		Price:  decimal.RequireFromString("39.90"),
		Stock:  4,
		Active: true,
	}
}

func strPtr(s string) *string { return &s }

func TestNewProduct(t *testing.T) {
	t.Run("creates product with trimmed fields", func(t *testing.T) {
		d := validDetails()
		d.ShortDescription = strPtr("   ")
		product, err := NewProduct(d, "mantel-lino-natural")
		require.NoError(t, err)

		assert.Equal(t, "Mantel Lino Natural", product.Name)
		assert.Equal(t, "mantel-lino-natural", product.Slug)
		assert.Nil(t, product.ShortDescription)
		assert.True(t, product.Active)
		assert.Equal(t, 1, product.GetVersion())
		assert.NotEqual(t, uuid.Nil, product.ID)
	})

	t.Run("publishes ProductCreated event", func(t *testing.T) {
		product, err := NewProduct(validDetails(), "mantel")
		require.NoError(t, err)

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*ProductCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, product.ID, event.ProductID)
		assert.Equal(t, "mantel", event.Slug)
	})

	tests := []struct {
		name   string
		mutate func(*ProductDetails)
		code   string
	}{
		{"blank name", func(d *ProductDetails) { d.Name = "   " }, "INVALID_NAME"},
		{"negative price", func(d *ProductDetails) { d.Price = decimal.NewFromInt(-1) }, "INVALID_PRICE"},
		{"negative sale price", func(d *ProductDetails) { v := decimal.NewFromInt(-2); d.SalePrice = &v }, "INVALID_SALE_PRICE"},
		{"negative stock", func(d *ProductDetails) { d.Stock = -1 }, "INVALID_STOCK"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			d := validDetails()
			tt.mutate(&d)
			_, err := NewProduct(d, "slug")
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.code, domainErr.Code)
		})
	}

	t.Run("zero price is allowed", func(t *testing.T) {
		d := validDetails()
		d.Price = decimal.Zero
		_, err := NewProduct(d, "gratis")
		assert.NoError(t, err)
	})

	t.Run("rejects empty slug", func(t *testing.T) {
		_, err := NewProduct(validDetails(), "")
		assert.Error(t, err)
	})
}

func TestProduct_Update(t *testing.T) {
	product, err := NewProduct(validDetails(), "mantel-lino-natural")
	require.NoError(t, err)
	product.ClearDomainEvents()

	t.Run("same name reports unchanged", func(t *testing.T) {
		d := product.Details()
		d.Stock = 9
		changed, err := product.Update(d)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, 9, product.Stock)
		assert.Equal(t, 2, product.GetVersion())
	})

	t.Run("new name reports changed", func(t *testing.T) {
		d := product.Details()
		d.Name = "Mantel Lino Gris"
		changed, err := product.Update(d)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, "mantel-lino-natural", product.Slug)
	})

	t.Run("invalid update leaves product untouched", func(t *testing.T) {
		before := product.Details()
		d := before
		d.Price = decimal.NewFromInt(-5)
		_, err := product.Update(d)
		require.Error(t, err)
		assert.Equal(t, before, product.Details())
	})
}

func TestProduct_Images(t *testing.T) {
	product, err := NewProduct(validDetails(), "mantel")
	require.NoError(t, err)

	_, err = product.AddImage("https://cdn/b.jpg", nil, 2)
	require.NoError(t, err)
	first, err := product.AddImage("https://cdn/a.jpg", strPtr("Vista frontal"), 0)
	require.NoError(t, err)
	_, err = product.AddImage("  ", nil, 1)
	assert.Error(t, err)

	require.NotNil(t, product.FirstImage())
	assert.Equal(t, first.ID, product.FirstImage().ID)
	assert.Equal(t, "https://cdn/a.jpg", product.SortedImages()[0].URL)

	require.NoError(t, product.RemoveImage(first.ID))
	assert.Len(t, product.Images, 1)
	assert.Error(t, product.RemoveImage(first.ID))
}

func TestProduct_ReplaceVariants(t *testing.T) {
	product, err := NewProduct(validDetails(), "mantel")
	require.NoError(t, err)
	override := decimal.RequireFromString("45.00")

	err = product.ReplaceVariants([]VariantSpec{
		{Name: "Talla", Value: "180x180"},
		{Name: "Talla", Value: "180x300", Price: &override, Stock: 2},
	})
	require.NoError(t, err)
	require.Len(t, product.Variants, 2)
	assert.Equal(t, product.ID, product.Variants[1].ProductID)

	err = product.ReplaceVariants([]VariantSpec{{Name: "Talla", Value: "S"}, {Name: "Talla", Value: "S"}})
	assert.Error(t, err)
	assert.Len(t, product.Variants, 2)

	require.NoError(t, product.ReplaceVariants(nil))
	assert.Empty(t, product.Variants)
}

func TestProduct_OnSale(t *testing.T) {
	product, err := NewProduct(validDetails(), "mantel")
	require.NoError(t, err)
	assert.False(t, product.OnSale())

	zero := decimal.Zero
	product.SalePrice = &zero
	assert.False(t, product.OnSale())

	sale := decimal.RequireFromString("29.90")
	product.SalePrice = &sale
	assert.True(t, product.OnSale())
}

func TestSlugWithSuffix(t *testing.T) {
	at := time.UnixMilli(1718000000123)
	assert.Equal(t, "mantel-1718000000123", SlugWithSuffix("mantel", at))
}

func TestNewCategory(t *testing.T) {
	category, err := NewCategory("  Ropa de Cama ")
	require.NoError(t, err)
	assert.Equal(t, "Ropa de Cama", category.Name)
	assert.Equal(t, "ropa-de-cama", category.Slug)
	require.Len(t, category.GetDomainEvents(), 1)

	_, err = NewCategory("")
	assert.Error(t, err)
	_, err = NewCategory("!!!")
	assert.Error(t, err)
}

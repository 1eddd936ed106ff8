package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/catalog"
	"github.com/lateleria/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newTestProduct(t *testing.T, name, slug string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductDetails{Name: name, Price: decimal.RequireFromString("20"), Stock: 3, Active: true}, slug)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

// savedProduct makes FindByID return whatever the service last saved
func savedProduct(repo *MockProductRepository) {
	var saved *catalog.Product
	repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*catalog.Product) }).
		Return(nil)
	repo.On("FindByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return(func(context.Context, uuid.UUID) *catalog.Product { return saved }, nil)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with generated slug and defaults", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("ExistsBySlug", ctx, "toalla-bano-algodon", (*uuid.UUID)(nil)).Return(false, nil)
		savedProduct(repo)
		svc := NewProductService(repo, new(MockCategoryRepository), nil)

		resp, err := svc.Create(ctx, ProductInput{Name: " Toalla Baño Algodón ", Price: decPtr("12.50")})
		require.NoError(t, err)
		assert.Equal(t, "toalla-bano-algodon", resp.Slug)
		assert.Equal(t, "Toalla Baño Algodón", resp.Name)
		assert.True(t, resp.Active)
		assert.Equal(t, 0, resp.Stock)
		repo.AssertExpectations(t)
	})

	t.Run("appends timestamp when slug is taken", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("ExistsBySlug", ctx, "mantel", (*uuid.UUID)(nil)).Return(true, nil)
		savedProduct(repo)
		svc := NewProductService(repo, new(MockCategoryRepository), nil)
		svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

		resp, err := svc.Create(ctx, ProductInput{Name: "Mantel", Price: decPtr("10")})
		require.NoError(t, err)
		assert.Equal(t, "mantel-1700000000000", resp.Slug)
	})

	t.Run("requires price", func(t *testing.T) {
		svc := NewProductService(new(MockProductRepository), new(MockCategoryRepository), nil)
		_, err := svc.Create(ctx, ProductInput{Name: "Mantel"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PRICE", domainErr.Code)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		categoryID := uuid.New()
		categories := new(MockCategoryRepository)
		categories.On("FindByID", ctx, categoryID).Return(nil, shared.ErrNotFound)
		svc := NewProductService(new(MockProductRepository), categories, nil)

		_, err := svc.Create(ctx, ProductInput{Name: "Mantel", Price: decPtr("10"), CategoryID: &categoryID})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CATEGORY", domainErr.Code)
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("ExistsBySlug", ctx, "mantel", (*uuid.UUID)(nil)).Return(false, nil)
		svc := NewProductService(repo, new(MockCategoryRepository), nil)
		stock := -1
		_, err := svc.Create(ctx, ProductInput{Name: "Mantel", Price: decPtr("10"), Stock: &stock})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps slug, stock and active when name unchanged and fields omitted", func(t *testing.T) {
		existing := newTestProduct(t, "Mantel", "mantel")
		existing.Active = false
		repo := new(MockProductRepository)
		repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
		repo.On("Save", ctx, existing).Return(nil)
		svc := NewProductService(repo, new(MockCategoryRepository), nil)

		resp, err := svc.Update(ctx, existing.ID, ProductInput{Name: "Mantel", Price: decPtr("25")})
		require.NoError(t, err)
		assert.Equal(t, "mantel", resp.Slug)
		assert.Equal(t, 3, resp.Stock)
		assert.False(t, resp.Active)
		assert.True(t, decimal.RequireFromString("25").Equal(resp.Price))
		repo.AssertNotCalled(t, "ExistsBySlug", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("regenerates slug on rename excluding itself", func(t *testing.T) {
		existing := newTestProduct(t, "Mantel", "mantel")
		repo := new(MockProductRepository)
		repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
		repo.On("ExistsBySlug", ctx, "mantel-azul", &existing.ID).Return(false, nil)
		repo.On("Save", ctx, existing).Return(nil)
		svc := NewProductService(repo, new(MockCategoryRepository), nil)

		resp, err := svc.Update(ctx, existing.ID, ProductInput{Name: "Mantel Azul", Price: decPtr("20")})
		require.NoError(t, err)
		assert.Equal(t, "mantel-azul", resp.Slug)
		repo.AssertExpectations(t)
	})

	t.Run("unknown product", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("FindByID", ctx, mock.Anything).Return(nil, shared.ErrNotFound)
		svc := NewProductService(repo, new(MockCategoryRepository), nil)

		_, err := svc.Update(ctx, uuid.New(), ProductInput{Name: "x", Price: decPtr("1")})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestProductService_CreateUploadURL(t *testing.T) {
	ctx := context.Background()
	existing := newTestProduct(t, "Mantel", "mantel")

	t.Run("issues presigned url for images", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
		storage := new(MockImageStorage)
		expires := time.Now().Add(15 * time.Minute)
		key := "products/" + existing.ID.String() + "/fixed.jpg"
		storage.On("GenerateUploadURL", ctx, key, "image/jpeg", 15*time.Minute).Return("https://s3/upload", expires, nil)
		storage.On("PublicURL", key).Return("https://cdn/" + key)

		svc := NewProductService(repo, new(MockCategoryRepository), storage)
		svc.newStorageName = func() string { return "fixed" }

		resp, err := svc.CreateUploadURL(ctx, existing.ID, UploadURLRequest{FileName: "Foto.JPG", ContentType: "image/jpeg"})
		require.NoError(t, err)
		assert.Equal(t, "https://s3/upload", resp.UploadURL)
		assert.Equal(t, "https://cdn/"+key, resp.PublicURL)
		assert.Equal(t, key, resp.Key)
	})

	t.Run("rejects non image content", func(t *testing.T) {
		svc := NewProductService(new(MockProductRepository), new(MockCategoryRepository), new(MockImageStorage))
		_, err := svc.CreateUploadURL(ctx, existing.ID, UploadURLRequest{FileName: "x.pdf", ContentType: "application/pdf"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CONTENT_TYPE", domainErr.Code)
	})

	t.Run("storage not configured", func(t *testing.T) {
		svc := NewProductService(new(MockProductRepository), new(MockCategoryRepository), nil)
		_, err := svc.CreateUploadURL(ctx, existing.ID, UploadURLRequest{FileName: "x.png", ContentType: "image/png"})
		assert.Error(t, err)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
		storage := new(MockImageStorage)
		storage.On("GenerateUploadURL", ctx, mock.Anything, "image/png", mock.Anything).Return("", time.Time{}, errors.New("s3 down"))
		svc := NewProductService(repo, new(MockCategoryRepository), storage)

		_, err := svc.CreateUploadURL(ctx, existing.ID, UploadURLRequest{FileName: "x.png", ContentType: "image/png"})
		assert.ErrorContains(t, err, "s3 down")
	})
}

func TestProductService_ImagesAndVariants(t *testing.T) {
	ctx := context.Background()
	existing := newTestProduct(t, "Mantel", "mantel")
	repo := new(MockProductRepository)
	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
	repo.On("Save", ctx, existing).Return(nil)
	svc := NewProductService(repo, new(MockCategoryRepository), nil)

	img, err := svc.AddImage(ctx, existing.ID, AddImageRequest{URL: "https://cdn/a.jpg", Order: 0})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, img.ProductID)

	require.NoError(t, svc.RemoveImage(ctx, existing.ID, img.ID))
	assert.Error(t, svc.RemoveImage(ctx, existing.ID, img.ID))

	resp, err := svc.ReplaceVariants(ctx, existing.ID, ReplaceVariantsRequest{Variants: []VariantInput{
		{Name: "Color", Value: "Rojo"},
		{Name: "Color", Value: "Azul", Price: decPtr("22")},
	}})
	require.NoError(t, err)
	assert.Len(t, resp.Variants, 2)
}

func TestProductService_Stats(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	repo.On("Counts", ctx).Return(catalog.ProductCounts{Total: 5, Active: 3, Inactive: 2}, nil)
	categories := new(MockCategoryRepository)
	living := catalog.Category{Name: "Living", Slug: "living"}
	categories.On("CountProducts", ctx).Return([]catalog.CategoryProductCount{{Category: living, ProductCount: 4}}, nil)
	svc := NewProductService(repo, categories, nil)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.InactiveProducts)
	require.Len(t, stats.Categories, 1)
	assert.Equal(t, int64(4), stats.Categories[0].ProductCount)
}

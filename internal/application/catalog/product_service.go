package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/catalog"
	"github.com/lateleria/storefront/internal/domain/shared"
)

// ImageStorage issues presigned upload URLs for product images
type ImageStorage interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// PublicURL returns the URL the object is served from once uploaded
	PublicURL(storageKey string) string
}

// ProductService handles product administration
type ProductService struct {
	productRepo    catalog.ProductRepository
	categoryRepo   catalog.CategoryRepository
	storage        ImageStorage
	events         shared.EventPublisher
	uploadURLTTL   time.Duration
	now            func() time.Time
	newStorageName func() string
}

// NewProductService creates a new ProductService. storage may be nil when
// image uploads are not configured.
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	storage ImageStorage,
) *ProductService {
	return &ProductService{
		productRepo:    productRepo,
		categoryRepo:   categoryRepo,
		storage:        storage,
		uploadURLTTL:   15 * time.Minute,
		now:            time.Now,
		newStorageName: uuid.NewString,
	}
}

// SetEventPublisher sets the event publisher
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// SetUploadURLExpiry overrides how long upload URLs stay valid
func (s *ProductService) SetUploadURLExpiry(d time.Duration) {
	if d > 0 {
		s.uploadURLTTL = d
	}
}

// Create creates a product. The slug comes from the name and gets a
// timestamp suffix when already taken.
func (s *ProductService) Create(ctx context.Context, req ProductInput) (*ProductResponse, error) {
	if req.Price == nil {
		return nil, shared.NewDomainError("INVALID_PRICE", "El precio es obligatorio")
	}
	details := catalog.ProductDetails{
		Name:             req.Name,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Price:            *req.Price,
		SalePrice:        req.SalePrice,
		Active:           true,
		CategoryID:       req.CategoryID,
	}
	if req.Stock != nil {
		details.Stock = *req.Stock
	}
	if req.Active != nil {
		details.Active = *req.Active
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, req.Name, nil)
	if err != nil {
		return nil, err
	}
	product, err := catalog.NewProduct(details, slug)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, &product.BaseAggregateRoot)
	return s.reload(ctx, product.ID)
}

// Update updates a product. Omitted stock and active keep their values; the
// slug is regenerated only when the name changes.
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req ProductInput) (*ProductResponse, error) {
	product, err := s.find(ctx, productID)
	if err != nil {
		return nil, err
	}
	if req.Price == nil {
		return nil, shared.NewDomainError("INVALID_PRICE", "El precio es obligatorio")
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	details := product.Details()
	details.Name = req.Name
	details.Description = req.Description
	details.ShortDescription = req.ShortDescription
	details.Price = *req.Price
	details.SalePrice = req.SalePrice
	details.CategoryID = req.CategoryID
	if req.Stock != nil {
		details.Stock = *req.Stock
	}
	if req.Active != nil {
		details.Active = *req.Active
	}

	nameChanged, err := product.Update(details)
	if err != nil {
		return nil, err
	}
	if nameChanged {
		slug, err := s.uniqueSlug(ctx, product.Name, &product.ID)
		if err != nil {
			return nil, err
		}
		if err := product.SetSlug(slug); err != nil {
			return nil, err
		}
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, &product.BaseAggregateRoot)
	return s.reload(ctx, product.ID)
}

// Delete deletes a product with its images and variants
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.find(ctx, productID); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, productID)
}

// GetByID returns a product with every image
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List lists products newest first, active or not
func (s *ProductService) List(ctx context.Context, filter AdminProductFilter) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx, catalog.ProductFilter{
		CategoryID: filter.CategoryID,
		Search:     strings.TrimSpace(filter.Search),
	})
	if err != nil {
		return nil, err
	}
	return ToProductListResponses(products), nil
}

// AddImage attaches an uploaded image to a product
func (s *ProductService) AddImage(ctx context.Context, productID uuid.UUID, req AddImageRequest) (*ProductImageResponse, error) {
	product, err := s.find(ctx, productID)
	if err != nil {
		return nil, err
	}
	img, err := product.AddImage(req.URL, req.Alt, req.Order)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := toImageResponse(*img)
	return &resp, nil
}

// RemoveImage detaches an image from a product
func (s *ProductService) RemoveImage(ctx context.Context, productID, imageID uuid.UUID) error {
	product, err := s.find(ctx, productID)
	if err != nil {
		return err
	}
	if err := product.RemoveImage(imageID); err != nil {
		return err
	}
	return s.productRepo.Save(ctx, product)
}

// ReplaceVariants swaps the variant list of a product
func (s *ProductService) ReplaceVariants(ctx context.Context, productID uuid.UUID, req ReplaceVariantsRequest) (*ProductResponse, error) {
	product, err := s.find(ctx, productID)
	if err != nil {
		return nil, err
	}
	specs := make([]catalog.VariantSpec, len(req.Variants))
	for i, v := range req.Variants {
		specs[i] = catalog.VariantSpec{Name: v.Name, Value: v.Value, Price: v.Price, Stock: v.Stock}
	}
	if err := product.ReplaceVariants(specs); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, &product.BaseAggregateRoot)
	return s.reload(ctx, product.ID)
}

// CreateUploadURL issues a presigned URL for uploading a product image
func (s *ProductService) CreateUploadURL(ctx context.Context, productID uuid.UUID, req UploadURLRequest) (*UploadURLResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "La subida de imágenes no está configurada")
	}
	if !strings.HasPrefix(strings.ToLower(req.ContentType), "image/") {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Solo se permiten imágenes")
	}
	if _, err := s.find(ctx, productID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s%s", productID, s.newStorageName(), strings.ToLower(path.Ext(req.FileName)))
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, s.uploadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("generate upload url: %w", err)
	}
	return &UploadURLResponse{
		UploadURL: uploadURL,
		PublicURL: s.storage.PublicURL(key),
		Key:       key,
		ExpiresAt: expiresAt,
	}, nil
}

// Stats returns product counts and per-category product counts
func (s *ProductService) Stats(ctx context.Context) (*StatsResponse, error) {
	counts, err := s.productRepo.Counts(ctx)
	if err != nil {
		return nil, err
	}
	perCategory, err := s.categoryRepo.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	resp := &StatsResponse{
		TotalProducts:    counts.Total,
		ActiveProducts:   counts.Active,
		InactiveProducts: counts.Inactive,
		Categories:       make([]CategoryStat, len(perCategory)),
	}
	for i, c := range perCategory {
		resp.Categories[i] = CategoryStat{
			ID:           c.Category.ID,
			Name:         c.Category.Name,
			Slug:         c.Category.Slug,
			ProductCount: c.ProductCount,
		}
	}
	return resp, nil
}

func (s *ProductService) find(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) reload(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	return s.GetByID(ctx, productID)
}

func (s *ProductService) checkCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "La categoría seleccionada no existe")
		}
		return err
	}
	return nil
}

func (s *ProductService) uniqueSlug(ctx context.Context, name string, excludeID *uuid.UUID) (string, error) {
	slug := catalog.Slugify(name)
	if slug == "" {
		return "", nil
	}
	exists, err := s.productRepo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return "", err
	}
	if exists {
		return catalog.SlugWithSuffix(slug, s.now()), nil
	}
	return slug, nil
}


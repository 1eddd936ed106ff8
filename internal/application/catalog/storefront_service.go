package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/cart"
	"github.com/lateleria/storefront/internal/domain/catalog"
	"github.com/lateleria/storefront/internal/domain/shared"
)

// ErrProductNotFound is returned for unknown or inactive storefront products
var ErrProductNotFound = shared.NewDomainError("PRODUCT_NOT_FOUND", "Producto no encontrado")

// StorefrontService serves the public, read-only catalog
type StorefrontService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
}

// NewStorefrontService creates a new StorefrontService
func NewStorefrontService(productRepo catalog.ProductRepository, categoryRepo catalog.CategoryRepository) *StorefrontService {
	return &StorefrontService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// ListProducts lists active products newest first, optionally restricted to
// a category slug
func (s *StorefrontService) ListProducts(ctx context.Context, categorySlug string) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx, catalog.ProductFilter{
		CategorySlug: categorySlug,
		ActiveOnly:   true,
	})
	if err != nil {
		return nil, err
	}
	return ToProductListResponses(products), nil
}

// GetProduct returns an active product with all images and variants
func (s *StorefrontService) GetProduct(ctx context.Context, slug string) (*ProductResponse, error) {
	product, err := s.productRepo.FindActiveBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// ListCategories lists every category ordered by name
func (s *StorefrontService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponses(categories), nil
}

// FindPurchasable resolves an active product by id or slug into the shape
// the cart prices from
func (s *StorefrontService) FindPurchasable(ctx context.Context, idOrSlug string) (cart.Product, error) {
	var (
		product *catalog.Product
		err     error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		product, err = s.productRepo.FindByID(ctx, id)
		if err == nil && !product.Active {
			err = shared.ErrNotFound
		}
	} else {
		product, err = s.productRepo.FindActiveBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return cart.Product{}, ErrProductNotFound
		}
		return cart.Product{}, err
	}
	return ToCartProduct(product), nil
}

// ToCartProduct maps a catalog product onto the cart's pricing input
func ToCartProduct(p *catalog.Product) cart.Product {
	out := cart.Product{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Price:     p.Price,
		SalePrice: p.SalePrice,
		Variants:  make([]cart.VariantOption, len(p.Variants)),
	}
	if first := p.FirstImage(); first != nil {
		url := first.URL
		out.Image = &url
	}
	for i, v := range p.Variants {
		out.Variants[i] = cart.VariantOption{Name: v.Name, Value: v.Value, Price: v.Price}
	}
	return out
}

package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductFilter narrows product listings. Zero values mean "no restriction".
type ProductFilter struct {
	CategoryID   *uuid.UUID
	CategorySlug string
	Search       string
	ActiveOnly   bool
}

// ProductCounts summarises the catalog for the admin dashboard
type ProductCounts struct {
	Total    int64
	Active   int64
	Inactive int64
}

// CategoryProductCount pairs a category with the number of products in it
type CategoryProductCount struct {
	Category     Category
	ProductCount int64
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID loads a product with its category, images and variants
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindActiveBySlug loads an active product with its category, images and variants
	FindActiveBySlug(ctx context.Context, slug string) (*Product, error)

	// FindByIDs loads products (with variants) by id; missing ids are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll lists products newest first with their category and first image
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)

	// ExistsBySlug checks slug usage, ignoring the product excludeID when set
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates a product together with its images and variants
	Save(ctx context.Context, product *Product) error

	// Delete removes a product and its images and variants
	Delete(ctx context.Context, id uuid.UUID) error

	// Counts returns total/active/inactive product counts
	Counts(ctx context.Context) (ProductCounts, error)
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindBySlug finds a category by its slug
	FindBySlug(ctx context.Context, slug string) (*Category, error)

	// FindAll lists categories ordered by name
	FindAll(ctx context.Context) ([]Category, error)

	// ExistsBySlug checks whether a category already uses slug
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// Count counts all categories
	Count(ctx context.Context) (int64, error)

	// CountProducts lists categories ordered by name with their product counts
	CountProducts(ctx context.Context) ([]CategoryProductCount, error)
}

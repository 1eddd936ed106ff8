package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductImageResponse represents a product image in API responses
type ProductImageResponse struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Alt       *string   `json:"alt"`
	Order     int       `json:"order"`
	ProductID uuid.UUID `json:"productId"`
}

// ProductVariantResponse represents a product variant in API responses
type ProductVariantResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Value     string           `json:"value"`
	Price     *decimal.Decimal `json:"price"`
	Stock     int              `json:"stock"`
	ProductID uuid.UUID        `json:"productId"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID               uuid.UUID                `json:"id"`
	Name             string                   `json:"name"`
	Slug             string                   `json:"slug"`
	Description      string                   `json:"description"`
	ShortDescription *string                  `json:"shortDescription"`
	Price            decimal.Decimal          `json:"price"`
	SalePrice        *decimal.Decimal         `json:"salePrice"`
	Stock            int                      `json:"stock"`
	Active           bool                     `json:"active"`
	CategoryID       *uuid.UUID               `json:"categoryId"`
	Category         *CategoryResponse        `json:"category"`
	Images           []ProductImageResponse   `json:"images"`
	Variants         []ProductVariantResponse `json:"variants,omitempty"`
	CreatedAt        time.Time                `json:"createdAt"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}

// ProductInput carries the editable product fields. Pointer fields are
// optional; a nil Price is rejected on create.
type ProductInput struct {
	Name             string           `json:"name" binding:"max=200" example:"Mantel de lino natural"`
	Description      string           `json:"description" binding:"max=5000"`
	ShortDescription *string          `json:"shortDescription" binding:"omitempty,max=500"`
	Price            *decimal.Decimal `json:"price" example:"39.90"`
	SalePrice        *decimal.Decimal `json:"salePrice" example:"29.90"`
	Stock            *int             `json:"stock" example:"10"`
	Active           *bool            `json:"active"`
	CategoryID       *uuid.UUID       `json:"categoryId"`
}

// AdminProductFilter represents filter options for the admin product list
type AdminProductFilter struct {
	CategoryID *uuid.UUID `form:"categoryId"`
	Search     string     `form:"search"`
}

// AddImageRequest adds an already uploaded image to a product
type AddImageRequest struct {
	URL   string  `json:"url" binding:"required,url"`
	Alt   *string `json:"alt"`
	Order int     `json:"order" binding:"min=0"`
}

// UploadURLRequest asks for a presigned upload URL
type UploadURLRequest struct {
	FileName    string `json:"fileName" binding:"required,max=255" example:"mantel.jpg"`
	ContentType string `json:"contentType" binding:"required" example:"image/jpeg"`
}

// UploadURLResponse carries a presigned upload URL and the public URL the
// image will have once uploaded
type UploadURLResponse struct {
	UploadURL string    `json:"uploadUrl"`
	PublicURL string    `json:"publicUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VariantInput describes one variant in a replace request
type VariantInput struct {
	Name  string           `json:"name" binding:"required,max=100"`
	Value string           `json:"value" binding:"required,max=100"`
	Price *decimal.Decimal `json:"price"`
	Stock int              `json:"stock" binding:"min=0"`
}

// ReplaceVariantsRequest replaces every variant of a product
type ReplaceVariantsRequest struct {
	Variants []VariantInput `json:"variants" binding:"dive"`
}

// CreateCategoryRequest creates a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=100" example:"Ropa de cama"`
}

// SeedResult reports what happened to one default category
type SeedResult struct {
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Seed statuses
const (
	SeedStatusCreated = "created"
	SeedStatusExists  = "exists"
	SeedStatusError   = "error"
)

// CategoryStat is a category with its product count
type CategoryStat struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ProductCount int64     `json:"productCount"`
}

// StatsResponse feeds the admin dashboard
type StatsResponse struct {
	TotalProducts    int64          `json:"totalProducts"`
	ActiveProducts   int64          `json:"activeProducts"`
	InactiveProducts int64          `json:"inactiveProducts"`
	Categories       []CategoryStat `json:"categories"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCategoryResponses converts a slice of domain Categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out
}

// ToProductResponse converts a domain Product with all its images and variants
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := toProductBase(p)
	for _, img := range p.SortedImages() {
		resp.Images = append(resp.Images, toImageResponse(img))
	}
	resp.Variants = make([]ProductVariantResponse, len(p.Variants))
	for i, v := range p.Variants {
		resp.Variants[i] = ProductVariantResponse{
			ID:        v.ID,
			Name:      v.Name,
			Value:     v.Value,
			Price:     v.Price,
			Stock:     v.Stock,
			ProductID: v.ProductID,
		}
	}
	return resp
}

// ToProductListResponse converts a domain Product keeping only its first image
func ToProductListResponse(p *catalog.Product) ProductResponse {
	resp := toProductBase(p)
	if first := p.FirstImage(); first != nil {
		resp.Images = append(resp.Images, toImageResponse(*first))
	}
	return resp
}

// ToProductListResponses converts a slice of domain Products for list views
func ToProductListResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductListResponse(&products[i])
	}
	return out
}

func toProductBase(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            p.Price,
		SalePrice:        p.SalePrice,
		Stock:            p.Stock,
		Active:           p.Active,
		CategoryID:       p.CategoryID,
		Images:           []ProductImageResponse{},
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.Category != nil {
		c := ToCategoryResponse(p.Category)
		resp.Category = &c
	}
	return resp
}

func toImageResponse(img catalog.ProductImage) ProductImageResponse {
	return ProductImageResponse{
		ID:        img.ID,
		URL:       img.URL,
		Alt:       img.Alt,
		Order:     img.Order,
		ProductID: img.ProductID,
	}
}

package models

import (
	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	AggregateModel
	Name string `gorm:"type:varchar(100);not null"`
	Slug string `gorm:"type:varchar(120);not null;uniqueIndex:idx_category_slug"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Slug = c.Slug
}

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Name             string                `gorm:"type:varchar(200);not null"`
	Slug             string                `gorm:"type:varchar(260);not null;uniqueIndex:idx_product_slug"`
	Description      string                `gorm:"type:text;not null;default:''"`
	ShortDescription *string               `gorm:"type:varchar(500)"`
	Price            decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	SalePrice        *decimal.Decimal      `gorm:"type:decimal(12,2)"`
	Stock            int                   `gorm:"not null;default:0"`
	Active           bool                  `gorm:"not null;index"`
	CategoryID       *uuid.UUID            `gorm:"type:uuid;index"`
	Category         *CategoryModel        `gorm:"foreignKey:CategoryID"`
	Images           []ProductImageModel   `gorm:"foreignKey:ProductID"`
	Variants         []ProductVariantModel `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
// Images come back ordered by their display order when the caller preloads
// them that way.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		Description:       m.Description,
		ShortDescription:  m.ShortDescription,
		Price:             m.Price,
		SalePrice:         m.SalePrice,
		Stock:             m.Stock,
		Active:            m.Active,
		CategoryID:        m.CategoryID,
		Images:            make([]catalog.ProductImage, 0, len(m.Images)),
		Variants:          make([]catalog.ProductVariant, 0, len(m.Variants)),
	}
	if m.Category != nil {
		p.Category = m.Category.ToDomain()
	}
	for i := range m.Images {
		p.Images = append(p.Images, m.Images[i].ToDomain())
	}
	for i := range m.Variants {
		p.Variants = append(p.Variants, m.Variants[i].ToDomain())
	}
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
// The category association is never written through the product.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Slug = p.Slug
	m.Description = p.Description
	m.ShortDescription = p.ShortDescription
	m.Price = p.Price
	m.SalePrice = p.SalePrice
	m.Stock = p.Stock
	m.Active = p.Active
	m.CategoryID = p.CategoryID
	m.Images = make([]ProductImageModel, len(p.Images))
	for i, img := range p.Images {
		m.Images[i].FromDomain(p.ID, img)
	}
	m.Variants = make([]ProductVariantModel, len(p.Variants))
	for i, v := range p.Variants {
		m.Variants[i].FromDomain(p.ID, v)
	}
}

// ProductImageModel is the persistence model for a product image.
type ProductImageModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	URL       string    `gorm:"type:varchar(1000);not null"`
	Alt       *string   `gorm:"type:varchar(200)"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductImageModel) TableName() string {
	return "product_images"
}

// ToDomain converts the persistence model to a domain ProductImage.
func (m *ProductImageModel) ToDomain() catalog.ProductImage {
	return catalog.ProductImage{
		ID:        m.ID,
		ProductID: m.ProductID,
		URL:       m.URL,
		Alt:       m.Alt,
		Order:     m.SortOrder,
	}
}

// FromDomain populates the persistence model from a domain ProductImage.
func (m *ProductImageModel) FromDomain(productID uuid.UUID, img catalog.ProductImage) {
	m.ID = img.ID
	m.ProductID = productID
	m.URL = img.URL
	m.Alt = img.Alt
	m.SortOrder = img.Order
}

// ProductVariantModel is the persistence model for a product variant.
type ProductVariantModel struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name      string           `gorm:"type:varchar(100);not null"`
	Value     string           `gorm:"type:varchar(100);not null"`
	Price     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Stock     int              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductVariantModel) TableName() string {
	return "product_variants"
}

// ToDomain converts the persistence model to a domain ProductVariant.
func (m *ProductVariantModel) ToDomain() catalog.ProductVariant {
	return catalog.ProductVariant{
		ID:        m.ID,
		ProductID: m.ProductID,
		Name:      m.Name,
		Value:     m.Value,
		Price:     m.Price,
		Stock:     m.Stock,
	}
}

// FromDomain populates the persistence model from a domain ProductVariant.
func (m *ProductVariantModel) FromDomain(productID uuid.UUID, v catalog.ProductVariant) {
	m.ID = v.ID
	m.ProductID = productID
	m.Name = v.Name
	m.Value = v.Value
	m.Price = v.Price
	m.Stock = v.Stock
}

package catalog

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a sellable item. It is the aggregate root for its images and
// variants.
type Product struct {
	shared.BaseAggregateRoot
	Name             string
	Slug             string
	Description      string
	ShortDescription *string
	Price            decimal.Decimal
	SalePrice        *decimal.Decimal
	Stock            int
	Active           bool
	CategoryID       *uuid.UUID
	Category         *Category // populated by reads, never written through the product
	Images           []ProductImage
	Variants         []ProductVariant
}

// ProductImage is a picture shown on the product page, ordered by Order
type ProductImage struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	URL       string
	Alt       *string
	Order     int
}

// ProductVariant is one selectable option value (e.g. Color=Rojo) with an
// optional price override
type ProductVariant struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Name      string
	Value     string
	Price     *decimal.Decimal
	Stock     int
}

// ProductDetails is the editable part of a product
type ProductDetails struct {
	Name             string
	Description      string
	ShortDescription *string
	Price            decimal.Decimal
	SalePrice        *decimal.Decimal
	Stock            int
	Active           bool
	CategoryID       *uuid.UUID
}

// VariantSpec describes a variant to attach to a product
type VariantSpec struct {
	Name  string
	Value string
	Price *decimal.Decimal
	Stock int
}

// NewProduct creates a product with the given details and an already
// uniquified slug
func NewProduct(details ProductDetails, slug string) (*Product, error) {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_SLUG", "El nombre del producto debe contener letras o números")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              slug,
		Images:            []ProductImage{},
		Variants:          []ProductVariant{},
	}
	product.apply(details)
	product.AddDomainEvent(NewProductCreatedEvent(product))
	return product, nil
}

// Update replaces the editable fields. It reports whether the name changed,
// in which case the caller is expected to assign a new slug.
func (p *Product) Update(details ProductDetails) (bool, error) {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return false, err
	}
	nameChanged := details.Name != p.Name
	p.apply(details)
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nameChanged, nil
}

// Details returns the current editable fields
func (p *Product) Details() ProductDetails {
	return ProductDetails{
		Name:             p.Name,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            p.Price,
		SalePrice:        p.SalePrice,
		Stock:            p.Stock,
		Active:           p.Active,
		CategoryID:       p.CategoryID,
	}
}

// SetSlug assigns a slug chosen by the caller
func (p *Product) SetSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "El nombre del producto debe contener letras o números")
	}
	p.Slug = slug
	p.Touch()
	return nil
}

// AddImage appends an image
func (p *Product) AddImage(url string, alt *string, order int) (*ProductImage, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, shared.NewDomainError("INVALID_IMAGE", "La URL de la imagen es obligatoria")
	}
	if order < 0 {
		return nil, shared.NewDomainError("INVALID_IMAGE", "El orden de la imagen no puede ser negativo")
	}
	img := ProductImage{
		ID:        uuid.New(),
		ProductID: p.ID,
		URL:       url,
		Alt:       trimmedOrNil(alt),
		Order:     order,
	}
	p.Images = append(p.Images, img)
	p.Touch()
	p.IncrementVersion()
	return &img, nil
}

// RemoveImage deletes an image by id
func (p *Product) RemoveImage(imageID uuid.UUID) error {
	idx := slices.IndexFunc(p.Images, func(img ProductImage) bool { return img.ID == imageID })
	if idx < 0 {
		return shared.NewDomainError("NOT_FOUND", "Imagen no encontrada")
	}
	p.Images = slices.Delete(p.Images, idx, idx+1)
	p.Touch()
	p.IncrementVersion()
	return nil
}

// ReplaceVariants swaps the whole variant list
func (p *Product) ReplaceVariants(specs []VariantSpec) error {
	variants := make([]ProductVariant, 0, len(specs))
	seen := make(map[[2]string]struct{}, len(specs))
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		value := strings.TrimSpace(spec.Value)
		if name == "" || value == "" {
			return shared.NewDomainError("INVALID_VARIANT", "Cada variante necesita nombre y valor")
		}
		if spec.Price != nil && spec.Price.IsNegative() {
			return shared.NewDomainError("INVALID_VARIANT", "El precio de la variante debe ser mayor o igual a 0")
		}
		if spec.Stock < 0 {
			return shared.NewDomainError("INVALID_VARIANT", "El stock de la variante debe ser mayor o igual a 0")
		}
		key := [2]string{name, value}
		if _, dup := seen[key]; dup {
			return shared.NewDomainError("INVALID_VARIANT", "Variante duplicada: "+name+"="+value)
		}
		seen[key] = struct{}{}
		variants = append(variants, ProductVariant{
			ID:        uuid.New(),
			ProductID: p.ID,
			Name:      name,
			Value:     value,
			Price:     spec.Price,
			Stock:     spec.Stock,
		})
	}
	p.Variants = variants
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// SortedImages returns the images ordered by Order, stable on ties
func (p *Product) SortedImages() []ProductImage {
	out := slices.Clone(p.Images)
	slices.SortStableFunc(out, func(a, b ProductImage) int { return a.Order - b.Order })
	return out
}

// FirstImage returns the lowest-ordered image, or nil
func (p *Product) FirstImage() *ProductImage {
	sorted := p.SortedImages()
	if len(sorted) == 0 {
		return nil
	}
	return &sorted[0]
}

// OnSale reports whether a positive sale price is set
func (p *Product) OnSale() bool {
	return p.SalePrice != nil && p.SalePrice.IsPositive()
}

func (p *Product) apply(d ProductDetails) {
	p.Name = d.Name
	p.Description = d.Description
	p.ShortDescription = d.ShortDescription
	p.Price = d.Price
	p.SalePrice = d.SalePrice
	p.Stock = d.Stock
	p.Active = d.Active
	p.CategoryID = d.CategoryID
	if p.Category != nil && (d.CategoryID == nil || *d.CategoryID != p.Category.ID) {
		p.Category = nil
	}
}

func (d ProductDetails) normalized() ProductDetails {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.ShortDescription = trimmedOrNil(d.ShortDescription)
	return d
}

func (d ProductDetails) validate() error {
	if d.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "El nombre es obligatorio")
	}
	if len(d.Name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "El nombre no puede superar 200 caracteres")
	}
	if d.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "El precio debe ser un número válido mayor o igual a 0")
	}
	if d.SalePrice != nil && d.SalePrice.IsNegative() {
		return shared.NewDomainError("INVALID_SALE_PRICE", "El precio de oferta debe ser un número válido mayor o igual a 0")
	}
	if d.Stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "El stock debe ser un número entero mayor o igual a 0")
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// SlugWithSuffix builds the fallback slug used when base is already taken
func SlugWithSuffix(base string, now time.Time) string {
	return base + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}

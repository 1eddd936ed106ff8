package catalog

import (
	"strings"

	"github.com/lateleria/storefront/internal/domain/shared"
)

// DefaultCategoryNames is the category set seeded on a fresh shop
var DefaultCategoryNames = []string{
	"Accesorio",
	"BathCloth",
	"Courtain",
	"Living",
	"Lounge",
	"TableCloth",
}

// Category groups products in the storefront
type Category struct {
	shared.BaseAggregateRoot
	Name string
	Slug string
}

// NewCategory creates a category whose slug is derived from its name
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	slug := Slugify(name)
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY_NAME", "El nombre de la categoría debe contener letras o números")
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
	}
	category.AddDomainEvent(NewCategoryCreatedEvent(category))
	return category, nil
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_CATEGORY_NAME", "El nombre de la categoría es obligatorio")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY_NAME", "El nombre de la categoría no puede superar 100 caracteres")
	}
	return nil
}

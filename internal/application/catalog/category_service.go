package catalog

import (
	"context"

	"github.com/lateleria/storefront/internal/domain/catalog"
	"github.com/lateleria/storefront/internal/domain/shared"
)

// CategoryService handles category administration
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	events       shared.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// SetEventPublisher sets the event publisher
func (s *CategoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// Create creates a category with a unique slug
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name)
	if err != nil {
		return nil, err
	}
	exists, err := s.categoryRepo.ExistsBySlug(ctx, category.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Ya existe una categoría con ese nombre")
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, &category.BaseAggregateRoot)

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// List lists every category ordered by name
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponses(categories), nil
}

// SeedDefaults creates the default categories that are missing. One failing
// category does not stop the others.
func (s *CategoryService) SeedDefaults(ctx context.Context) []SeedResult {
	results := make([]SeedResult, 0, len(catalog.DefaultCategoryNames))
	for _, name := range catalog.DefaultCategoryNames {
		result := SeedResult{Name: name, Slug: catalog.Slugify(name)}

		exists, err := s.categoryRepo.ExistsBySlug(ctx, result.Slug)
		switch {
		case err != nil:
			result.Status = SeedStatusError
			result.Error = err.Error()
		case exists:
			result.Status = SeedStatusExists
		default:
			result.Status = SeedStatusCreated
			category, err := catalog.NewCategory(name)
			if err == nil {
				err = s.categoryRepo.Save(ctx, category)
			}
			if err != nil {
				result.Status = SeedStatusError
				result.Error = err.Error()
			}
		}
		results = append(results, result)
	}
	return results
}

func publishEvents(ctx context.Context, publisher shared.EventPublisher, root *shared.BaseAggregateRoot) {
	events := root.GetDomainEvents()
	if publisher != nil && len(events) > 0 {
		// handlers log their own failures
		_ = publisher.Publish(ctx, events...)
	}
	root.ClearDomainEvents()
}

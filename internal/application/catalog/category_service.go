package catalog

import (
	"context"
	"errors"

	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, logger: logger}
}

// Create creates a new category. An empty slug is derived from the name.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name, req.Slug)
	if err != nil {
		return nil, err
	}

	exists, err := s.categoryRepo.ExistsBySlug(ctx, category.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this slug already exists")
	}

	if err := s.ensureParent(ctx, category.ID, req.ParentID); err != nil {
		return nil, err
	}
	if err := category.Update(req.Name, category.Slug, req.Description, req.ParentID, req.SortOrder); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetByID returns a category
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID, includeInactive bool) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !category.IsActive && !includeInactive {
		return nil, shared.NewDomainError("NOT_FOUND", "Category not found")
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetBySlug returns an active category by slug
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, shared.NewDomainError("NOT_FOUND", "Category not found")
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// List returns categories matching the filter and the total count
func (s *CategoryService) List(ctx context.Context, filter shared.Filter) ([]CategoryResponse, int64, error) {
	categories, err := s.categoryRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.categoryRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out, total, nil
}

// Update replaces a category's editable fields
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Slug != category.Slug {
		exists, err := s.categoryRepo.ExistsBySlug(ctx, req.Slug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this slug already exists")
		}
	}
	if err := s.ensureParent(ctx, category.ID, req.ParentID); err != nil {
		return nil, err
	}
	if err := category.Update(req.Name, req.Slug, req.Description, req.ParentID, req.SortOrder); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete soft-deletes a category. Products keep their category reference.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := category.Deactivate(); err != nil {
		return err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return err
	}
	s.logger.Info("category deactivated", zap.String("category_id", id.String()), zap.String("slug", category.Slug))
	return nil
}

// ensureParent checks the parent exists and is not a descendant of the category
func (s *CategoryService) ensureParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error {
	seen := map[uuid.UUID]bool{id: true}
	for next := parentID; next != nil; {
		if seen[*next] {
			return shared.NewDomainError("INVALID_PARENT", "Category hierarchy cannot contain a cycle")
		}
		seen[*next] = true
		parent, err := s.categoryRepo.FindByID(ctx, *next)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_PARENT", "Parent category not found")
			}
			return err
		}
		next = parent.ParentID
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Fluffaro/desk-cartel/internal/domain"
	"github.com/Fluffaro/desk-cartel/internal/repository"
	apperrors "github.com/Fluffaro/desk-cartel/pkg/util"
)

// CatalogService administers the priority and category configuration tickets
// reference. Immutable-after-setup in spirit: priorities keep their identity,
// and a priority's time limit is frozen into each ticket at start time, so
// edits here never rescore work already in flight.
type CatalogService struct {
	priorities repository.PriorityRepository
	categories repository.CategoryRepository
}

// NewCatalogService creates the service.
func NewCatalogService(priorities repository.PriorityRepository, categories repository.CategoryRepository) *CatalogService {
	return &CatalogService{priorities: priorities, categories: categories}
}

// PriorityInput describes priority configuration.
type PriorityInput struct {
	Name           string
	Weight         int
	TimeLimitHours int
}

// CategoryInput describes category configuration.
type CategoryInput struct {
	Name        string
	Description string
	Points      int
	IsActive    bool
}

// CreatePriority adds a priority with a unique name.
func (s *CatalogService) CreatePriority(ctx context.Context, input PriorityInput) (*domain.Priority, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("priority name is required", nil)
	}
	if input.Weight <= 0 || input.TimeLimitHours <= 0 {
		return nil, apperrors.NewValidationError("weight and time limit must be positive", nil)
	}
	if _, err := s.priorities.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("priority name already exists", map[string]any{"name": name})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	priority := &domain.Priority{
		Name:           name,
		Weight:         input.Weight,
		TimeLimitHours: input.TimeLimitHours,
	}
	if err := s.priorities.Create(ctx, priority); err != nil {
		return nil, apperrors.MapError(err)
	}
	return priority, nil
}

// ListPriorities returns all priorities ordered by weight.
func (s *CatalogService) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	priorities, err := s.priorities.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return priorities, nil
}

// CreateCategory adds a category.
func (s *CatalogService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name is required", nil)
	}
	if input.Points <= 0 {
		return nil, apperrors.NewValidationError("points must be positive", nil)
	}
	if _, err := s.categories.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("category name already exists", map[string]any{"name": name})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	category := &domain.Category{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Points:      input.Points,
		IsActive:    input.IsActive,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// SetCategoryActive toggles whether new tickets may use the category.
func (s *CatalogService) SetCategoryActive(ctx context.Context, categoryID string, active bool) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": categoryID})
		}
		return nil, apperrors.MapError(err)
	}
	category.IsActive = active
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// ListCategories returns categories, optionally only active ones.
func (s *CatalogService) ListCategories(ctx context.Context, active *bool) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx, repository.CategoryFilter{Active: active})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

package dto

import (
	"github.com/Fluffaro/desk-cartel/internal/domain"
)

// CreatePriorityRequest payload.
type CreatePriorityRequest struct {
	Name           string `json:"name"`
	Weight         int    `json:"weight"`
	TimeLimitHours int    `json:"time_limit_hours"`
}

// PriorityResponse response.
type PriorityResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Weight         int    `json:"weight"`
	TimeLimitHours int    `json:"time_limit_hours"`
}

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	IsActive    *bool  `json:"is_active"`
}

// SetCategoryActiveRequest payload.
type SetCategoryActiveRequest struct {
	Active bool `json:"active"`
}

// CategoryResponse response.
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	IsActive    bool   `json:"is_active"`
}

// NewPriorityResponse maps a domain priority.
func NewPriorityResponse(priority *domain.Priority) PriorityResponse {
	return PriorityResponse{
		ID:             priority.ID,
		Name:           priority.Name,
		Weight:         priority.Weight,
		TimeLimitHours: priority.TimeLimitHours,
	}
}

// NewCategoryResponse maps a domain category.
func NewCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Points:      category.Points,
		IsActive:    category.IsActive,
	}
}

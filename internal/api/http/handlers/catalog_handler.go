package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Fluffaro/desk-cartel/internal/api/dto"
	"github.com/Fluffaro/desk-cartel/internal/service"
	apperrors "github.com/Fluffaro/desk-cartel/pkg/util"
)

// CatalogHandler manages priority and category administration.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: catalogService}
}

// CreatePriority POST /priorities.
func (h *CatalogHandler) CreatePriority(c *fiber.Ctx) error {
	var req dto.CreatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	priority, err := h.service.CreatePriority(c.Context(), service.PriorityInput{
		Name:           req.Name,
		Weight:         req.Weight,
		TimeLimitHours: req.TimeLimitHours,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPriorityResponse(priority)})
}

// ListPriorities GET /priorities.
func (h *CatalogHandler) ListPriorities(c *fiber.Ctx) error {
	priorities, err := h.service.ListPriorities(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.PriorityResponse, 0, len(priorities))
	for i := range priorities {
		items = append(items, dto.NewPriorityResponse(&priorities[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCategory POST /categories.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	category, err := h.service.CreateCategory(c.Context(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Points:      req.Points,
		IsActive:    active,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCategoryResponse(category)})
}

// ListCategories GET /categories.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	var active *bool
	switch strings.ToLower(c.Query("active")) {
	case "true":
		active = boolPtr(true)
	case "false":
		active = boolPtr(false)
	}
	categories, err := h.service.ListCategories(c.Context(), active)
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, dto.NewCategoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetCategoryActive PATCH /categories/:id/active.
func (h *CatalogHandler) SetCategoryActive(c *fiber.Ctx) error {
	var req dto.SetCategoryActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.service.SetCategoryActive(c.Context(), c.Params("id"), req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryResponse(category)})
}

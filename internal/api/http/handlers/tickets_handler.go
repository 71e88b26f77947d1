package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Fluffaro/desk-cartel/internal/api/dto"
	"github.com/Fluffaro/desk-cartel/internal/auth"
	"github.com/Fluffaro/desk-cartel/internal/domain"
	"github.com/Fluffaro/desk-cartel/internal/service"
	apperrors "github.com/Fluffaro/desk-cartel/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" || req.PriorityID == "" || req.CategoryID == "" {
		return apperrors.NewValidationError("title, priority_id, category_id required", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), principal.User.ID, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		PriorityID:  req.PriorityID,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /tickets. Owners see their tickets, agents their queue,
// admins everything.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	filter := service.TicketListFilter{
		Statuses: parseStatuses(c.Query("status")),
		Limit:    c.QueryInt("limit", 0),
		Offset:   c.QueryInt("offset", 0),
	}
	switch {
	case principal.User.Role == domain.UserRoleAdmin:
		// no scope restriction
	case principal.Agent != nil && c.Query("queue") == "mine":
		filter.AssignedAgentID = &principal.Agent.ID
	default:
		filter.OwnerID = &principal.User.ID
	}

	tickets, err := h.service.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketListResponse(tickets)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.service.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if !canViewTicket(principal, ticket) {
		return apperrors.NewForbidden("access denied")
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// StartTicket POST /tickets/:id/start. The acting agent comes from the token.
func (h *TicketsHandler) StartTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewForbidden("agent required")
	}
	ticket, err := h.service.StartTicket(c.Context(), c.Params("id"), principal.Agent.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// CompleteTicket POST /tickets/:id/complete.
func (h *TicketsHandler) CompleteTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewForbidden("agent required")
	}
	ticket, err := h.service.CompleteTicket(c.Context(), c.Params("id"), principal.Agent.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

func canViewTicket(principal *auth.Principal, ticket *domain.Ticket) bool {
	if principal.User.Role == domain.UserRoleAdmin {
		return true
	}
	if ticket.OwnerID == principal.User.ID {
		return true
	}
	return principal.Agent != nil && ticket.IsHeldBy(principal.Agent.ID)
}

func parseStatuses(raw string) []domain.TicketStatus {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	statuses := make([]domain.TicketStatus, 0, len(parts))
	for _, part := range parts {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			statuses = append(statuses, domain.TicketStatus(part))
		}
	}
	return statuses
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Fluffaro/desk-cartel/internal/api/dto"
	"github.com/Fluffaro/desk-cartel/internal/service"
	apperrors "github.com/Fluffaro/desk-cartel/pkg/util"
)

// AgentsHandler manages agent administration endpoints.
type AgentsHandler struct {
	service *service.AgentService
}

// NewAgentsHandler constructs handler.
func NewAgentsHandler(agentService *service.AgentService) *AgentsHandler {
	return &AgentsHandler{service: agentService}
}

// PromoteAgent POST /agents.
func (h *AgentsHandler) PromoteAgent(c *fiber.Ctx) error {
	var req dto.PromoteAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" || req.Level == "" {
		return apperrors.NewValidationError("user_id and level required", nil)
	}

	agent, err := h.service.PromoteUser(c.Context(), req.UserID, req.Level)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAgentResponse(agent)})
}

// ListAgents GET /agents.
func (h *AgentsHandler) ListAgents(c *fiber.Ctx) error {
	var active *bool
	switch strings.ToLower(c.Query("active")) {
	case "true":
		active = boolPtr(true)
	case "false":
		active = boolPtr(false)
	}
	agents, err := h.service.ListAgents(c.Context(), active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentListResponse(agents)})
}

// GetAgent GET /agents/:id.
func (h *AgentsHandler) GetAgent(c *fiber.Ctx) error {
	agent, err := h.service.GetAgent(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentResponse(agent)})
}

// SetAgentActive PATCH /agents/:id/active. Deactivated agents stop receiving
// work; the reconciliation sweeps reclaim what they hold.
func (h *AgentsHandler) SetAgentActive(c *fiber.Ctx) error {
	var req dto.SetAgentActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agent, err := h.service.SetActive(c.Context(), c.Params("id"), req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentResponse(agent)})
}

// ChangeAgentLevel PATCH /agents/:id/level.
func (h *AgentsHandler) ChangeAgentLevel(c *fiber.Ctx) error {
	var req dto.ChangeAgentLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Level == "" {
		return apperrors.NewValidationError("level required", nil)
	}
	agent, err := h.service.ChangeLevel(c.Context(), c.Params("id"), req.Level)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentResponse(agent)})
}

func boolPtr(v bool) *bool {
	return &v
}

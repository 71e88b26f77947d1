package dto

import (
	"time"

	"github.com/Fluffaro/desk-cartel/internal/domain"
)

// PromoteAgentRequest payload.
type PromoteAgentRequest struct {
	UserID string            `json:"user_id"`
	Level  domain.AgentLevel `json:"level"`
}

// SetAgentActiveRequest payload.
type SetAgentActiveRequest struct {
	Active bool `json:"active"`
}

// ChangeAgentLevelRequest payload.
type ChangeAgentLevelRequest struct {
	Level domain.AgentLevel `json:"level"`
}

// AgentResponse response, including the performance counters.
type AgentResponse struct {
	ID                     string            `json:"id"`
	UserID                 string            `json:"user_id"`
	Level                  domain.AgentLevel `json:"level"`
	BaseCapacity           int               `json:"base_capacity"`
	TotalCapacity          int               `json:"total_capacity"`
	CurrentWorkload        int               `json:"current_workload"`
	Utilization            float64           `json:"utilization"`
	IsActive               bool              `json:"is_active"`
	CompletedTickets       int               `json:"completed_tickets"`
	TotalPerformancePoints int               `json:"total_performance_points"`
	CreatedAt              time.Time         `json:"created_at"`
}

// NewAgentResponse maps a domain agent.
func NewAgentResponse(agent *domain.Agent) AgentResponse {
	return AgentResponse{
		ID:                     agent.ID,
		UserID:                 agent.UserID,
		Level:                  agent.Level,
		BaseCapacity:           agent.BaseCapacity,
		TotalCapacity:          agent.TotalCapacity,
		CurrentWorkload:        agent.CurrentWorkload,
		Utilization:            agent.Utilization(),
		IsActive:               agent.IsActive,
		CompletedTickets:       agent.CompletedTickets,
		TotalPerformancePoints: agent.TotalPerformancePoints,
		CreatedAt:              agent.CreatedAt,
	}
}

// NewAgentListResponse maps a slice of agents.
func NewAgentListResponse(agents []domain.Agent) []AgentResponse {
	result := make([]AgentResponse, 0, len(agents))
	for i := range agents {
		result = append(result, NewAgentResponse(&agents[i]))
	}
	return result
}

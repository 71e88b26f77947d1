package dto

import (
	"time"

	"github.com/Fluffaro/desk-cartel/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PriorityID  string `json:"priority_id"`
	CategoryID  string `json:"category_id"`
}

// TicketResponse response.
type TicketResponse struct {
	ID                   string              `json:"id"`
	OwnerID              string              `json:"owner_id"`
	AssignedAgentID      *string             `json:"assigned_agent_id,omitempty"`
	Title                string              `json:"title"`
	Description          string              `json:"description"`
	Status               domain.TicketStatus `json:"status"`
	Priority             string              `json:"priority"`
	PriorityWeight       int                 `json:"priority_weight"`
	Category             string              `json:"category"`
	Points               int                 `json:"points"`
	DateStarted          *time.Time          `json:"date_started,omitempty"`
	ExpectedCompletionAt *time.Time          `json:"expected_completion_at,omitempty"`
	CompletionDate       *time.Time          `json:"completion_date,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:                   ticket.ID,
		OwnerID:              ticket.OwnerID,
		AssignedAgentID:      ticket.AssignedAgentID,
		Title:                ticket.Title,
		Description:          ticket.Description,
		Status:               ticket.Status,
		Points:               ticket.Points,
		DateStarted:          ticket.DateStarted,
		ExpectedCompletionAt: ticket.ExpectedCompletionAt,
		CompletionDate:       ticket.CompletionDate,
		CreatedAt:            ticket.CreatedAt,
		UpdatedAt:            ticket.UpdatedAt,
	}
	if ticket.Priority != nil {
		resp.Priority = ticket.Priority.Name
		resp.PriorityWeight = ticket.Priority.Weight
	}
	if ticket.Category != nil {
		resp.Category = ticket.Category.Name
	}
	return resp
}

// NewTicketListResponse maps a slice of tickets.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, NewTicketResponse(&tickets[i]))
	}
	return result
}

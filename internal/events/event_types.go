package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketCompleted     EventType = "ticket_completed"
	EventDeadlineApproaching EventType = "deadline_approaching"
	EventAgentDeactivated    EventType = "agent_deactivated"
)

// Event represents a domain event emitted by services for an external
// notifier to consume.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	OwnerID  string `json:"owner_id"`
	Priority string `json:"priority"`
	Category string `json:"category"`
	Title    string `json:"title"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AgentID string `json:"agent_id"`
	Weight  int    `json:"weight"`
}

// TicketCompletedPayload payload.
type TicketCompletedPayload struct {
	AgentID string `json:"agent_id"`
	Points  int    `json:"points"`
}

// DeadlineApproachingPayload payload.
type DeadlineApproachingPayload struct {
	AgentID              string    `json:"agent_id"`
	ExpectedCompletionAt time.Time `json:"expected_completion_at"`
}

// AgentDeactivatedPayload payload.
type AgentDeactivatedPayload struct {
	AgentID string `json:"agent_id"`
}

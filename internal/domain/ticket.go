package domain

import (
	"time"

	"github.com/Fluffaro/desk-cartel/pkg/util"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	// TicketStatusNoAgentAvailable is both the initial state and the state a
	// ticket regresses to when its agent is reclaimed. It is an expected
	// outcome, never an error.
	TicketStatusNoAgentAvailable TicketStatus = "NO_AGENT_AVAILABLE"
	TicketStatusAssigned         TicketStatus = "ASSIGNED"
	TicketStatusOngoing          TicketStatus = "ONGOING"
	TicketStatusCompleted        TicketStatus = "COMPLETED"
)

// ActiveStatuses are the states in which a ticket holds agent capacity.
func ActiveStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusAssigned, TicketStatusOngoing}
}

// Ticket is the unit of work flowing through the assignment engine.
//
// Legal transitions:
//
//	NO_AGENT_AVAILABLE -> ASSIGNED            (assignment engine)
//	ASSIGNED           -> ONGOING             (Start, agent must match)
//	ONGOING            -> COMPLETED           (Finish, agent must match; terminal)
//	ASSIGNED/ONGOING   -> NO_AGENT_AVAILABLE  (forced reassignment, scheduler only)
type Ticket struct {
	ID                   string
	OwnerID              string
	AssignedAgentID      *string
	PriorityID           string
	CategoryID           string
	Priority             *Priority
	Category             *Category
	Title                string
	Description          string
	Status               TicketStatus
	Points               int
	DateStarted          *time.Time
	ExpectedCompletionAt *time.Time
	CompletionDate       *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsHeldBy reports whether agentID currently holds the ticket.
func (t *Ticket) IsHeldBy(agentID string) bool {
	return t.AssignedAgentID != nil && *t.AssignedAgentID == agentID
}

// Start moves an ASSIGNED ticket to ONGOING. The acting agent must be the one
// the ticket is bound to. The expected completion time is frozen here from the
// priority's time limit; reconfiguring the priority later does not move it.
func (t *Ticket) Start(agentID string, now time.Time) error {
	if t.Status != TicketStatusAssigned {
		return util.NewInvalidTransition("ticket cannot be started", map[string]any{
			"ticket_id": t.ID,
			"status":    t.Status,
		})
	}
	if !t.IsHeldBy(agentID) {
		return util.NewInvalidTransition("ticket is not assigned to this agent", map[string]any{
			"ticket_id": t.ID,
			"agent_id":  agentID,
		})
	}
	t.Status = TicketStatusOngoing
	t.DateStarted = &now
	expected := now.Add(t.Priority.TimeLimit())
	t.ExpectedCompletionAt = &expected
	return nil
}

// Finish moves an ONGOING ticket to COMPLETED, storing the awarded points.
// COMPLETED is terminal; any further transition attempt is rejected.
func (t *Ticket) Finish(agentID string, now time.Time) error {
	if t.Status != TicketStatusOngoing {
		return util.NewInvalidTransition("ticket cannot be completed", map[string]any{
			"ticket_id": t.ID,
			"status":    t.Status,
		})
	}
	if !t.IsHeldBy(agentID) {
		return util.NewInvalidTransition("ticket is not assigned to this agent", map[string]any{
			"ticket_id": t.ID,
			"agent_id":  agentID,
		})
	}
	t.Status = TicketStatusCompleted
	t.CompletionDate = &now
	t.Points = CompletionPoints(t, now)
	return nil
}

// ClearAssignment regresses an ASSIGNED or ONGOING ticket back to the backlog.
// Only the reconciliation sweeps use this, and only after releasing the
// agent's workload.
func (t *Ticket) ClearAssignment() error {
	if t.Status != TicketStatusAssigned && t.Status != TicketStatusOngoing {
		return util.NewInvalidTransition("ticket assignment cannot be cleared", map[string]any{
			"ticket_id": t.ID,
			"status":    t.Status,
		})
	}
	t.AssignedAgentID = nil
	t.Status = TicketStatusNoAgentAvailable
	return nil
}

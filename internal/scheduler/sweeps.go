package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Fluffaro/desk-cartel/internal/config"
	"github.com/Fluffaro/desk-cartel/internal/domain"
	"github.com/Fluffaro/desk-cartel/internal/events"
	"github.com/Fluffaro/desk-cartel/internal/repository"
	"github.com/Fluffaro/desk-cartel/internal/service"
)

// Sweeps bundles the reconciliation passes over tickets and agents. Each pass
// processes entities independently: one bad entity is logged and skipped, the
// rest of the sweep continues.
type Sweeps struct {
	tickets     repository.TicketRepository
	agents      repository.AgentRepository
	assignments *service.AssignmentService
	dispatcher  events.Dispatcher
	deduper     WarningDeduper
	logger      *zap.Logger

	warningFraction float64
	now             func() time.Time
}

// SweepDependencies bundles collaborators for the sweeps.
type SweepDependencies struct {
	TicketRepo  repository.TicketRepository
	AgentRepo   repository.AgentRepository
	Assignments *service.AssignmentService
	Dispatcher  events.Dispatcher
	Deduper     WarningDeduper
	Logger      *zap.Logger

	// WarningFraction is how far into the start-to-deadline window a ticket
	// must be before a deadline warning fires. Defaults to 0.75.
	WarningFraction float64
}

// NewSweeps builds the sweep set.
func NewSweeps(deps SweepDependencies) *Sweeps {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fraction := deps.WarningFraction
	if fraction <= 0 || fraction >= 1 {
		fraction = 0.75
	}
	deduper := deps.Deduper
	if deduper == nil {
		deduper = NewMemoryDeduper()
	}
	return &Sweeps{
		tickets:         deps.TicketRepo,
		agents:          deps.AgentRepo,
		assignments:     deps.Assignments,
		dispatcher:      deps.Dispatcher,
		deduper:         deduper,
		logger:          logger,
		warningFraction: fraction,
		now:             time.Now,
	}
}

// Jobs returns the four sweeps wired to their configured intervals.
func (s *Sweeps) Jobs(cfg config.SchedulerConfig) []Job {
	return []Job{
		{Name: "pending_assignment_sweep", Interval: cfg.PendingSweepInterval(), Run: s.PendingAssignmentSweep},
		{Name: "inactive_agent_sweep", Interval: cfg.InactiveSweepInterval(), Run: s.InactiveAgentSweep},
		{Name: "validation_sweep", Interval: cfg.ValidationSweepInterval(), Run: s.ValidationSweep},
		{Name: "deadline_warning_sweep", Interval: cfg.DeadlineSweepInterval(), Run: s.DeadlineWarningSweep},
	}
}

// PendingAssignmentSweep retries assignment for every backlog ticket. Tickets
// that still find no agent stay put; that is expected, not an error.
func (s *Sweeps) PendingAssignmentSweep(ctx context.Context) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusNoAgentAvailable},
	})
	if err != nil {
		s.logger.Error("pending sweep: list backlog", zap.Error(err))
		return
	}

	for _, ticket := range tickets {
		if _, err := s.assignments.Assign(ctx, ticket.ID); err != nil {
			s.logger.Error("pending sweep: assign",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}
}

// InactiveAgentSweep reclaims tickets from every deactivated agent so their
// workload drains back to the pool.
func (s *Sweeps) InactiveAgentSweep(ctx context.Context) {
	agents, err := s.agents.List(ctx, repository.AgentFilter{Active: boolPtr(false)})
	if err != nil {
		s.logger.Error("inactive sweep: list agents", zap.Error(err))
		return
	}

	for _, agent := range agents {
		if err := s.assignments.ReassignFromAgent(ctx, agent.ID); err != nil {
			s.logger.Error("inactive sweep: reassign from agent",
				zap.String("agent_id", agent.ID),
				zap.Error(err))
		}
	}
}

// ValidationSweep walks every non-completed ticket that still carries an agent
// binding and reclaims any whose agent turned inactive. It closes the ordering
// gap where an agent is deactivated between inactive-agent sweeps.
func (s *Sweeps) ValidationSweep(ctx context.Context) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Statuses: domain.ActiveStatuses(),
		HasAgent: boolPtr(true),
	})
	if err != nil {
		s.logger.Error("validation sweep: list tickets", zap.Error(err))
		return
	}

	for _, ticket := range tickets {
		agent, err := s.agents.GetByID(ctx, *ticket.AssignedAgentID)
		if err != nil {
			s.logger.Error("validation sweep: load agent",
				zap.String("ticket_id", ticket.ID),
				zap.String("agent_id", *ticket.AssignedAgentID),
				zap.Error(err))
			continue
		}
		if agent.IsActive {
			continue
		}
		s.logger.Warn("validation sweep: ticket bound to inactive agent",
			zap.String("ticket_id", ticket.ID),
			zap.String("agent_id", agent.ID))
		if _, err := s.assignments.ReassignTicket(ctx, ticket.ID); err != nil {
			s.logger.Error("validation sweep: reassign",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}
}

// DeadlineWarningSweep emits one DeadlineApproaching event per ticket per
// warning window: once an ONGOING ticket is past the warning fraction of its
// start-to-deadline interval but not yet past the deadline.
func (s *Sweeps) DeadlineWarningSweep(ctx context.Context) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusOngoing},
	})
	if err != nil {
		s.logger.Error("deadline sweep: list ongoing", zap.Error(err))
		return
	}

	now := s.now()
	for _, ticket := range tickets {
		if ticket.DateStarted == nil || ticket.ExpectedCompletionAt == nil {
			continue
		}
		window := ticket.ExpectedCompletionAt.Sub(*ticket.DateStarted)
		if window <= 0 {
			continue
		}
		warnAt := ticket.DateStarted.Add(time.Duration(float64(window) * s.warningFraction))
		if now.Before(warnAt) || !now.Before(*ticket.ExpectedCompletionAt) {
			continue
		}

		first, err := s.deduper.MarkDeadlineWarned(ctx, ticket.ID, ticket.ExpectedCompletionAt.Sub(now))
		if err != nil {
			s.logger.Error("deadline sweep: dedup",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
			continue
		}
		if !first {
			continue
		}

		agentID := ""
		if ticket.AssignedAgentID != nil {
			agentID = *ticket.AssignedAgentID
		}
		s.logger.Warn("deadline approaching",
			zap.String("ticket_id", ticket.ID),
			zap.String("agent_id", agentID),
			zap.Timep("expected_completion_at", ticket.ExpectedCompletionAt))
		if s.dispatcher != nil {
			_ = s.dispatcher.Publish(ctx, events.Event{
				ID:        uuid.NewString(),
				Type:      events.EventDeadlineApproaching,
				TicketID:  ticket.ID,
				Timestamp: now,
				Payload: events.DeadlineApproachingPayload{
					AgentID:              agentID,
					ExpectedCompletionAt: *ticket.ExpectedCompletionAt,
				},
			})
		}
	}
}

func boolPtr(v bool) *bool {
	return &v
}

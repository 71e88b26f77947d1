package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Fluffaro/desk-cartel/internal/domain"
	"github.com/Fluffaro/desk-cartel/internal/events"
	"github.com/Fluffaro/desk-cartel/internal/observability"
	"github.com/Fluffaro/desk-cartel/internal/repository"
	apperrors "github.com/Fluffaro/desk-cartel/pkg/util"
)

// AssignmentService finds and binds the best agent for a ticket and releases
// capacity on completion or forced reassignment. It is the only code path
// allowed to mutate agent workload.
type AssignmentService struct {
	tickets    repository.TicketRepository
	agents     repository.AgentRepository
	tx         repository.TxRunner
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo repository.TicketRepository
	AgentRepo  repository.AgentRepository
	TxRunner   repository.TxRunner
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		agents:     deps.AgentRepo,
		tx:         deps.TxRunner,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
	}
}

// FindBestAgent selects the active agent with capacity for weight that has
// the lowest currentWorkload/totalCapacity ratio, spreading load
// proportionally to capacity rather than by raw headroom. Returns nil when no
// agent qualifies.
func (s *AssignmentService) FindBestAgent(ctx context.Context, weight int) (*domain.Agent, error) {
	candidates, err := s.agents.List(ctx, repository.AgentFilter{Active: ptrBool(true)})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var best *domain.Agent
	for i := range candidates {
		agent := &candidates[i]
		if !agent.HasCapacityFor(weight) {
			continue
		}
		if best == nil || agent.Utilization() < best.Utilization() {
			best = agent
		}
	}
	return best, nil
}

// Assign binds the best available agent to the ticket. It is idempotent: an
// already-assigned ticket is returned unchanged. When no agent qualifies the
// ticket lands in NO_AGENT_AVAILABLE, which is an expected outcome, not an
// error. Candidate selection and binding are not atomic across the listing
// query, so capacity is re-validated under the agent row lock before the
// workload is charged.
func (s *AssignmentService) Assign(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	var (
		out        *domain.Ticket
		boundAgent *domain.Agent
	)

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		ticket, err := s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return mapTicketErr(err, ticketID)
		}

		if ticket.AssignedAgentID != nil {
			out = ticket
			s.metrics.RecordAssignment(observability.AssignmentOutcomeIdempotent)
			return nil
		}

		weight := ticket.Priority.Weight
		candidate, err := s.FindBestAgent(ctx, weight)
		if err != nil {
			return err
		}
		if candidate == nil {
			out, err = s.markUnassigned(ctx, ticket)
			return err
		}

		agent, err := s.agents.GetByIDForUpdate(ctx, candidate.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if !agent.HasCapacityFor(weight) {
			// lost the race for this agent's capacity
			out, err = s.markUnassigned(ctx, ticket)
			return err
		}

		if err := agent.AddWorkload(weight); err != nil {
			return err
		}
		ticket.AssignedAgentID = &agent.ID
		ticket.Status = domain.TicketStatusAssigned
		if err := s.agents.Update(ctx, agent); err != nil {
			return apperrors.MapError(err)
		}
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		out = ticket
		boundAgent = agent
		return nil
	})
	if err != nil {
		return nil, err
	}

	if boundAgent != nil {
		s.metrics.RecordAssignment(observability.AssignmentOutcomeAssigned)
		s.logger.Info("ticket assigned",
			zap.String("ticket_id", out.ID),
			zap.String("agent_id", boundAgent.ID),
			zap.Int("weight", out.Priority.Weight),
			zap.Int("agent_workload", boundAgent.CurrentWorkload))
		s.publish(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: out.ID,
			Payload: events.TicketAssignedPayload{
				AgentID: boundAgent.ID,
				Weight:  out.Priority.Weight,
			},
		})
	}
	return out, nil
}

func (s *AssignmentService) markUnassigned(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	s.metrics.RecordAssignment(observability.AssignmentOutcomeNoAgent)
	if ticket.Status == domain.TicketStatusNoAgentAvailable {
		return ticket, nil
	}
	ticket.Status = domain.TicketStatusNoAgentAvailable
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Release frees the capacity the ticket holds on its bound agent and persists
// the agent. Must run inside the caller's transaction. The updated agent is
// returned so completion paths can credit it in the same transaction.
func (s *AssignmentService) Release(ctx context.Context, ticket *domain.Ticket) (*domain.Agent, error) {
	if ticket.AssignedAgentID == nil {
		return nil, nil
	}
	agent, err := s.agents.GetByIDForUpdate(ctx, *ticket.AssignedAgentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	agent.ReduceWorkload(ticket.Priority.Weight)
	if err := s.agents.Update(ctx, agent); err != nil {
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}

// ReassignTicket force-clears the ticket's binding, releases the workload,
// and immediately attempts a fresh assignment. Best effort: the retry may
// again find no candidate, leaving the ticket in NO_AGENT_AVAILABLE for a
// later pending sweep.
func (s *AssignmentService) ReassignTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	var cleared bool
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		ticket, err := s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return mapTicketErr(err, ticketID)
		}
		if ticket.AssignedAgentID == nil {
			return nil
		}
		if ticket.Status != domain.TicketStatusAssigned && ticket.Status != domain.TicketStatusOngoing {
			return nil
		}
		if _, err := s.Release(ctx, ticket); err != nil {
			return err
		}
		if err := ticket.ClearAssignment(); err != nil {
			return err
		}
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		cleared = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cleared {
		s.logger.Info("ticket reclaimed for reassignment", zap.String("ticket_id", ticketID))
	}
	return s.Assign(ctx, ticketID)
}

// ReassignFromAgent reclaims every ASSIGNED or ONGOING ticket bound to the
// agent. Each ticket is processed in its own transaction; a failure on one
// ticket is logged and does not abort the rest.
func (s *AssignmentService) ReassignFromAgent(ctx context.Context, agentID string) error {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		AssignedAgentID: &agentID,
		Statuses:        domain.ActiveStatuses(),
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	for _, ticket := range tickets {
		if _, err := s.ReassignTicket(ctx, ticket.ID); err != nil {
			s.logger.Error("reassign ticket from agent failed",
				zap.String("ticket_id", ticket.ID),
				zap.String("agent_id", agentID),
				zap.Error(err))
		}
	}
	return nil
}

func (s *AssignmentService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

func mapTicketErr(err error, ticketID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return apperrors.MapError(err)
}

func ptrBool(v bool) *bool {
	return &v
}

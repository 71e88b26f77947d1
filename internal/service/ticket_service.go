package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Fluffaro/desk-cartel/internal/domain"
	"github.com/Fluffaro/desk-cartel/internal/events"
	"github.com/Fluffaro/desk-cartel/internal/repository"
	apperrors "github.com/Fluffaro/desk-cartel/pkg/util"
)

// TicketService owns the ticket lifecycle: creation with immediate assignment,
// and the start/complete transitions of the state machine. All status changes
// run through here or through the assignment engine, never directly.
type TicketService struct {
	tickets     repository.TicketRepository
	agents      repository.AgentRepository
	priorities  repository.PriorityRepository
	categories  repository.CategoryRepository
	assignments *AssignmentService
	tx          repository.TxRunner
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	AgentRepo    repository.AgentRepository
	PriorityRepo repository.PriorityRepository
	CategoryRepo repository.CategoryRepository
	Assignments  *AssignmentService
	TxRunner     repository.TxRunner
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	PriorityID  string
	CategoryID  string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	OwnerID         *string
	AssignedAgentID *string
	Statuses        []domain.TicketStatus
	Limit           int
	Offset          int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		agents:      deps.AgentRepo,
		priorities:  deps.PriorityRepo,
		categories:  deps.CategoryRepo,
		assignments: deps.Assignments,
		tx:          deps.TxRunner,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateTicket creates a ticket for a user and immediately routes it through
// the assignment engine. If no agent has capacity the ticket stays in
// NO_AGENT_AVAILABLE for the pending sweep to retry.
func (s *TicketService) CreateTicket(ctx context.Context, ownerID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}

	priority, err := s.priorities.GetByID(ctx, input.PriorityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("priority", map[string]any{"priority_id": input.PriorityID})
		}
		return nil, apperrors.MapError(err)
	}
	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": input.CategoryID})
		}
		return nil, apperrors.MapError(err)
	}
	if !category.IsActive {
		return nil, apperrors.NewConflict("category inactive", map[string]any{"category_id": category.ID})
	}

	ticket := &domain.Ticket{
		OwnerID:     ownerID,
		PriorityID:  priority.ID,
		CategoryID:  category.ID,
		Priority:    priority,
		Category:    category,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusNoAgentAvailable,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			OwnerID:  ownerID,
			Priority: priority.Name,
			Category: category.Name,
			Title:    ticket.Title,
		},
	})

	return s.assignments.Assign(ctx, ticket.ID)
}

// StartTicket moves an ASSIGNED ticket to ONGOING. The acting agent must hold
// the ticket; anything else is an invalid transition, and the ticket is left
// untouched.
func (s *TicketService) StartTicket(ctx context.Context, ticketID, agentID string) (*domain.Ticket, error) {
	var out *domain.Ticket
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		ticket, err := s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return mapTicketErr(err, ticketID)
		}
		if err := ticket.Start(agentID, s.now()); err != nil {
			return err
		}
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		out = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket started",
		zap.String("ticket_id", out.ID),
		zap.String("agent_id", agentID),
		zap.Timep("expected_completion_at", out.ExpectedCompletionAt))
	return out, nil
}

// CompleteTicket moves an ONGOING ticket to COMPLETED: scores it, releases the
// agent's capacity, and credits the agent's totals, all in one transaction.
func (s *TicketService) CompleteTicket(ctx context.Context, ticketID, agentID string) (*domain.Ticket, error) {
	var out *domain.Ticket
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		ticket, err := s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return mapTicketErr(err, ticketID)
		}

		// Validate the transition before touching the agent so a rejected
		// complete leaves no partial workload change behind.
		if err := ticket.Finish(agentID, s.now()); err != nil {
			return err
		}
		agent, err := s.assignments.Release(ctx, ticket)
		if err != nil {
			return err
		}
		if agent != nil {
			agent.RecordCompletion(ticket.Points)
			if err := s.agents.Update(ctx, agent); err != nil {
				return apperrors.MapError(err)
			}
		}
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		out = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket completed",
		zap.String("ticket_id", out.ID),
		zap.String("agent_id", agentID),
		zap.Int("points", out.Points))
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCompleted,
		TicketID: out.ID,
		Payload: events.TicketCompletedPayload{
			AgentID: agentID,
			Points:  out.Points,
		},
	})
	return out, nil
}

// GetTicket fetches one ticket.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketErr(err, ticketID)
	}
	return ticket, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		OwnerID:         filter.OwnerID,
		AssignedAgentID: filter.AssignedAgentID,
		Statuses:        filter.Statuses,
		Limit:           filter.Limit,
		Offset:          filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	_ = s.dispatcher.Publish(ctx, event)
}

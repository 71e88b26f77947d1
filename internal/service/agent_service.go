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
	"github.com/Fluffaro/desk-cartel/internal/repository"
	apperrors "github.com/Fluffaro/desk-cartel/pkg/util"
)

// AgentService manages the agent roster: promotion of users to agents, level
// changes, and the active flag the reconciliation sweeps key off.
type AgentService struct {
	agents     repository.AgentRepository
	users      repository.UserRepository
	tx         repository.TxRunner
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AgentDependencies bundles repositories.
type AgentDependencies struct {
	AgentRepo  repository.AgentRepository
	UserRepo   repository.UserRepository
	TxRunner   repository.TxRunner
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAgentService creates the service.
func NewAgentService(deps AgentDependencies) *AgentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgentService{
		agents:     deps.AgentRepo,
		users:      deps.UserRepo,
		tx:         deps.TxRunner,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// PromoteUser turns a user into an agent at the given level. The agent starts
// active with an empty workload.
func (s *AgentService) PromoteUser(ctx context.Context, userID string, level domain.AgentLevel) (*domain.Agent, error) {
	if !level.Valid() {
		return nil, apperrors.NewValidationError("unknown agent level", map[string]any{"level": level})
	}

	var agent *domain.Agent
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
			}
			return apperrors.MapError(err)
		}
		if _, err := s.agents.GetByUserID(ctx, userID); err == nil {
			return apperrors.NewConflict("user is already an agent", map[string]any{"user_id": userID})
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.MapError(err)
		}

		agent = domain.NewAgent(userID, level)
		if err := s.agents.Create(ctx, agent); err != nil {
			return apperrors.MapError(err)
		}
		if user.Role == domain.UserRoleUser {
			user.Role = domain.UserRoleAgent
			if err := s.users.Update(ctx, user); err != nil {
				return apperrors.MapError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user promoted to agent",
		zap.String("user_id", userID),
		zap.String("agent_id", agent.ID),
		zap.String("level", string(agent.Level)))
	return agent, nil
}

// SetActive flips the agent's availability. Deactivation does not reclaim
// tickets synchronously; the inactive-agent sweep picks them up on its next
// pass.
func (s *AgentService) SetActive(ctx context.Context, agentID string, active bool) (*domain.Agent, error) {
	var agent *domain.Agent
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		agent, err = s.agents.GetByIDForUpdate(ctx, agentID)
		if err != nil {
			return mapAgentErr(err, agentID)
		}
		if agent.IsActive == active {
			return nil
		}
		agent.IsActive = active
		return apperrors.MapError(s.agents.Update(ctx, agent))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("agent availability changed",
		zap.String("agent_id", agentID),
		zap.Bool("active", active))
	if !active && s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventAgentDeactivated,
			Timestamp: time.Now(),
			Payload:   events.AgentDeactivatedPayload{AgentID: agentID},
		})
	}
	return agent, nil
}

// ChangeLevel moves the agent to a new tier. Capacity is recomputed from the
// new base, preserving any bonus; existing workload is untouched, so an agent
// demoted below their current load simply takes no new tickets until it
// drains.
func (s *AgentService) ChangeLevel(ctx context.Context, agentID string, level domain.AgentLevel) (*domain.Agent, error) {
	if !level.Valid() {
		return nil, apperrors.NewValidationError("unknown agent level", map[string]any{"level": level})
	}

	var agent *domain.Agent
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		agent, err = s.agents.GetByIDForUpdate(ctx, agentID)
		if err != nil {
			return mapAgentErr(err, agentID)
		}
		agent.ChangeLevel(level)
		return apperrors.MapError(s.agents.Update(ctx, agent))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("agent level changed",
		zap.String("agent_id", agentID),
		zap.String("level", string(level)),
		zap.Int("total_capacity", agent.TotalCapacity))
	return agent, nil
}

// GetAgent fetches one agent.
func (s *AgentService) GetAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, mapAgentErr(err, agentID)
	}
	return agent, nil
}

// GetAgentByUser fetches the agent record backing a user, if any.
func (s *AgentService) GetAgentByUser(ctx context.Context, userID string) (*domain.Agent, error) {
	agent, err := s.agents.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agent", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}

// ListAgents returns agents, optionally filtered by the active flag.
func (s *AgentService) ListAgents(ctx context.Context, active *bool) ([]domain.Agent, error) {
	agents, err := s.agents.List(ctx, repository.AgentFilter{Active: active})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agents, nil
}

func mapAgentErr(err error, agentID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
	}
	return apperrors.MapError(err)
}

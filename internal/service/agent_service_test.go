package service

import (
	"context"
	"testing"

	"github.com/Fluffaro/desk-cartel/internal/domain"
	"github.com/Fluffaro/desk-cartel/internal/events"
	apperrors "github.com/Fluffaro/desk-cartel/pkg/util"
)

func TestPromoteUser(t *testing.T) {
	env := newTestEnv(t)

	agent, err := env.agents.PromoteUser(context.Background(), env.owner.ID, domain.AgentLevelMid)
	if err != nil {
		t.Fatalf("PromoteUser: %v", err)
	}
	if agent.TotalCapacity != 20 || agent.CurrentWorkload != 0 {
		t.Errorf("capacity=%d workload=%d, want 20/0", agent.TotalCapacity, agent.CurrentWorkload)
	}
	if !agent.IsActive {
		t.Error("new agent should be active")
	}

	user, err := env.store.Users().GetByID(context.Background(), env.owner.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Role != domain.UserRoleAgent {
		t.Errorf("role = %s, want AGENT", user.Role)
	}
}

func TestPromoteUserTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.agents.PromoteUser(context.Background(), env.owner.ID, domain.AgentLevelJunior); err != nil {
		t.Fatalf("first promote: %v", err)
	}
	_, err := env.agents.PromoteUser(context.Background(), env.owner.ID, domain.AgentLevelSenior)
	domainErr := apperrors.ToDomainError(err)
	if domainErr == nil || domainErr.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestPromoteUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.agents.PromoteUser(context.Background(), "no-such-user", domain.AgentLevelJunior)
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestPromoteRejectsUnknownLevel(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.agents.PromoteUser(context.Background(), env.owner.ID, domain.AgentLevel("PRINCIPAL"))
	domainErr := apperrors.ToDomainError(err)
	if domainErr == nil || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestSetActiveEmitsDeactivationEvent(t *testing.T) {
	env := newTestEnv(t)
	agent := env.addAgent(t, "agent@example.com", domain.AgentLevelMid)

	var deactivated []string
	env.dispatcher.Subscribe(events.EventAgentDeactivated, func(_ context.Context, event events.Event) error {
		payload := event.Payload.(events.AgentDeactivatedPayload)
		deactivated = append(deactivated, payload.AgentID)
		return nil
	})

	if _, err := env.agents.SetActive(context.Background(), agent.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if len(deactivated) != 1 || deactivated[0] != agent.ID {
		t.Errorf("deactivation events = %v, want [%s]", deactivated, agent.ID)
	}

	// Reactivation must not emit.
	if _, err := env.agents.SetActive(context.Background(), agent.ID, true); err != nil {
		t.Fatalf("SetActive(true): %v", err)
	}
	if len(deactivated) != 1 {
		t.Errorf("reactivation emitted a deactivation event")
	}
}

func TestSetActiveDoesNotReclaimSynchronously(t *testing.T) {
	env := newTestEnv(t)
	agent := env.addAgent(t, "agent@example.com", domain.AgentLevelSenior)

	ticket := env.createTicket(t, env.priority.ID)
	if *ticket.AssignedAgentID != agent.ID {
		t.Fatalf("setup: ticket bound to %s", *ticket.AssignedAgentID)
	}

	if _, err := env.agents.SetActive(context.Background(), agent.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	// Reclaim is the sweep's job; deactivation alone leaves the binding.
	got, err := env.tickets.GetTicket(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("GetTicket: %v", err)
	}
	if got.AssignedAgentID == nil {
		t.Error("deactivation reclaimed the ticket synchronously")
	}
	if env.agentByID(t, agent.ID).CurrentWorkload != 30 {
		t.Error("deactivation changed workload synchronously")
	}
}

func TestChangeLevelKeepsWorkload(t *testing.T) {
	env := newTestEnv(t)
	agent := env.addAgent(t, "agent@example.com", domain.AgentLevelSenior)

	env.createTicket(t, env.priority.ID)
	if env.agentByID(t, agent.ID).CurrentWorkload != 30 {
		t.Fatal("setup: expected workload 30")
	}

	// Demotion below current load is allowed; the agent just takes no new
	// work until it drains.
	demoted, err := env.agents.ChangeLevel(context.Background(), agent.ID, domain.AgentLevelJunior)
	if err != nil {
		t.Fatalf("ChangeLevel: %v", err)
	}
	if demoted.TotalCapacity != 10 {
		t.Errorf("capacity = %d, want 10", demoted.TotalCapacity)
	}
	if demoted.CurrentWorkload != 30 {
		t.Errorf("workload = %d, want 30 untouched", demoted.CurrentWorkload)
	}
	if demoted.HasCapacityFor(1) {
		t.Error("overloaded agent should report no capacity")
	}
}

func TestListAgentsFiltersActive(t *testing.T) {
	env := newTestEnv(t)
	active := env.addAgent(t, "active@example.com", domain.AgentLevelMid)
	inactive := env.addAgent(t, "inactive@example.com", domain.AgentLevelMid)
	if _, err := env.agents.SetActive(context.Background(), inactive.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	onlyActive := true
	got, err := env.agents.ListAgents(context.Background(), &onlyActive)
	if err != nil {
		t.Fatalf("ListAgents: %v", err)
	}
	if len(got) != 1 || got[0].ID != active.ID {
		t.Errorf("agents = %v, want only %s", got, active.ID)
	}
}

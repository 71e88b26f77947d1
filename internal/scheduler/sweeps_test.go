package scheduler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Fluffaro/desk-cartel/internal/config"
	"github.com/Fluffaro/desk-cartel/internal/domain"
	"github.com/Fluffaro/desk-cartel/internal/events"
	"github.com/Fluffaro/desk-cartel/internal/repository/memory"
	"github.com/Fluffaro/desk-cartel/internal/service"
)

type sweepFixture struct {
	store      *memory.Store
	dispatcher events.Dispatcher
	sweeps     *Sweeps
	tickets    *service.TicketService

	priority domain.Priority
	category domain.Category
	owner    domain.User
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	assignments := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo: store.Tickets(),
		AgentRepo:  store.Agents(),
		TxRunner:   store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   store.Tickets(),
		AgentRepo:    store.Agents(),
		PriorityRepo: store.Priorities(),
		CategoryRepo: store.Categories(),
		Assignments:  assignments,
		TxRunner:     store,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	sweeps := NewSweeps(SweepDependencies{
		TicketRepo:  store.Tickets(),
		AgentRepo:   store.Agents(),
		Assignments: assignments,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	f := &sweepFixture{
		store:      store,
		dispatcher: dispatcher,
		sweeps:     sweeps,
		tickets:    tickets,
	}

	ctx := context.Background()
	f.priority = domain.Priority{Name: "HIGH", Weight: 30, TimeLimitHours: 24}
	if err := store.Priorities().Create(ctx, &f.priority); err != nil {
		t.Fatalf("seed priority: %v", err)
	}
	f.category = domain.Category{Name: "Technical", Points: 3, IsActive: true}
	if err := store.Categories().Create(ctx, &f.category); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	f.owner = domain.User{Name: "Owner", Email: "owner@example.com", Role: domain.UserRoleUser}
	if err := store.Users().Create(ctx, &f.owner); err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	return f
}

func (f *sweepFixture) addAgent(t *testing.T, email string, level domain.AgentLevel) *domain.Agent {
	t.Helper()
	ctx := context.Background()
	user := domain.User{Name: email, Email: email, Role: domain.UserRoleAgent}
	if err := f.store.Users().Create(ctx, &user); err != nil {
		t.Fatalf("seed agent user: %v", err)
	}
	agent := domain.NewAgent(user.ID, level)
	if err := f.store.Agents().Create(ctx, agent); err != nil {
		t.Fatalf("seed agent: %v", err)
	}
	return agent
}

func (f *sweepFixture) createTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(context.Background(), f.owner.ID, service.TicketCreateInput{
		Title:      "vpn down",
		PriorityID: f.priority.ID,
		CategoryID: f.category.ID,
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func (f *sweepFixture) deactivate(t *testing.T, agentID string) {
	t.Helper()
	agent, err := f.store.Agents().GetByID(context.Background(), agentID)
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	agent.IsActive = false
	if err := f.store.Agents().Update(context.Background(), agent); err != nil {
		t.Fatalf("deactivate agent: %v", err)
	}
}

func (f *sweepFixture) ticketByID(t *testing.T, id string) *domain.Ticket {
	t.Helper()
	ticket, err := f.store.Tickets().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get ticket: %v", err)
	}
	return ticket
}

func TestPendingAssignmentSweepDrainsBacklog(t *testing.T) {
	f := newSweepFixture(t)

	// No agents yet: the ticket lands in the backlog.
	ticket := f.createTicket(t)
	if ticket.Status != domain.TicketStatusNoAgentAvailable {
		t.Fatalf("status = %s, want NO_AGENT_AVAILABLE", ticket.Status)
	}

	agent := f.addAgent(t, "senior@example.com", domain.AgentLevelSenior)
	f.sweeps.PendingAssignmentSweep(context.Background())

	got := f.ticketByID(t, ticket.ID)
	if got.Status != domain.TicketStatusAssigned {
		t.Fatalf("status = %s, want ASSIGNED after sweep", got.Status)
	}
	if got.AssignedAgentID == nil || *got.AssignedAgentID != agent.ID {
		t.Errorf("assigned to %v, want %s", got.AssignedAgentID, agent.ID)
	}
}

func TestPendingAssignmentSweepLeavesBacklogWhenFull(t *testing.T) {
	f := newSweepFixture(t)
	f.addAgent(t, "junior@example.com", domain.AgentLevelJunior)

	ticket := f.createTicket(t) // weight 30 > junior capacity 10
	f.sweeps.PendingAssignmentSweep(context.Background())

	if got := f.ticketByID(t, ticket.ID); got.Status != domain.TicketStatusNoAgentAvailable {
		t.Errorf("status = %s, want NO_AGENT_AVAILABLE", got.Status)
	}
}

func TestInactiveAgentSweepReclaimsBothTickets(t *testing.T) {
	f := newSweepFixture(t)
	agent := f.addAgent(t, "senior@example.com", domain.AgentLevelSenior)

	first := f.createTicket(t)
	second := f.createTicket(t)
	f.deactivate(t, agent.ID)

	f.sweeps.InactiveAgentSweep(context.Background())

	reclaimed, err := f.store.Agents().GetByID(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if reclaimed.CurrentWorkload != 0 {
		t.Errorf("workload = %d, want 0 after reclaim", reclaimed.CurrentWorkload)
	}
	for _, id := range []string{first.ID, second.ID} {
		ticket := f.ticketByID(t, id)
		if ticket.Status != domain.TicketStatusNoAgentAvailable {
			t.Errorf("ticket %s status = %s, want NO_AGENT_AVAILABLE", id, ticket.Status)
		}
	}
}

func TestInactiveAgentSweepMovesWorkToActiveAgent(t *testing.T) {
	f := newSweepFixture(t)
	holder := f.addAgent(t, "holder@example.com", domain.AgentLevelSenior)

	ticket := f.createTicket(t)
	f.deactivate(t, holder.ID)
	fallback := f.addAgent(t, "fallback@example.com", domain.AgentLevelSenior)

	f.sweeps.InactiveAgentSweep(context.Background())

	got := f.ticketByID(t, ticket.ID)
	if got.AssignedAgentID == nil || *got.AssignedAgentID != fallback.ID {
		t.Fatalf("assigned to %v, want fallback %s", got.AssignedAgentID, fallback.ID)
	}
	if got.Status != domain.TicketStatusAssigned {
		t.Errorf("status = %s, want ASSIGNED", got.Status)
	}
}

func TestValidationSweepReclaimsInactiveBindings(t *testing.T) {
	f := newSweepFixture(t)
	agent := f.addAgent(t, "senior@example.com", domain.AgentLevelSenior)
	ticket := f.createTicket(t)

	f.deactivate(t, agent.ID)
	f.sweeps.ValidationSweep(context.Background())

	got := f.ticketByID(t, ticket.ID)
	if got.Status != domain.TicketStatusNoAgentAvailable {
		t.Errorf("status = %s, want NO_AGENT_AVAILABLE", got.Status)
	}
	reclaimed, err := f.store.Agents().GetByID(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if reclaimed.CurrentWorkload != 0 {
		t.Errorf("workload = %d, want 0", reclaimed.CurrentWorkload)
	}
}

func TestValidationSweepLeavesActiveBindings(t *testing.T) {
	f := newSweepFixture(t)
	agent := f.addAgent(t, "senior@example.com", domain.AgentLevelSenior)
	ticket := f.createTicket(t)

	f.sweeps.ValidationSweep(context.Background())

	got := f.ticketByID(t, ticket.ID)
	if got.AssignedAgentID == nil || *got.AssignedAgentID != agent.ID {
		t.Error("validation sweep disturbed a healthy binding")
	}
}

func TestDeadlineWarningSweep(t *testing.T) {
	f := newSweepFixture(t)
	agent := f.addAgent(t, "senior@example.com", domain.AgentLevelSenior)

	var warnings []events.DeadlineApproachingPayload
	f.dispatcher.Subscribe(events.EventDeadlineApproaching, func(_ context.Context, event events.Event) error {
		warnings = append(warnings, event.Payload.(events.DeadlineApproachingPayload))
		return nil
	})

	ticket := f.createTicket(t)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if _, err := f.tickets.StartTicket(context.Background(), ticket.ID, agent.ID); err != nil {
		t.Fatalf("StartTicket: %v", err)
	}
	// Pin the window so the sweep clock math is deterministic.
	pinned := f.ticketByID(t, ticket.ID)
	pinned.DateStarted = &start
	deadline := start.Add(24 * time.Hour)
	pinned.ExpectedCompletionAt = &deadline
	if err := f.store.Tickets().Update(context.Background(), pinned); err != nil {
		t.Fatalf("pin window: %v", err)
	}

	// Before the 75% mark: nothing fires.
	f.sweeps.now = func() time.Time { return start.Add(17 * time.Hour) }
	f.sweeps.DeadlineWarningSweep(context.Background())
	if len(warnings) != 0 {
		t.Fatalf("warning fired before the threshold: %v", warnings)
	}

	// Inside the warning window: exactly one warning, repeats deduplicated.
	f.sweeps.now = func() time.Time { return start.Add(19 * time.Hour) }
	f.sweeps.DeadlineWarningSweep(context.Background())
	f.sweeps.DeadlineWarningSweep(context.Background())
	if len(warnings) != 1 {
		t.Fatalf("warnings = %d, want exactly 1", len(warnings))
	}
	if warnings[0].AgentID != agent.ID {
		t.Errorf("warning agent = %s, want %s", warnings[0].AgentID, agent.ID)
	}
	if !warnings[0].ExpectedCompletionAt.Equal(deadline) {
		t.Errorf("warning deadline = %v, want %v", warnings[0].ExpectedCompletionAt, deadline)
	}
}

func TestDeadlineWarningSweepSkipsPastDeadline(t *testing.T) {
	f := newSweepFixture(t)
	agent := f.addAgent(t, "senior@example.com", domain.AgentLevelSenior)

	var fired int
	f.dispatcher.Subscribe(events.EventDeadlineApproaching, func(context.Context, events.Event) error {
		fired++
		return nil
	})

	ticket := f.createTicket(t)
	if _, err := f.tickets.StartTicket(context.Background(), ticket.ID, agent.ID); err != nil {
		t.Fatalf("StartTicket: %v", err)
	}
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	pinned := f.ticketByID(t, ticket.ID)
	pinned.DateStarted = &start
	deadline := start.Add(24 * time.Hour)
	pinned.ExpectedCompletionAt = &deadline
	if err := f.store.Tickets().Update(context.Background(), pinned); err != nil {
		t.Fatalf("pin window: %v", err)
	}

	// Already past the deadline: overdue is not "approaching".
	f.sweeps.now = func() time.Time { return deadline.Add(time.Hour) }
	f.sweeps.DeadlineWarningSweep(context.Background())
	if fired != 0 {
		t.Errorf("warning fired past the deadline")
	}
}

func sweepTestConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:                 true,
		PendingSweepSeconds:     60,
		InactiveSweepSeconds:    30,
		ValidationSweepMinutes:  5,
		DeadlineSweepMinutes:    15,
		DeadlineWarningFraction: 0.75,
	}
}

func TestJobsCarryConfiguredIntervals(t *testing.T) {
	f := newSweepFixture(t)
	jobs := f.sweeps.Jobs(sweepTestConfig())

	want := map[string]time.Duration{
		"pending_assignment_sweep": 60 * time.Second,
		"inactive_agent_sweep":     30 * time.Second,
		"validation_sweep":         5 * time.Minute,
		"deadline_warning_sweep":   15 * time.Minute,
	}
	if len(jobs) != len(want) {
		t.Fatalf("jobs = %d, want %d", len(jobs), len(want))
	}
	for _, job := range jobs {
		interval, ok := want[job.Name]
		if !ok {
			t.Errorf("unexpected job %q", job.Name)
			continue
		}
		if job.Interval != interval {
			t.Errorf("job %q interval = %v, want %v", job.Name, job.Interval, interval)
		}
		if job.Run == nil {
			t.Errorf("job %q has no run function", job.Name)
		}
	}
}

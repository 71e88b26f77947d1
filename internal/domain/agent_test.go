package domain

import (
	"testing"

	apperrors "github.com/Fluffaro/desk-cartel/pkg/util"
)

func TestBaseCapacityPerLevel(t *testing.T) {
	cases := []struct {
		level AgentLevel
		want  int
	}{
		{AgentLevelJunior, 10},
		{AgentLevelMid, 20},
		{AgentLevelSenior, 50},
		{AgentLevel("UNKNOWN"), 0},
	}
	for _, tc := range cases {
		if got := tc.level.BaseCapacity(); got != tc.want {
			t.Errorf("BaseCapacity(%s) = %d, want %d", tc.level, got, tc.want)
		}
	}
}

func TestHasCapacityFor(t *testing.T) {
	agent := NewAgent("user-1", AgentLevelJunior)

	if !agent.HasCapacityFor(10) {
		t.Error("junior agent should take a weight equal to its capacity")
	}
	if agent.HasCapacityFor(11) {
		t.Error("junior agent should not take weight above its capacity")
	}

	agent.IsActive = false
	if agent.HasCapacityFor(1) {
		t.Error("inactive agent should never have capacity")
	}
}

func TestAddWorkloadRejectsOverflow(t *testing.T) {
	agent := NewAgent("user-1", AgentLevelJunior)

	if err := agent.AddWorkload(8); err != nil {
		t.Fatalf("AddWorkload(8): %v", err)
	}
	err := agent.AddWorkload(3)
	if err == nil {
		t.Fatal("expected invariant violation when exceeding capacity")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "INVARIANT_VIOLATION" {
		t.Fatalf("error code = %s, want INVARIANT_VIOLATION", domainErr.Code)
	}
	if agent.CurrentWorkload != 8 {
		t.Errorf("workload mutated on rejected add: %d", agent.CurrentWorkload)
	}
}

func TestReduceWorkloadClampsAtZero(t *testing.T) {
	agent := NewAgent("user-1", AgentLevelMid)
	agent.CurrentWorkload = 5

	agent.ReduceWorkload(20)
	if agent.CurrentWorkload != 0 {
		t.Errorf("workload = %d, want 0", agent.CurrentWorkload)
	}
}

func TestChangeLevelPreservesBonusCapacity(t *testing.T) {
	agent := NewAgent("user-1", AgentLevelJunior)
	agent.TotalCapacity = 15 // 5 bonus units on top of the junior base

	agent.ChangeLevel(AgentLevelSenior)

	if agent.BaseCapacity != 50 {
		t.Errorf("base capacity = %d, want 50", agent.BaseCapacity)
	}
	if agent.TotalCapacity != 55 {
		t.Errorf("total capacity = %d, want 55", agent.TotalCapacity)
	}
	if agent.BonusCapacity() != 5 {
		t.Errorf("bonus capacity = %d, want 5", agent.BonusCapacity())
	}
}

func TestUtilization(t *testing.T) {
	agent := NewAgent("user-1", AgentLevelSenior)
	agent.CurrentWorkload = 25

	if got := agent.Utilization(); got != 0.5 {
		t.Errorf("utilization = %f, want 0.5", got)
	}

	zero := &Agent{TotalCapacity: 0}
	if got := zero.Utilization(); got != 1 {
		t.Errorf("zero-capacity utilization = %f, want 1", got)
	}
}

func TestRecordCompletion(t *testing.T) {
	agent := NewAgent("user-1", AgentLevelMid)
	agent.RecordCompletion(90)
	agent.RecordCompletion(45)

	if agent.CompletedTickets != 2 {
		t.Errorf("completed tickets = %d, want 2", agent.CompletedTickets)
	}
	if agent.TotalPerformancePoints != 135 {
		t.Errorf("performance points = %d, want 135", agent.TotalPerformancePoints)
	}
}

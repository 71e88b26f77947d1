package domain

import (
	"time"

	"github.com/Fluffaro/desk-cartel/pkg/util"
)

// AgentLevel tiers agents by experience, each tier carrying a fixed base
// capacity of workload units.
type AgentLevel string

const (
	AgentLevelJunior AgentLevel = "JUNIOR"
	AgentLevelMid    AgentLevel = "MID"
	AgentLevelSenior AgentLevel = "SENIOR"
)

// BaseCapacity returns the workload units an agent of this level starts with.
func (l AgentLevel) BaseCapacity() int {
	switch l {
	case AgentLevelJunior:
		return 10
	case AgentLevelMid:
		return 20
	case AgentLevelSenior:
		return 50
	}
	return 0
}

// Valid reports whether l is a known level.
func (l AgentLevel) Valid() bool {
	return l == AgentLevelJunior || l == AgentLevelMid || l == AgentLevelSenior
}

// Agent models one staff member's capacity pool. CurrentWorkload is the sum of
// priority weights of all tickets currently ASSIGNED or ONGOING for the agent.
// Invariant: 0 <= CurrentWorkload <= TotalCapacity after every assignment or
// completion transaction. Workload is mutated only through the assignment and
// lifecycle services, never directly.
type Agent struct {
	ID                     string
	UserID                 string
	Level                  AgentLevel
	BaseCapacity           int
	TotalCapacity          int
	CurrentWorkload        int
	IsActive               bool
	CompletedTickets       int
	TotalPerformancePoints int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// NewAgent builds an active agent at the given level with no workload.
func NewAgent(userID string, level AgentLevel) *Agent {
	base := level.BaseCapacity()
	return &Agent{
		UserID:        userID,
		Level:         level,
		BaseCapacity:  base,
		TotalCapacity: base,
		IsActive:      true,
	}
}

// BonusCapacity is any capacity granted beyond the level's base. It survives
// level changes.
func (a *Agent) BonusCapacity() int {
	return a.TotalCapacity - a.BaseCapacity
}

// HasCapacityFor reports whether the agent can take on weight more units.
// Inactive agents never have capacity.
func (a *Agent) HasCapacityFor(weight int) bool {
	return a.IsActive && a.CurrentWorkload+weight <= a.TotalCapacity
}

// AddWorkload charges weight units against the agent's capacity. Exceeding
// TotalCapacity is an invariant violation: callers must check HasCapacityFor
// inside the same transaction before calling.
func (a *Agent) AddWorkload(weight int) error {
	if a.CurrentWorkload+weight > a.TotalCapacity {
		return util.NewInvariantViolation("workload would exceed capacity", map[string]any{
			"agent_id":         a.ID,
			"current_workload": a.CurrentWorkload,
			"weight":           weight,
			"total_capacity":   a.TotalCapacity,
		})
	}
	a.CurrentWorkload += weight
	return nil
}

// ReduceWorkload releases weight units, clamped at zero so a double release
// cannot drive workload negative.
func (a *Agent) ReduceWorkload(weight int) {
	a.CurrentWorkload -= weight
	if a.CurrentWorkload < 0 {
		a.CurrentWorkload = 0
	}
}

// ChangeLevel moves the agent to a new tier, recomputing capacity. Bonus
// capacity is additive and preserved across the change.
func (a *Agent) ChangeLevel(level AgentLevel) {
	bonus := a.BonusCapacity()
	a.Level = level
	a.BaseCapacity = level.BaseCapacity()
	a.TotalCapacity = a.BaseCapacity + bonus
}

// Utilization is the agent's relative load, used to spread work proportionally
// to capacity rather than by raw headroom.
func (a *Agent) Utilization() float64 {
	if a.TotalCapacity <= 0 {
		return 1
	}
	return float64(a.CurrentWorkload) / float64(a.TotalCapacity)
}

// RecordCompletion credits a finished ticket to the agent's running totals.
func (a *Agent) RecordCompletion(points int) {
	a.CompletedTickets++
	a.TotalPerformancePoints += points
}

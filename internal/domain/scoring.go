package domain

import (
	"math"
	"time"
)

// Scoring constants for completion points.
const (
	// minActualHours floors measured work time so near-zero durations cannot
	// game the efficiency bonus.
	minActualHours = 0.5
	// maxEfficiencyBonus caps the early-completion bonus at +50%.
	maxEfficiencyBonus = 0.5
	// latenessPenaltyRate scales the penalty for finishing late.
	latenessPenaltyRate = 0.2
	// minEfficiency floors the lateness penalty at -20%.
	minEfficiency = 0.8
)

// CompletionPoints computes the points awarded when a ticket completes,
// rewarding speed and lightly penalizing lateness. Pure function over its
// inputs; expected hours come from the window frozen at start time
// (DateStarted to ExpectedCompletionAt), not from the priority's current
// configuration.
//
// If the ticket was never started, the base points are returned unscaled.
// That is a degraded-input fallback, not the common path.
func CompletionPoints(t *Ticket, now time.Time) int {
	base := t.Priority.Weight * t.Category.Points
	if t.DateStarted == nil || t.ExpectedCompletionAt == nil {
		return base
	}

	expected := t.ExpectedCompletionAt.Sub(*t.DateStarted).Hours()
	if expected <= 0 {
		return base
	}
	actual := now.Sub(*t.DateStarted).Hours()
	if actual < minActualHours {
		actual = minActualHours
	}

	var efficiency float64
	if actual <= expected {
		bonus := (expected - actual) / expected
		if bonus > maxEfficiencyBonus {
			bonus = maxEfficiencyBonus
		}
		efficiency = 1.0 + bonus
	} else {
		efficiency = 1.0 - ((actual-expected)/expected)*latenessPenaltyRate
		if efficiency < minEfficiency {
			efficiency = minEfficiency
		}
	}

	return int(math.Round(float64(base) * efficiency))
}

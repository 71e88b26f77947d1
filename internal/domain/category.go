package domain

import "time"

// Category is administrator-managed configuration grouping tickets by topic.
// Points acts as a value multiplier when scoring completed tickets.
type Category struct {
	ID          string
	Name        string
	Description string
	Points      int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

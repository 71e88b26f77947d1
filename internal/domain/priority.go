package domain

import "time"

// Priority is administrator-managed configuration: the workload cost a ticket
// imposes on its agent and the expected hours to complete it. Referenced by
// tickets, never owned by them.
type Priority struct {
	ID             string
	Name           string
	Weight         int
	TimeLimitHours int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TimeLimit returns the expected completion window as a duration.
func (p *Priority) TimeLimit() time.Duration {
	return time.Duration(p.TimeLimitHours) * time.Hour
}

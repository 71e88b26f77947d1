package domain

import "time"

// UserRole enumerates what a user may do in the system.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAgent UserRole = "AGENT"
	UserRoleAdmin UserRole = "ADMIN"
)

// User is the domain model for people who open tickets. A user promoted to
// AGENT gains an Agent record holding their capacity pool.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package domain

import "time"

// UserRole determines what a user may do across the system.
type UserRole string

const (
	RoleClient UserRole = "client"
	RoleAgent  UserRole = "agent"
	RoleAdmin  UserRole = "admin"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleClient, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role carries agent-level access or above.
func (r UserRole) IsStaff() bool {
	return r == RoleAgent || r == RoleAdmin
}

// User is the identity record for clients, agents and admins alike.
// Role is fixed at registration; there is no promotion flow.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

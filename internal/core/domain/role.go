package domain

import "time"

// Role is a named grant in the catalog. Code is the stable machine key
// used in authorization checks (e.g. "admin", "staff") and is matched
// exactly, case-sensitive.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleAssignment links one user to one role. At most one assignment
// exists per (user, role) pair; revocation flips IsActive instead of
// deleting so the grant history stays auditable. A re-grant reactivates
// the existing row.
type RoleAssignment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RoleID    string    `json:"role_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// GrantedRole pairs an active assignment with its role definition, as
// returned by the per-user role listing.
type GrantedRole struct {
	Role       Role           `json:"role"`
	Assignment RoleAssignment `json:"assignment"`
}

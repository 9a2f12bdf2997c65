package domain

import "time"

// UserStatus enumerates possible account states.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusLocked   UserStatus = "locked"
)

// User mirrors the persisted representation in the users table.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Department   string
	Status       UserStatus
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRole links a user with a role, recording who granted it and when.
type UserRole struct {
	UserID     string
	Role       Role
	AssignedAt time.Time
	AssignedBy string
}

// Actor identifies the authenticated caller of a guarded operation.
type Actor struct {
	ID         string
	Email      string
	Department string
	Roles      []Role
}

// Can reports whether the actor holds the permission.
func (a Actor) Can(perm Permission) bool {
	return HasPermission(a.Roles, perm)
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return HasRole(a.Roles, RoleAdmin)
}

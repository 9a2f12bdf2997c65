package domain

import "time"

// StatusChangedEvent represents the payload for intl.<entity>.status.changed
// messages.
type StatusChangedEvent struct {
	EventID    string
	Entity     string
	EntityID   string
	OwnerID    string
	FromStatus string
	ToStatus   string
	Comment    string
	ChangedBy  string
	ChangedAt  time.Time
	Metadata   map[string]any
}

// RolesAssignedEvent represents the payload for intl.user.roles.assigned
// messages.
type RolesAssignedEvent struct {
	EventID    string
	UserID     string
	RolesAdded []Role
	AssignedBy string
	AssignedAt time.Time
}

// RolesRevokedEvent represents the payload for intl.user.roles.revoked
// messages.
type RolesRevokedEvent struct {
	EventID      string
	UserID       string
	RolesRemoved []Role
	RevokedBy    string
	RevokedAt    time.Time
	Reason       string
}

// UserCreatedEvent represents the payload for intl.user.created messages.
type UserCreatedEvent struct {
	EventID    string
	UserID     string
	Email      string
	Department string
	CreatedBy  string
	CreatedAt  time.Time
}

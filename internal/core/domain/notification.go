package domain

import "time"

// Notification is an in-app message shown to a user, typically produced as
// a best-effort side effect of a status transition.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Entity    string
	EntityID  string
	IsRead    bool
	CreatedAt time.Time
}

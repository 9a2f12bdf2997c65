package domain

import "time"

// VisitorStatus enumerates the lifecycle states of an international-visitor
// registration.
type VisitorStatus string

const (
	VisitorStatusPending     VisitorStatus = "pending"
	VisitorStatusUnderReview VisitorStatus = "under_review"
	VisitorStatusApproved    VisitorStatus = "approved"
	VisitorStatusRejected    VisitorStatus = "rejected"
	VisitorStatusCompleted   VisitorStatus = "completed"
)

var visitorTransitions = map[VisitorStatus][]VisitorStatus{
	VisitorStatusPending:     {VisitorStatusUnderReview, VisitorStatusRejected},
	VisitorStatusUnderReview: {VisitorStatusApproved, VisitorStatusRejected},
	VisitorStatusApproved:    {VisitorStatusCompleted},
}

// CanTransitionTo reports whether the status change from s to next is legal.
func (s VisitorStatus) CanTransitionTo(next VisitorStatus) bool {
	for _, allowed := range visitorTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable reports whether the registration may still be modified by its owner.
func (s VisitorStatus) Editable() bool {
	return s == VisitorStatusPending
}

// Deletable reports whether the registration may be removed.
func (s VisitorStatus) Deletable() bool {
	return s == VisitorStatusPending || s == VisitorStatusRejected
}

// Terminal reports whether the status has no outgoing transitions.
func (s VisitorStatus) Terminal() bool {
	return len(visitorTransitions[s]) == 0
}

// VisitorRegistration records a planned visit by an international guest.
// OwnerID references the hosting staff member.
type VisitorRegistration struct {
	ID            string
	OwnerID       string
	VisitorName   string
	VisitorEmail  string
	Country       string
	Institution   string
	Purpose       string
	ArrivalDate   time.Time
	DepartureDate time.Time
	Status        VisitorStatus
	ReviewerID    *string
	ReviewedAt    *time.Time
	ApprovedAt    *time.Time
	RejectedAt    *time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

package domain

import "time"

// MOUStatus enumerates the lifecycle states of a memorandum of understanding.
type MOUStatus string

const (
	MOUStatusDraft         MOUStatus = "draft"
	MOUStatusProposed      MOUStatus = "proposed"
	MOUStatusUnderReview   MOUStatus = "under_review"
	MOUStatusNeedsRevision MOUStatus = "needs_revision"
	MOUStatusApproved      MOUStatus = "approved"
	MOUStatusSigned        MOUStatus = "signed"
	MOUStatusRejected      MOUStatus = "rejected"
	MOUStatusExpired       MOUStatus = "expired"
)

var mouTransitions = map[MOUStatus][]MOUStatus{
	MOUStatusDraft:         {MOUStatusProposed},
	MOUStatusProposed:      {MOUStatusUnderReview, MOUStatusNeedsRevision, MOUStatusRejected},
	MOUStatusUnderReview:   {MOUStatusNeedsRevision, MOUStatusApproved, MOUStatusRejected},
	MOUStatusNeedsRevision: {MOUStatusProposed},
	MOUStatusApproved:      {MOUStatusSigned},
	MOUStatusSigned:        {MOUStatusExpired},
}

// CanTransitionTo reports whether the status change from s to next is legal.
func (s MOUStatus) CanTransitionTo(next MOUStatus) bool {
	for _, allowed := range mouTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable reports whether the memorandum may still be modified by its owner.
func (s MOUStatus) Editable() bool {
	return s == MOUStatusDraft || s == MOUStatusNeedsRevision
}

// Deletable reports whether the memorandum may be removed.
func (s MOUStatus) Deletable() bool {
	return s == MOUStatusDraft || s == MOUStatusRejected
}

// Terminal reports whether the status has no outgoing transitions.
func (s MOUStatus) Terminal() bool {
	return len(mouTransitions[s]) == 0
}

// MOU is a cooperation agreement between the university and a partner
// organization.
type MOU struct {
	ID             string
	OwnerID        string
	PartnerName    string
	PartnerCountry string
	Title          string
	Summary        string
	StartDate      *time.Time
	EndDate        *time.Time
	Status         MOUStatus
	ReviewerID     *string
	RevisionCount  int
	ProposedAt     *time.Time
	ReviewedAt     *time.Time
	ApprovedAt     *time.Time
	SignedAt       *time.Time
	RejectedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MOUHistory is an immutable record of one status transition.
type MOUHistory struct {
	ID         string
	MOUID      string
	FromStatus MOUStatus
	ToStatus   MOUStatus
	Comment    string
	ChangedBy  string
	ChangedAt  time.Time
}

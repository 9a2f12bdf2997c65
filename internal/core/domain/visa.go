package domain

import "time"

// VisaStatus enumerates the lifecycle states of a visa-extension application.
type VisaStatus string

const (
	VisaStatusDraft              VisaStatus = "draft"
	VisaStatusSubmitted          VisaStatus = "submitted"
	VisaStatusUnderReview        VisaStatus = "under_review"
	VisaStatusAdditionalRequired VisaStatus = "additional_required"
	VisaStatusPending            VisaStatus = "pending"
	VisaStatusApproved           VisaStatus = "approved"
	VisaStatusRejected           VisaStatus = "rejected"
	VisaStatusExtended           VisaStatus = "extended"
)

// visaTransitions is the closed adjacency list of legal status changes.
// Any pair not listed is rejected.
var visaTransitions = map[VisaStatus][]VisaStatus{
	VisaStatusDraft:              {VisaStatusSubmitted},
	VisaStatusSubmitted:          {VisaStatusUnderReview, VisaStatusAdditionalRequired, VisaStatusRejected},
	VisaStatusUnderReview:        {VisaStatusPending, VisaStatusAdditionalRequired, VisaStatusApproved, VisaStatusRejected},
	VisaStatusAdditionalRequired: {VisaStatusSubmitted},
	VisaStatusPending:            {VisaStatusApproved, VisaStatusRejected, VisaStatusExtended},
	VisaStatusApproved:           {VisaStatusExtended},
}

// CanTransitionTo reports whether the status change from s to next is legal.
func (s VisaStatus) CanTransitionTo(next VisaStatus) bool {
	for _, allowed := range visaTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable reports whether the application may still be modified by its owner.
func (s VisaStatus) Editable() bool {
	return s == VisaStatusDraft || s == VisaStatusAdditionalRequired
}

// Deletable reports whether the application may be removed.
func (s VisaStatus) Deletable() bool {
	return s == VisaStatusDraft || s == VisaStatusRejected
}

// Terminal reports whether the status has no outgoing transitions.
func (s VisaStatus) Terminal() bool {
	return len(visaTransitions[s]) == 0
}

// VisaExtension is a request to extend an international student's or
// employee's visa.
type VisaExtension struct {
	ID               string
	OwnerID          string
	PassportNumber   string
	Country          string
	CurrentVisaExpiry time.Time
	RequestedUntil   time.Time
	Reason           string
	Status           VisaStatus
	ReviewerID       *string
	RevisionCount    int
	SubmittedAt      *time.Time
	ReviewedAt       *time.Time
	ApprovedAt       *time.Time
	RejectedAt       *time.Time
	ExtendedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// VisaExtensionHistory is an immutable record of one status transition.
type VisaExtensionHistory struct {
	ID              string
	VisaExtensionID string
	FromStatus      VisaStatus
	ToStatus        VisaStatus
	Comment         string
	ChangedBy       string
	ChangedAt       time.Time
}

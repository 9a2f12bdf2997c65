package domain

import "time"

// TranslationStatus enumerates the lifecycle states of a translation request.
type TranslationStatus string

const (
	TranslationStatusPending    TranslationStatus = "pending"
	TranslationStatusProcessing TranslationStatus = "processing"
	TranslationStatusCompleted  TranslationStatus = "completed"
	TranslationStatusRejected   TranslationStatus = "rejected"
)

var translationTransitions = map[TranslationStatus][]TranslationStatus{
	TranslationStatusPending:    {TranslationStatusProcessing, TranslationStatusRejected},
	TranslationStatusProcessing: {TranslationStatusCompleted, TranslationStatusRejected},
}

// CanTransitionTo reports whether the status change from s to next is legal.
func (s TranslationStatus) CanTransitionTo(next TranslationStatus) bool {
	for _, allowed := range translationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable reports whether the request may still be modified by its owner.
func (s TranslationStatus) Editable() bool {
	return s == TranslationStatusPending || s == TranslationStatusProcessing
}

// Deletable reports whether the request may be removed.
func (s TranslationStatus) Deletable() bool {
	return s == TranslationStatusPending || s == TranslationStatusRejected
}

// Terminal reports whether the status has no outgoing transitions.
func (s TranslationStatus) Terminal() bool {
	return len(translationTransitions[s]) == 0
}

// TranslationRequest asks the office to translate an official document.
type TranslationRequest struct {
	ID             string
	OwnerID        string
	SourceLanguage string
	TargetLanguage string
	DocumentTitle  string
	PageCount      int
	Notes          string
	Status         TranslationStatus
	TranslatorID   *string
	ProcessedAt    *time.Time
	CompletedAt    *time.Time
	RejectedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

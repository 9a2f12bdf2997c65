package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/infra/logger"
	"github.com/campusio/intl-office/internal/infra/telemetry"
)

const visaEntity = "visa_extension"

// VisaService manages visa-extension applications through their review
// workflow.
type VisaService struct {
	visas     port.VisaExtensionRepository
	documents port.DocumentRepository
	events    port.EventPublisher
	notifier  *Notifier
	metrics   *telemetry.Provider
	now       func() time.Time
}

// NewVisaService constructs a VisaService. Events, notifier and metrics may
// be nil.
func NewVisaService(
	visas port.VisaExtensionRepository,
	documents port.DocumentRepository,
	events port.EventPublisher,
	notifier *Notifier,
	metrics *telemetry.Provider,
) *VisaService {
	return &VisaService{
		visas:     visas,
		documents: documents,
		events:    events,
		notifier:  notifier,
		metrics:   metrics,
		now:       time.Now,
	}
}

// WithClock overrides the time source (testing).
func (s *VisaService) WithClock(now func() time.Time) *VisaService {
	if now != nil {
		s.now = now
	}
	return s
}

// VisaInput carries the applicant-editable fields.
type VisaInput struct {
	PassportNumber    string
	Country           string
	CurrentVisaExpiry time.Time
	RequestedUntil    time.Time
	Reason            string
}

func (in VisaInput) validate() error {
	if strings.TrimSpace(in.PassportNumber) == "" {
		return fmt.Errorf("%w: passport number is required", ErrValidation)
	}
	if strings.TrimSpace(in.Country) == "" {
		return fmt.Errorf("%w: country is required", ErrValidation)
	}
	if in.CurrentVisaExpiry.IsZero() || in.RequestedUntil.IsZero() {
		return fmt.Errorf("%w: visa expiry and requested date are required", ErrValidation)
	}
	if !in.RequestedUntil.After(in.CurrentVisaExpiry) {
		return fmt.Errorf("%w: requested date must be after the current expiry", ErrValidation)
	}
	return nil
}

// Create opens a new application in draft.
func (s *VisaService) Create(ctx context.Context, actor domain.Actor, input VisaInput) (*domain.VisaExtension, error) {
	if !actor.Can(domain.PermVisaCreate) {
		return nil, ErrPermissionDenied
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	visa := domain.VisaExtension{
		ID:                uuid.NewString(),
		OwnerID:           actor.ID,
		PassportNumber:    strings.TrimSpace(input.PassportNumber),
		Country:           strings.TrimSpace(input.Country),
		CurrentVisaExpiry: input.CurrentVisaExpiry,
		RequestedUntil:    input.RequestedUntil,
		Reason:            strings.TrimSpace(input.Reason),
		Status:            domain.VisaStatusDraft,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.visas.Create(ctx, visa); err != nil {
		return nil, fmt.Errorf("create visa extension: %w", err)
	}

	return &visa, nil
}

// Get retrieves an application. Owners always see their own; anyone else
// needs review permission.
func (s *VisaService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.VisaExtension, error) {
	if !actor.Can(domain.PermVisaRead) {
		return nil, ErrPermissionDenied
	}

	visa, err := s.visas.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get visa extension: %w", err)
	}

	if visa.OwnerID != actor.ID && !actor.Can(domain.PermVisaReview) {
		return nil, ErrNotOwner
	}

	return visa, nil
}

// List enumerates applications. Callers without review permission only see
// their own rows regardless of the filter.
func (s *VisaService) List(ctx context.Context, actor domain.Actor, filter port.VisaFilter) ([]domain.VisaExtension, int, error) {
	if !actor.Can(domain.PermVisaRead) {
		return nil, 0, ErrPermissionDenied
	}

	if !actor.Can(domain.PermVisaReview) {
		filter.OwnerID = actor.ID
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	visas, err := s.visas.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list visa extensions: %w", err)
	}

	total, err := s.visas.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count visa extensions: %w", err)
	}

	return visas, total, nil
}

// Update modifies an application while its status still allows edits. When
// the reviewer had requested additional materials, a successful edit
// resubmits the application and bumps the revision counter.
func (s *VisaService) Update(ctx context.Context, actor domain.Actor, id string, input VisaInput) (*domain.VisaExtension, error) {
	if !actor.Can(domain.PermVisaUpdate) {
		return nil, ErrPermissionDenied
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	visa, err := s.visas.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get visa extension: %w", err)
	}

	if visa.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrNotOwner
	}
	if !visa.Status.Editable() {
		return nil, ErrNotEditable
	}

	now := s.now().UTC()
	visa.PassportNumber = strings.TrimSpace(input.PassportNumber)
	visa.Country = strings.TrimSpace(input.Country)
	visa.CurrentVisaExpiry = input.CurrentVisaExpiry
	visa.RequestedUntil = input.RequestedUntil
	visa.Reason = strings.TrimSpace(input.Reason)
	visa.UpdatedAt = now

	if visa.Status == domain.VisaStatusAdditionalRequired {
		from := visa.Status
		visa.Status = domain.VisaStatusSubmitted
		visa.RevisionCount++
		visa.SubmittedAt = &now

		history := s.historyRecord(visa.ID, from, visa.Status, "revised after additional materials requested", actor.ID, now)
		if err := s.visas.UpdateStatus(ctx, *visa, history); err != nil {
			return nil, fmt.Errorf("resubmit visa extension: %w", err)
		}

		s.afterTransition(ctx, *visa, from, "revised submission", actor.ID, now)
		return visa, nil
	}

	if err := s.visas.Update(ctx, *visa); err != nil {
		return nil, fmt.Errorf("update visa extension: %w", err)
	}

	return visa, nil
}

// Submit moves a draft into the review queue. Only the owner may submit, and
// at least one required document must already be attached.
func (s *VisaService) Submit(ctx context.Context, actor domain.Actor, id string) (*domain.VisaExtension, error) {
	visa, err := s.visas.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get visa extension: %w", err)
	}

	if visa.OwnerID != actor.ID {
		return nil, ErrNotOwner
	}
	if !visa.Status.CanTransitionTo(domain.VisaStatusSubmitted) {
		return nil, ErrInvalidTransition
	}

	required, err := s.documents.CountRequired(ctx, domain.DocumentParentVisa, visa.ID)
	if err != nil {
		return nil, fmt.Errorf("count required documents: %w", err)
	}
	if required == 0 {
		return nil, ErrMissingRequiredDocuments
	}

	now := s.now().UTC()
	from := visa.Status
	visa.Status = domain.VisaStatusSubmitted
	visa.SubmittedAt = &now
	visa.UpdatedAt = now

	history := s.historyRecord(visa.ID, from, visa.Status, "", actor.ID, now)
	if err := s.visas.UpdateStatus(ctx, *visa, history); err != nil {
		return nil, fmt.Errorf("submit visa extension: %w", err)
	}

	s.afterTransition(ctx, *visa, from, "", actor.ID, now)
	return visa, nil
}

// finalVisaStatuses require approve permission on top of review.
func finalVisaStatus(status domain.VisaStatus) bool {
	switch status {
	case domain.VisaStatusApproved, domain.VisaStatusRejected, domain.VisaStatusExtended:
		return true
	}
	return false
}

// ChangeStatus moves an application along the workflow. Review permission is
// checked before transition validity so unauthorized callers always get a
// permission error, never a workflow hint.
func (s *VisaService) ChangeStatus(ctx context.Context, actor domain.Actor, id string, to domain.VisaStatus, comment string) (*domain.VisaExtension, error) {
	if !actor.Can(domain.PermVisaReview) {
		return nil, ErrPermissionDenied
	}
	if finalVisaStatus(to) && !actor.Can(domain.PermVisaApprove) {
		return nil, ErrPermissionDenied
	}

	visa, err := s.visas.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get visa extension: %w", err)
	}

	if !visa.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, visa.Status, to)
	}

	now := s.now().UTC()
	from := visa.Status
	visa.Status = to
	visa.ReviewerID = &actor.ID
	visa.UpdatedAt = now

	switch to {
	case domain.VisaStatusUnderReview:
		visa.ReviewedAt = &now
	case domain.VisaStatusApproved:
		visa.ApprovedAt = &now
	case domain.VisaStatusRejected:
		visa.RejectedAt = &now
	case domain.VisaStatusExtended:
		visa.ExtendedAt = &now
	}

	history := s.historyRecord(visa.ID, from, to, comment, actor.ID, now)
	if err := s.visas.UpdateStatus(ctx, *visa, history); err != nil {
		return nil, fmt.Errorf("change visa status: %w", err)
	}

	s.afterTransition(ctx, *visa, from, comment, actor.ID, now)
	return visa, nil
}

// Remove deletes an application in a deletable status. Owners delete their
// own; admins may delete any.
func (s *VisaService) Remove(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.Can(domain.PermVisaDelete) {
		return ErrPermissionDenied
	}

	visa, err := s.visas.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get visa extension: %w", err)
	}

	if visa.OwnerID != actor.ID && !actor.IsAdmin() {
		return ErrNotOwner
	}
	if !visa.Status.Deletable() {
		return ErrNotDeletable
	}

	if err := s.visas.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete visa extension: %w", err)
	}

	return nil
}

// History returns the transition log of an application.
func (s *VisaService) History(ctx context.Context, actor domain.Actor, id string) ([]domain.VisaExtensionHistory, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}

	entries, err := s.visas.ListHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list visa history: %w", err)
	}

	return entries, nil
}

// SendExpiryReminders notifies owners of approved or extended visas that run
// out within the given horizon. It returns the number of reminders sent.
func (s *VisaService) SendExpiryReminders(ctx context.Context, actor domain.Actor, within time.Duration) (int, error) {
	if !actor.Can(domain.PermVisaReview) {
		return 0, ErrPermissionDenied
	}
	if within <= 0 {
		within = 30 * 24 * time.Hour
	}

	expiring, err := s.visas.ListExpiring(ctx, s.now().UTC().Add(within))
	if err != nil {
		return 0, fmt.Errorf("list expiring visas: %w", err)
	}

	for _, visa := range expiring {
		s.notifier.ExpiryReminder(ctx, visa.OwnerID, visa.ID, visa.RequestedUntil)
	}

	return len(expiring), nil
}

func (s *VisaService) historyRecord(visaID string, from, to domain.VisaStatus, comment, changedBy string, at time.Time) domain.VisaExtensionHistory {
	return domain.VisaExtensionHistory{
		ID:              uuid.NewString(),
		VisaExtensionID: visaID,
		FromStatus:      from,
		ToStatus:        to,
		Comment:         comment,
		ChangedBy:       changedBy,
		ChangedAt:       at,
	}
}

// afterTransition fans out the best-effort side effects of a committed
// status change.
func (s *VisaService) afterTransition(ctx context.Context, visa domain.VisaExtension, from domain.VisaStatus, comment, changedBy string, at time.Time) {
	s.metrics.ObserveTransition(visaEntity, string(visa.Status))

	if changedBy != visa.OwnerID {
		s.notifier.StatusChanged(ctx, visa.OwnerID, visaEntity, visa.ID, string(from), string(visa.Status), comment)
	}

	if s.events == nil {
		return
	}

	event := domain.StatusChangedEvent{
		EventID:    uuid.NewString(),
		Entity:     visaEntity,
		EntityID:   visa.ID,
		OwnerID:    visa.OwnerID,
		FromStatus: string(from),
		ToStatus:   string(visa.Status),
		Comment:    comment,
		ChangedBy:  changedBy,
		ChangedAt:  at,
	}
	if err := s.events.PublishStatusChanged(ctx, event); err != nil {
		logger.WithContext(ctx).Warn("publish visa status change", zap.Error(err))
	}
}

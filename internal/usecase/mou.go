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

const mouEntity = "mou"

// MOUService manages memoranda of understanding through their negotiation
// workflow.
type MOUService struct {
	mous     port.MOURepository
	events   port.EventPublisher
	notifier *Notifier
	metrics  *telemetry.Provider
	now      func() time.Time
}

// NewMOUService constructs a MOUService. Events, notifier and metrics may be
// nil.
func NewMOUService(mous port.MOURepository, events port.EventPublisher, notifier *Notifier, metrics *telemetry.Provider) *MOUService {
	return &MOUService{
		mous:     mous,
		events:   events,
		notifier: notifier,
		metrics:  metrics,
		now:      time.Now,
	}
}

// WithClock overrides the time source (testing).
func (s *MOUService) WithClock(now func() time.Time) *MOUService {
	if now != nil {
		s.now = now
	}
	return s
}

// MOUInput carries the owner-editable fields.
type MOUInput struct {
	PartnerName    string
	PartnerCountry string
	Title          string
	Summary        string
	StartDate      *time.Time
	EndDate        *time.Time
}

func (in MOUInput) validate() error {
	if strings.TrimSpace(in.PartnerName) == "" {
		return fmt.Errorf("%w: partner name is required", ErrValidation)
	}
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.StartDate != nil && in.EndDate != nil && !in.EndDate.After(*in.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", ErrValidation)
	}
	return nil
}

// Create opens a new memorandum in draft.
func (s *MOUService) Create(ctx context.Context, actor domain.Actor, input MOUInput) (*domain.MOU, error) {
	if !actor.Can(domain.PermMOUCreate) {
		return nil, ErrPermissionDenied
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	mou := domain.MOU{
		ID:             uuid.NewString(),
		OwnerID:        actor.ID,
		PartnerName:    strings.TrimSpace(input.PartnerName),
		PartnerCountry: strings.TrimSpace(input.PartnerCountry),
		Title:          strings.TrimSpace(input.Title),
		Summary:        strings.TrimSpace(input.Summary),
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Status:         domain.MOUStatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.mous.Create(ctx, mou); err != nil {
		return nil, fmt.Errorf("create mou: %w", err)
	}

	return &mou, nil
}

// Get retrieves a memorandum. Owners always see their own; anyone else needs
// review permission.
func (s *MOUService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.MOU, error) {
	if !actor.Can(domain.PermMOURead) {
		return nil, ErrPermissionDenied
	}

	mou, err := s.mous.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get mou: %w", err)
	}

	if mou.OwnerID != actor.ID && !actor.Can(domain.PermMOUReview) {
		return nil, ErrNotOwner
	}

	return mou, nil
}

// List enumerates memoranda. Callers without review permission only see
// their own rows regardless of the filter.
func (s *MOUService) List(ctx context.Context, actor domain.Actor, filter port.MOUFilter) ([]domain.MOU, int, error) {
	if !actor.Can(domain.PermMOURead) {
		return nil, 0, ErrPermissionDenied
	}

	if !actor.Can(domain.PermMOUReview) {
		filter.OwnerID = actor.ID
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	mous, err := s.mous.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list mous: %w", err)
	}

	total, err := s.mous.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count mous: %w", err)
	}

	return mous, total, nil
}

// Update modifies a memorandum while its status still allows edits. When the
// reviewer had requested revisions, a successful edit re-proposes the
// memorandum and bumps the revision counter.
func (s *MOUService) Update(ctx context.Context, actor domain.Actor, id string, input MOUInput) (*domain.MOU, error) {
	if !actor.Can(domain.PermMOUUpdate) {
		return nil, ErrPermissionDenied
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	mou, err := s.mous.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get mou: %w", err)
	}

	if mou.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrNotOwner
	}
	if !mou.Status.Editable() {
		return nil, ErrNotEditable
	}

	now := s.now().UTC()
	mou.PartnerName = strings.TrimSpace(input.PartnerName)
	mou.PartnerCountry = strings.TrimSpace(input.PartnerCountry)
	mou.Title = strings.TrimSpace(input.Title)
	mou.Summary = strings.TrimSpace(input.Summary)
	mou.StartDate = input.StartDate
	mou.EndDate = input.EndDate
	mou.UpdatedAt = now

	if mou.Status == domain.MOUStatusNeedsRevision {
		from := mou.Status
		mou.Status = domain.MOUStatusProposed
		mou.RevisionCount++
		mou.ProposedAt = &now

		history := s.historyRecord(mou.ID, from, mou.Status, "revised after review feedback", actor.ID, now)
		if err := s.mous.UpdateStatus(ctx, *mou, history); err != nil {
			return nil, fmt.Errorf("re-propose mou: %w", err)
		}

		s.afterTransition(ctx, *mou, from, "revised proposal", actor.ID, now)
		return mou, nil
	}

	if err := s.mous.Update(ctx, *mou); err != nil {
		return nil, fmt.Errorf("update mou: %w", err)
	}

	return mou, nil
}

// Propose moves a draft into the negotiation pipeline. Only the owner may
// propose.
func (s *MOUService) Propose(ctx context.Context, actor domain.Actor, id string) (*domain.MOU, error) {
	mou, err := s.mous.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get mou: %w", err)
	}

	if mou.OwnerID != actor.ID {
		return nil, ErrNotOwner
	}
	if !mou.Status.CanTransitionTo(domain.MOUStatusProposed) {
		return nil, ErrInvalidTransition
	}

	now := s.now().UTC()
	from := mou.Status
	mou.Status = domain.MOUStatusProposed
	mou.ProposedAt = &now
	mou.UpdatedAt = now

	history := s.historyRecord(mou.ID, from, mou.Status, "", actor.ID, now)
	if err := s.mous.UpdateStatus(ctx, *mou, history); err != nil {
		return nil, fmt.Errorf("propose mou: %w", err)
	}

	s.afterTransition(ctx, *mou, from, "", actor.ID, now)
	return mou, nil
}

// ChangeStatus moves a memorandum along the workflow. Review permission is
// checked before transition validity. Approval and rejection additionally
// require approve permission, signing and expiring require sign permission.
func (s *MOUService) ChangeStatus(ctx context.Context, actor domain.Actor, id string, to domain.MOUStatus, comment string) (*domain.MOU, error) {
	if !actor.Can(domain.PermMOUReview) {
		return nil, ErrPermissionDenied
	}
	switch to {
	case domain.MOUStatusApproved, domain.MOUStatusRejected:
		if !actor.Can(domain.PermMOUApprove) {
			return nil, ErrPermissionDenied
		}
	case domain.MOUStatusSigned, domain.MOUStatusExpired:
		if !actor.Can(domain.PermMOUSign) {
			return nil, ErrPermissionDenied
		}
	}

	mou, err := s.mous.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get mou: %w", err)
	}

	if !mou.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, mou.Status, to)
	}

	now := s.now().UTC()
	from := mou.Status
	mou.Status = to
	mou.ReviewerID = &actor.ID
	mou.UpdatedAt = now

	switch to {
	case domain.MOUStatusUnderReview:
		mou.ReviewedAt = &now
	case domain.MOUStatusApproved:
		mou.ApprovedAt = &now
	case domain.MOUStatusSigned:
		mou.SignedAt = &now
	case domain.MOUStatusRejected:
		mou.RejectedAt = &now
	}

	history := s.historyRecord(mou.ID, from, to, comment, actor.ID, now)
	if err := s.mous.UpdateStatus(ctx, *mou, history); err != nil {
		return nil, fmt.Errorf("change mou status: %w", err)
	}

	s.afterTransition(ctx, *mou, from, comment, actor.ID, now)
	return mou, nil
}

// Remove deletes a memorandum in a deletable status.
func (s *MOUService) Remove(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.Can(domain.PermMOUDelete) {
		return ErrPermissionDenied
	}

	mou, err := s.mous.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get mou: %w", err)
	}

	if mou.OwnerID != actor.ID && !actor.IsAdmin() {
		return ErrNotOwner
	}
	if !mou.Status.Deletable() {
		return ErrNotDeletable
	}

	if err := s.mous.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete mou: %w", err)
	}

	return nil
}

// History returns the transition log of a memorandum.
func (s *MOUService) History(ctx context.Context, actor domain.Actor, id string) ([]domain.MOUHistory, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}

	entries, err := s.mous.ListHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list mou history: %w", err)
	}

	return entries, nil
}

func (s *MOUService) historyRecord(mouID string, from, to domain.MOUStatus, comment, changedBy string, at time.Time) domain.MOUHistory {
	return domain.MOUHistory{
		ID:         uuid.NewString(),
		MOUID:      mouID,
		FromStatus: from,
		ToStatus:   to,
		Comment:    comment,
		ChangedBy:  changedBy,
		ChangedAt:  at,
	}
}

func (s *MOUService) afterTransition(ctx context.Context, mou domain.MOU, from domain.MOUStatus, comment, changedBy string, at time.Time) {
	s.metrics.ObserveTransition(mouEntity, string(mou.Status))

	if changedBy != mou.OwnerID {
		s.notifier.StatusChanged(ctx, mou.OwnerID, mouEntity, mou.ID, string(from), string(mou.Status), comment)
	}

	if s.events == nil {
		return
	}

	event := domain.StatusChangedEvent{
		EventID:    uuid.NewString(),
		Entity:     mouEntity,
		EntityID:   mou.ID,
		OwnerID:    mou.OwnerID,
		FromStatus: string(from),
		ToStatus:   string(mou.Status),
		Comment:    comment,
		ChangedBy:  changedBy,
		ChangedAt:  at,
	}
	if err := s.events.PublishStatusChanged(ctx, event); err != nil {
		logger.WithContext(ctx).Warn("publish mou status change", zap.Error(err))
	}
}

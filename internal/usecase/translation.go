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

const translationEntity = "translation_request"

// TranslationService manages document-translation requests. Requests enter
// the queue immediately on creation, so there is no separate submit step.
type TranslationService struct {
	translations port.TranslationRepository
	events       port.EventPublisher
	notifier     *Notifier
	metrics      *telemetry.Provider
	now          func() time.Time
}

// NewTranslationService constructs a TranslationService.
func NewTranslationService(translations port.TranslationRepository, events port.EventPublisher, notifier *Notifier, metrics *telemetry.Provider) *TranslationService {
	return &TranslationService{
		translations: translations,
		events:       events,
		notifier:     notifier,
		metrics:      metrics,
		now:          time.Now,
	}
}

// WithClock overrides the time source (testing).
func (s *TranslationService) WithClock(now func() time.Time) *TranslationService {
	if now != nil {
		s.now = now
	}
	return s
}

// TranslationInput carries the requester-editable fields.
type TranslationInput struct {
	SourceLanguage string
	TargetLanguage string
	DocumentTitle  string
	PageCount      int
	Notes          string
}

func (in TranslationInput) validate() error {
	if strings.TrimSpace(in.SourceLanguage) == "" || strings.TrimSpace(in.TargetLanguage) == "" {
		return fmt.Errorf("%w: source and target languages are required", ErrValidation)
	}
	if strings.EqualFold(in.SourceLanguage, in.TargetLanguage) {
		return fmt.Errorf("%w: source and target languages must differ", ErrValidation)
	}
	if strings.TrimSpace(in.DocumentTitle) == "" {
		return fmt.Errorf("%w: document title is required", ErrValidation)
	}
	if in.PageCount <= 0 {
		return fmt.Errorf("%w: page count must be positive", ErrValidation)
	}
	return nil
}

// Create files a new request directly into the pending queue.
func (s *TranslationService) Create(ctx context.Context, actor domain.Actor, input TranslationInput) (*domain.TranslationRequest, error) {
	if !actor.Can(domain.PermTranslationCreate) {
		return nil, ErrPermissionDenied
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	req := domain.TranslationRequest{
		ID:             uuid.NewString(),
		OwnerID:        actor.ID,
		SourceLanguage: strings.TrimSpace(input.SourceLanguage),
		TargetLanguage: strings.TrimSpace(input.TargetLanguage),
		DocumentTitle:  strings.TrimSpace(input.DocumentTitle),
		PageCount:      input.PageCount,
		Notes:          strings.TrimSpace(input.Notes),
		Status:         domain.TranslationStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.translations.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create translation request: %w", err)
	}

	return &req, nil
}

// Get retrieves a request. Owners always see their own; anyone else needs
// process permission.
func (s *TranslationService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.TranslationRequest, error) {
	if !actor.Can(domain.PermTranslationRead) {
		return nil, ErrPermissionDenied
	}

	req, err := s.translations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get translation request: %w", err)
	}

	if req.OwnerID != actor.ID && !actor.Can(domain.PermTranslationProcess) {
		return nil, ErrNotOwner
	}

	return req, nil
}

// List enumerates requests. Callers without process permission only see
// their own rows.
func (s *TranslationService) List(ctx context.Context, actor domain.Actor, filter port.TranslationFilter) ([]domain.TranslationRequest, int, error) {
	if !actor.Can(domain.PermTranslationRead) {
		return nil, 0, ErrPermissionDenied
	}

	if !actor.Can(domain.PermTranslationProcess) {
		filter.OwnerID = actor.ID
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	reqs, err := s.translations.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list translation requests: %w", err)
	}

	total, err := s.translations.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count translation requests: %w", err)
	}

	return reqs, total, nil
}

// Update modifies a request before it is completed or rejected.
func (s *TranslationService) Update(ctx context.Context, actor domain.Actor, id string, input TranslationInput) (*domain.TranslationRequest, error) {
	if !actor.Can(domain.PermTranslationUpdate) {
		return nil, ErrPermissionDenied
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	req, err := s.translations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get translation request: %w", err)
	}

	if req.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrNotOwner
	}
	if !req.Status.Editable() {
		return nil, ErrNotEditable
	}

	req.SourceLanguage = strings.TrimSpace(input.SourceLanguage)
	req.TargetLanguage = strings.TrimSpace(input.TargetLanguage)
	req.DocumentTitle = strings.TrimSpace(input.DocumentTitle)
	req.PageCount = input.PageCount
	req.Notes = strings.TrimSpace(input.Notes)
	req.UpdatedAt = s.now().UTC()

	if err := s.translations.Update(ctx, *req); err != nil {
		return nil, fmt.Errorf("update translation request: %w", err)
	}

	return req, nil
}

// ChangeStatus moves a request along the workflow. Process permission is
// checked before transition validity; completion additionally requires
// complete permission. Taking a request into processing claims it for the
// acting translator.
func (s *TranslationService) ChangeStatus(ctx context.Context, actor domain.Actor, id string, to domain.TranslationStatus, comment string) (*domain.TranslationRequest, error) {
	if !actor.Can(domain.PermTranslationProcess) {
		return nil, ErrPermissionDenied
	}
	if to == domain.TranslationStatusCompleted && !actor.Can(domain.PermTranslationComplete) {
		return nil, ErrPermissionDenied
	}

	req, err := s.translations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get translation request: %w", err)
	}

	if !req.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, to)
	}

	now := s.now().UTC()
	from := req.Status
	req.Status = to
	req.UpdatedAt = now

	switch to {
	case domain.TranslationStatusProcessing:
		req.TranslatorID = &actor.ID
		req.ProcessedAt = &now
	case domain.TranslationStatusCompleted:
		req.CompletedAt = &now
	case domain.TranslationStatusRejected:
		req.RejectedAt = &now
	}

	if err := s.translations.Update(ctx, *req); err != nil {
		return nil, fmt.Errorf("change translation status: %w", err)
	}

	s.metrics.ObserveTransition(translationEntity, string(to))
	if actor.ID != req.OwnerID {
		s.notifier.StatusChanged(ctx, req.OwnerID, translationEntity, req.ID, string(from), string(to), comment)
	}
	s.publishStatusChanged(ctx, *req, from, comment, actor.ID, now)

	return req, nil
}

// Remove deletes a request in a deletable status.
func (s *TranslationService) Remove(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.Can(domain.PermTranslationDelete) {
		return ErrPermissionDenied
	}

	req, err := s.translations.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get translation request: %w", err)
	}

	if req.OwnerID != actor.ID && !actor.IsAdmin() {
		return ErrNotOwner
	}
	if !req.Status.Deletable() {
		return ErrNotDeletable
	}

	if err := s.translations.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete translation request: %w", err)
	}

	return nil
}

func (s *TranslationService) publishStatusChanged(ctx context.Context, req domain.TranslationRequest, from domain.TranslationStatus, comment, changedBy string, at time.Time) {
	if s.events == nil {
		return
	}

	event := domain.StatusChangedEvent{
		EventID:    uuid.NewString(),
		Entity:     translationEntity,
		EntityID:   req.ID,
		OwnerID:    req.OwnerID,
		FromStatus: string(from),
		ToStatus:   string(req.Status),
		Comment:    comment,
		ChangedBy:  changedBy,
		ChangedAt:  at,
	}
	if err := s.events.PublishStatusChanged(ctx, event); err != nil {
		logger.WithContext(ctx).Warn("publish translation status change", zap.Error(err))
	}
}

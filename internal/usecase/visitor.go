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

const visitorEntity = "visitor_registration"

// VisitorService manages international-visitor registrations. Registrations
// enter the review queue immediately on creation.
type VisitorService struct {
	visitors port.VisitorRepository
	events   port.EventPublisher
	notifier *Notifier
	metrics  *telemetry.Provider
	now      func() time.Time
}

// NewVisitorService constructs a VisitorService.
func NewVisitorService(visitors port.VisitorRepository, events port.EventPublisher, notifier *Notifier, metrics *telemetry.Provider) *VisitorService {
	return &VisitorService{
		visitors: visitors,
		events:   events,
		notifier: notifier,
		metrics:  metrics,
		now:      time.Now,
	}
}

// WithClock overrides the time source (testing).
func (s *VisitorService) WithClock(now func() time.Time) *VisitorService {
	if now != nil {
		s.now = now
	}
	return s
}

// VisitorInput carries the host-editable fields.
type VisitorInput struct {
	VisitorName   string
	VisitorEmail  string
	Country       string
	Institution   string
	Purpose       string
	ArrivalDate   time.Time
	DepartureDate time.Time
}

func (in VisitorInput) validate() error {
	if strings.TrimSpace(in.VisitorName) == "" {
		return fmt.Errorf("%w: visitor name is required", ErrValidation)
	}
	if strings.TrimSpace(in.Country) == "" {
		return fmt.Errorf("%w: country is required", ErrValidation)
	}
	if in.ArrivalDate.IsZero() || in.DepartureDate.IsZero() {
		return fmt.Errorf("%w: arrival and departure dates are required", ErrValidation)
	}
	if !in.DepartureDate.After(in.ArrivalDate) {
		return fmt.Errorf("%w: departure must be after arrival", ErrValidation)
	}
	return nil
}

// Create registers a planned visit in pending status.
func (s *VisitorService) Create(ctx context.Context, actor domain.Actor, input VisitorInput) (*domain.VisitorRegistration, error) {
	if !actor.Can(domain.PermVisitorCreate) {
		return nil, ErrPermissionDenied
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	reg := domain.VisitorRegistration{
		ID:            uuid.NewString(),
		OwnerID:       actor.ID,
		VisitorName:   strings.TrimSpace(input.VisitorName),
		VisitorEmail:  strings.TrimSpace(strings.ToLower(input.VisitorEmail)),
		Country:       strings.TrimSpace(input.Country),
		Institution:   strings.TrimSpace(input.Institution),
		Purpose:       strings.TrimSpace(input.Purpose),
		ArrivalDate:   input.ArrivalDate,
		DepartureDate: input.DepartureDate,
		Status:        domain.VisitorStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.visitors.Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("create visitor registration: %w", err)
	}

	return &reg, nil
}

// Get retrieves a registration. Hosts always see their own; anyone else
// needs review permission.
func (s *VisitorService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.VisitorRegistration, error) {
	if !actor.Can(domain.PermVisitorRead) {
		return nil, ErrPermissionDenied
	}

	reg, err := s.visitors.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get visitor registration: %w", err)
	}

	if reg.OwnerID != actor.ID && !actor.Can(domain.PermVisitorReview) {
		return nil, ErrNotOwner
	}

	return reg, nil
}

// List enumerates registrations. Callers without review permission only see
// their own rows.
func (s *VisitorService) List(ctx context.Context, actor domain.Actor, filter port.VisitorFilter) ([]domain.VisitorRegistration, int, error) {
	if !actor.Can(domain.PermVisitorRead) {
		return nil, 0, ErrPermissionDenied
	}

	if !actor.Can(domain.PermVisitorReview) {
		filter.OwnerID = actor.ID
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	regs, err := s.visitors.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list visitor registrations: %w", err)
	}

	total, err := s.visitors.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count visitor registrations: %w", err)
	}

	return regs, total, nil
}

// Update modifies a registration while it is still pending.
func (s *VisitorService) Update(ctx context.Context, actor domain.Actor, id string, input VisitorInput) (*domain.VisitorRegistration, error) {
	if !actor.Can(domain.PermVisitorUpdate) {
		return nil, ErrPermissionDenied
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	reg, err := s.visitors.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get visitor registration: %w", err)
	}

	if reg.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrNotOwner
	}
	if !reg.Status.Editable() {
		return nil, ErrNotEditable
	}

	reg.VisitorName = strings.TrimSpace(input.VisitorName)
	reg.VisitorEmail = strings.TrimSpace(strings.ToLower(input.VisitorEmail))
	reg.Country = strings.TrimSpace(input.Country)
	reg.Institution = strings.TrimSpace(input.Institution)
	reg.Purpose = strings.TrimSpace(input.Purpose)
	reg.ArrivalDate = input.ArrivalDate
	reg.DepartureDate = input.DepartureDate
	reg.UpdatedAt = s.now().UTC()

	if err := s.visitors.Update(ctx, *reg); err != nil {
		return nil, fmt.Errorf("update visitor registration: %w", err)
	}

	return reg, nil
}

// ChangeStatus moves a registration along the workflow. Review permission is
// checked before transition validity; approval, rejection and completion
// additionally require approve permission.
func (s *VisitorService) ChangeStatus(ctx context.Context, actor domain.Actor, id string, to domain.VisitorStatus, comment string) (*domain.VisitorRegistration, error) {
	if !actor.Can(domain.PermVisitorReview) {
		return nil, ErrPermissionDenied
	}
	switch to {
	case domain.VisitorStatusApproved, domain.VisitorStatusRejected, domain.VisitorStatusCompleted:
		if !actor.Can(domain.PermVisitorApprove) {
			return nil, ErrPermissionDenied
		}
	}

	reg, err := s.visitors.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get visitor registration: %w", err)
	}

	if !reg.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, reg.Status, to)
	}

	now := s.now().UTC()
	from := reg.Status
	reg.Status = to
	reg.ReviewerID = &actor.ID
	reg.UpdatedAt = now

	switch to {
	case domain.VisitorStatusUnderReview:
		reg.ReviewedAt = &now
	case domain.VisitorStatusApproved:
		reg.ApprovedAt = &now
	case domain.VisitorStatusRejected:
		reg.RejectedAt = &now
	case domain.VisitorStatusCompleted:
		reg.CompletedAt = &now
	}

	if err := s.visitors.Update(ctx, *reg); err != nil {
		return nil, fmt.Errorf("change visitor status: %w", err)
	}

	s.metrics.ObserveTransition(visitorEntity, string(to))
	if actor.ID != reg.OwnerID {
		s.notifier.StatusChanged(ctx, reg.OwnerID, visitorEntity, reg.ID, string(from), string(to), comment)
	}
	s.publishStatusChanged(ctx, *reg, from, comment, actor.ID, now)

	return reg, nil
}

// Remove deletes a registration in a deletable status.
func (s *VisitorService) Remove(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.Can(domain.PermVisitorDelete) {
		return ErrPermissionDenied
	}

	reg, err := s.visitors.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get visitor registration: %w", err)
	}

	if reg.OwnerID != actor.ID && !actor.IsAdmin() {
		return ErrNotOwner
	}
	if !reg.Status.Deletable() {
		return ErrNotDeletable
	}

	if err := s.visitors.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete visitor registration: %w", err)
	}

	return nil
}

func (s *VisitorService) publishStatusChanged(ctx context.Context, reg domain.VisitorRegistration, from domain.VisitorStatus, comment, changedBy string, at time.Time) {
	if s.events == nil {
		return
	}

	event := domain.StatusChangedEvent{
		EventID:    uuid.NewString(),
		Entity:     visitorEntity,
		EntityID:   reg.ID,
		OwnerID:    reg.OwnerID,
		FromStatus: string(from),
		ToStatus:   string(reg.Status),
		Comment:    comment,
		ChangedBy:  changedBy,
		ChangedAt:  at,
	}
	if err := s.events.PublishStatusChanged(ctx, event); err != nil {
		logger.WithContext(ctx).Warn("publish visitor status change", zap.Error(err))
	}
}

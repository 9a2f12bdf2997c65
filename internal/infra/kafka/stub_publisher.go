package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishStatusChanged logs intl.request.status.changed events.
func (p *StubPublisher) PublishStatusChanged(_ context.Context, event domain.StatusChangedEvent) error {
	p.logEvent(topicStatusChanged, event.ChangedAt, map[string]any{
		"entity":      event.Entity,
		"entity_id":   event.EntityID,
		"from_status": event.FromStatus,
		"to_status":   event.ToStatus,
		"changed_by":  event.ChangedBy,
	})
	return nil
}

// PublishRolesAssigned logs intl.user.roles.assigned events.
func (p *StubPublisher) PublishRolesAssigned(_ context.Context, event domain.RolesAssignedEvent) error {
	p.logEvent(topicRolesAssigned, event.AssignedAt, map[string]any{
		"user_id":     event.UserID,
		"roles_added": event.RolesAdded,
		"assigned_by": event.AssignedBy,
	})
	return nil
}

// PublishRolesRevoked logs intl.user.roles.revoked events.
func (p *StubPublisher) PublishRolesRevoked(_ context.Context, event domain.RolesRevokedEvent) error {
	p.logEvent(topicRolesRevoked, event.RevokedAt, map[string]any{
		"user_id":       event.UserID,
		"roles_removed": event.RolesRemoved,
		"revoked_by":    event.RevokedBy,
		"reason":        event.Reason,
	})
	return nil
}

// PublishUserCreated logs intl.user.created events.
func (p *StubPublisher) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	p.logEvent(topicUserCreated, event.CreatedAt, map[string]any{
		"user_id":    event.UserID,
		"email":      event.Email,
		"department": event.Department,
		"created_by": event.CreatedBy,
	})
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)

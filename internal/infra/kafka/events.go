package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
)

const (
	topicStatusChanged = "request.status.changed"
	topicRolesAssigned = "user.roles.assigned"
	topicRolesRevoked  = "user.roles.revoked"
	topicUserCreated   = "user.created"
)

// envelope is the common wire frame for all published events.
type envelope struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	EmittedAt time.Time `json:"emitted_at"`
	Payload   any       `json:"payload"`
}

// EventPublisher serializes domain events to JSON and hands them to the
// async producer.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, logger: logger}
}

func (p *EventPublisher) publish(eventType, key string, payload any) error {
	eventID := uuid.NewString()

	body, err := json.Marshal(envelope{
		EventID:   eventID,
		EventType: eventType,
		EmittedAt: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
	}

	p.logger.Debug("event queued",
		zap.String("event_type", eventType),
		zap.String("event_id", eventID),
	)

	return nil
}

// PublishStatusChanged emits intl.request.status.changed messages.
func (p *EventPublisher) PublishStatusChanged(_ context.Context, event domain.StatusChangedEvent) error {
	return p.publish(topicStatusChanged, event.EntityID, map[string]any{
		"entity":      event.Entity,
		"entity_id":   event.EntityID,
		"owner_id":    event.OwnerID,
		"from_status": event.FromStatus,
		"to_status":   event.ToStatus,
		"comment":     event.Comment,
		"changed_by":  event.ChangedBy,
		"changed_at":  event.ChangedAt,
		"metadata":    event.Metadata,
	})
}

// PublishRolesAssigned emits intl.user.roles.assigned messages.
func (p *EventPublisher) PublishRolesAssigned(_ context.Context, event domain.RolesAssignedEvent) error {
	return p.publish(topicRolesAssigned, event.UserID, map[string]any{
		"user_id":     event.UserID,
		"roles_added": event.RolesAdded,
		"assigned_by": event.AssignedBy,
		"assigned_at": event.AssignedAt,
	})
}

// PublishRolesRevoked emits intl.user.roles.revoked messages.
func (p *EventPublisher) PublishRolesRevoked(_ context.Context, event domain.RolesRevokedEvent) error {
	return p.publish(topicRolesRevoked, event.UserID, map[string]any{
		"user_id":       event.UserID,
		"roles_removed": event.RolesRemoved,
		"revoked_by":    event.RevokedBy,
		"revoked_at":    event.RevokedAt,
		"reason":        event.Reason,
	})
}

// PublishUserCreated emits intl.user.created messages.
func (p *EventPublisher) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	return p.publish(topicUserCreated, event.UserID, map[string]any{
		"user_id":    event.UserID,
		"email":      event.Email,
		"department": event.Department,
		"created_by": event.CreatedBy,
		"created_at": event.CreatedAt,
	})
}

var _ port.EventPublisher = (*EventPublisher)(nil)

package port

import (
	"context"

	"github.com/campusio/intl-office/internal/core/domain"
)

// EventPublisher fans out domain events to the message bus. Publishing is
// best-effort: callers log failures and continue.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, event domain.StatusChangedEvent) error
	PublishRolesAssigned(ctx context.Context, event domain.RolesAssignedEvent) error
	PublishRolesRevoked(ctx context.Context, event domain.RolesRevokedEvent) error
	PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error
}

package usecase

import (
	"context"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/infra/logger"
)

// Mailer delivers outbound mail. Delivery is best-effort.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Notifier fans a workflow event out to the in-app notification table and
// the mailer. Every path is best-effort: a notification failure never rolls
// back the transition that triggered it.
type Notifier struct {
	notifications port.NotificationRepository
	users         port.UserRepository
	mailer        Mailer
	now           func() time.Time
}

// NewNotifier constructs a Notifier. The mailer may be nil.
func NewNotifier(notifications port.NotificationRepository, users port.UserRepository, mailer Mailer) *Notifier {
	return &Notifier{
		notifications: notifications,
		users:         users,
		mailer:        mailer,
		now:           time.Now,
	}
}

// WithClock overrides the time source (testing).
func (n *Notifier) WithClock(now func() time.Time) *Notifier {
	if now != nil {
		n.now = now
	}
	return n
}

// StatusChanged notifies the record owner that a reviewer moved their request.
func (n *Notifier) StatusChanged(ctx context.Context, ownerID, entity, entityID, fromStatus, toStatus, comment string) {
	if n == nil {
		return
	}

	title := fmt.Sprintf("%s status changed to %s", entity, toStatus)
	message := fmt.Sprintf("Your %s moved from %s to %s.", entity, fromStatus, toStatus)
	if comment != "" {
		message += " Reviewer comment: " + comment
	}

	n.deliver(ctx, ownerID, title, message, entity, entityID)
}

// ExpiryReminder notifies the owner that an approved visa extension is about
// to run out.
func (n *Notifier) ExpiryReminder(ctx context.Context, ownerID, entityID string, until time.Time) {
	if n == nil {
		return
	}

	title := "Visa extension expiring soon"
	message := fmt.Sprintf("Your visa extension is valid until %s. Contact the office to renew.", until.Format("2006-01-02"))

	n.deliver(ctx, ownerID, title, message, "visa_extension", entityID)
}

func (n *Notifier) deliver(ctx context.Context, userID, title, message, entity, entityID string) {
	record := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Entity:    entity,
		EntityID:  entityID,
		CreatedAt: n.now().UTC(),
	}

	if err := n.notifications.Create(ctx, record); err != nil {
		logger.WithContext(ctx).Warn("store notification",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	if n.mailer == nil {
		return
	}

	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		logger.WithContext(ctx).Warn("notification recipient lookup",
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}

	if err := n.mailer.Send(ctx, user.Email, title, message); err != nil {
		logger.WithContext(ctx).Warn("send notification mail",
			zap.String("to", logger.MaskEmail(user.Email)),
			zap.Error(err))
	}
}

// NotificationService exposes a user's own in-app notifications.
type NotificationService struct {
	notifications port.NotificationRepository
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(notifications port.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor domain.Actor, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	items, err := s.notifications.ListByUser(ctx, actor.ID, unreadOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return items, nil
}

// MarkRead flags one of the actor's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Actor, id string) error {
	if err := s.notifications.MarkRead(ctx, id, actor.ID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

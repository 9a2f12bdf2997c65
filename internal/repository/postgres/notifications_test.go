package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/repository"
)

func newMockedNotificationRepo(t *testing.T) (*NotificationRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	repo := &NotificationRepository{
		exec:    mock,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	return repo, mock
}

func TestNotificationRepository_Create(t *testing.T) {
	repo, mock := newMockedNotificationRepo(t)

	createdAt := time.Now().UTC()
	n := domain.Notification{
		ID:        "notif-1",
		UserID:    "user-1",
		Title:     "visa_extension status changed to approved",
		Message:   "Your visa_extension moved from under_review to approved.",
		Entity:    "visa_extension",
		EntityID:  "visa-1",
		CreatedAt: createdAt,
	}

	mock.ExpectExec(`INSERT INTO intl\.notifications`).
		WithArgs(
			n.ID,
			n.UserID,
			n.Title,
			n.Message,
			n.Entity,
			n.EntityID,
			false,
			n.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), n); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNotificationRepository_ListByUser(t *testing.T) {
	repo, mock := newMockedNotificationRepo(t)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "user_id", "title", "message", "entity", "entity_id", "is_read", "created_at",
	}).AddRow(
		"notif-1", "user-1", "Visa extension expiring soon", "Your visa extension is valid until 2026-09-01.", "visa_extension", "visa-1", false, createdAt,
	).AddRow(
		"notif-2", "user-1", "mou status changed to signed", "Your mou moved from approved to signed.", "mou", "mou-1", true, createdAt.Add(-time.Hour),
	)

	mock.ExpectQuery(`SELECT id, user_id, title, message, entity, entity_id, is_read, created_at FROM intl\.notifications`).
		WithArgs("user-1").
		WillReturnRows(rows)

	items, err := repo.ListByUser(context.Background(), "user-1", false, 20, 0)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(items))
	}
	if items[0].ID != "notif-1" || items[0].IsRead {
		t.Fatalf("unexpected first notification: %+v", items[0])
	}
	if !items[1].IsRead {
		t.Fatalf("second notification should be read: %+v", items[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNotificationRepository_ListByUserUnreadOnly(t *testing.T) {
	repo, mock := newMockedNotificationRepo(t)

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "title", "message", "entity", "entity_id", "is_read", "created_at",
	})

	mock.ExpectQuery(`SELECT .+ FROM intl\.notifications WHERE user_id = \$1 AND is_read = \$2`).
		WithArgs("user-1", false).
		WillReturnRows(rows)

	items, err := repo.ListByUser(context.Background(), "user-1", true, 0, 0)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no notifications, got %d", len(items))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	repo, mock := newMockedNotificationRepo(t)

	mock.ExpectExec(`UPDATE intl\.notifications SET is_read`).
		WithArgs(true, "notif-1", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.MarkRead(context.Background(), "notif-1", "user-1"); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNotificationRepository_MarkReadNotFound(t *testing.T) {
	repo, mock := newMockedNotificationRepo(t)

	mock.ExpectExec(`UPDATE intl\.notifications SET is_read`).
		WithArgs(true, "notif-1", "someone-else").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.MarkRead(context.Background(), "notif-1", "someone-else")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

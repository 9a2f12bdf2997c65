package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/repository"
)

func newMockedUserRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	repo := &UserRepository{
		exec:    mock,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	return repo, mock
}

func testUser() domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:           "user-1",
		Email:        "lan.nguyen@uni.example",
		PasswordHash: "argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		FullName:     "Lan Nguyen",
		Department:   "International Office",
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newMockedUserRepo(t)
	user := testUser()

	mock.ExpectExec(`INSERT INTO intl\.users`).
		WithArgs(
			user.ID,
			user.Email,
			user.PasswordHash,
			user.FullName,
			user.Department,
			user.Status,
			user.CreatedAt,
			user.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	repo, mock := newMockedUserRepo(t)
	user := testUser()

	mock.ExpectExec(`INSERT INTO intl\.users`).
		WithArgs(
			user.ID,
			user.Email,
			user.PasswordHash,
			user.FullName,
			user.Department,
			user.Status,
			user.CreatedAt,
			user.UpdatedAt,
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), user)
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateOtherErrorsPropagate(t *testing.T) {
	repo, mock := newMockedUserRepo(t)
	user := testUser()

	cause := errors.New("connection reset")
	mock.ExpectExec(`INSERT INTO intl\.users`).
		WithArgs(
			user.ID,
			user.Email,
			user.PasswordHash,
			user.FullName,
			user.Department,
			user.Status,
			user.CreatedAt,
			user.UpdatedAt,
		).
		WillReturnError(cause)

	err := repo.Create(context.Background(), user)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("err = %v, should not map to ErrDuplicate", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

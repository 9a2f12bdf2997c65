package port

import (
	"context"

	"github.com/campusio/intl-office/internal/core/domain"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Department string
	Status     domain.UserStatus
	Search     string
	Limit      int
	Offset     int
}

// UserRepository persists user accounts and role assignments.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Count(ctx context.Context, filter UserFilter) (int, error)
	Update(ctx context.Context, user domain.User) error
	ListRoles(ctx context.Context, userID string) ([]domain.Role, error)
	AssignRoles(ctx context.Context, userID string, roles []domain.Role, assignedBy string) error
	RevokeRoles(ctx context.Context, userID string, roles []domain.Role) error
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/infra/logger"
	"github.com/campusio/intl-office/internal/infra/security"
	"github.com/campusio/intl-office/internal/repository"
)

// UserService manages office accounts and their role assignments.
type UserService struct {
	users     port.UserRepository
	passwords *security.PasswordValidator
	events    port.EventPublisher
	now       func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(users port.UserRepository, passwords *security.PasswordValidator, events port.EventPublisher) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		events:    events,
		now:       time.Now,
	}
}

// WithClock overrides the time source (testing).
func (s *UserService) WithClock(now func() time.Time) *UserService {
	if now != nil {
		s.now = now
	}
	return s
}

// CreateUserInput carries the fields needed to open an account.
type CreateUserInput struct {
	Email      string
	Password   string
	FullName   string
	Department string
	Roles      []domain.Role
}

// Create opens a new account with the given roles. Requires user management
// permission.
func (s *UserService) Create(ctx context.Context, actor domain.Actor, input CreateUserInput) (*domain.User, error) {
	if !actor.Can(domain.PermUserManage) {
		return nil, ErrPermissionDenied
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrValidation)
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if err := validateRoles(input.Roles); err != nil {
		return nil, err
	}

	if err := s.passwords.Validate(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Department:   strings.TrimSpace(input.Department),
		Status:       domain.UserStatusActive,
		Roles:        input.Roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if len(input.Roles) > 0 {
		if err := s.users.AssignRoles(ctx, user.ID, input.Roles, actor.ID); err != nil {
			return nil, fmt.Errorf("assign initial roles: %w", err)
		}
	}

	s.publishUserCreated(ctx, user, actor.ID)
	if len(input.Roles) > 0 {
		s.publishRolesAssigned(ctx, user.ID, input.Roles, actor.ID)
	}

	user.PasswordHash = ""
	return &user, nil
}

// Get retrieves an account. Users may read their own; everything else needs
// user management permission.
func (s *UserService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.User, error) {
	if id != actor.ID && !actor.Can(domain.PermUserManage) {
		return nil, ErrPermissionDenied
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// List enumerates accounts. Requires user management permission.
func (s *UserService) List(ctx context.Context, actor domain.Actor, filter port.UserFilter) ([]domain.User, int, error) {
	if !actor.Can(domain.PermUserManage) {
		return nil, 0, ErrPermissionDenied
	}

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	for i := range users {
		users[i].PasswordHash = ""
	}

	return users, total, nil
}

// UpdateUserInput carries mutable profile fields.
type UpdateUserInput struct {
	FullName   string
	Department string
}

// Update modifies profile fields. Users may update their own profile;
// everything else needs user management permission.
func (s *UserService) Update(ctx context.Context, actor domain.Actor, id string, input UpdateUserInput) (*domain.User, error) {
	if id != actor.ID && !actor.Can(domain.PermUserManage) {
		return nil, ErrPermissionDenied
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if name := strings.TrimSpace(input.FullName); name != "" {
		user.FullName = name
	}
	if dept := strings.TrimSpace(input.Department); dept != "" {
		user.Department = dept
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, *user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// SetStatus activates, deactivates or locks an account. Admins cannot lock
// themselves out.
func (s *UserService) SetStatus(ctx context.Context, actor domain.Actor, id string, status domain.UserStatus) error {
	if !actor.Can(domain.PermUserManage) {
		return ErrPermissionDenied
	}
	if id == actor.ID && status != domain.UserStatusActive {
		return fmt.Errorf("%w: cannot deactivate own account", ErrValidation)
	}

	switch status {
	case domain.UserStatusActive, domain.UserStatusInactive, domain.UserStatusLocked:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	user.Status = status
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, *user); err != nil {
		return fmt.Errorf("update user status: %w", err)
	}

	return nil
}

// AssignRoles grants roles to an account. Requires role assignment
// permission.
func (s *UserService) AssignRoles(ctx context.Context, actor domain.Actor, userID string, roles []domain.Role) error {
	if !actor.Can(domain.PermRoleAssign) {
		return ErrPermissionDenied
	}
	if len(roles) == 0 {
		return fmt.Errorf("%w: at least one role is required", ErrValidation)
	}
	if err := validateRoles(roles); err != nil {
		return err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.users.AssignRoles(ctx, userID, roles, actor.ID); err != nil {
		return fmt.Errorf("assign roles: %w", err)
	}

	s.publishRolesAssigned(ctx, userID, roles, actor.ID)
	return nil
}

// RevokeRoles removes roles from an account. Requires role assignment
// permission.
func (s *UserService) RevokeRoles(ctx context.Context, actor domain.Actor, userID string, roles []domain.Role, reason string) error {
	if !actor.Can(domain.PermRoleAssign) {
		return ErrPermissionDenied
	}
	if len(roles) == 0 {
		return fmt.Errorf("%w: at least one role is required", ErrValidation)
	}
	if userID == actor.ID && domain.HasRole(roles, domain.RoleAdmin) {
		return fmt.Errorf("%w: cannot revoke own admin role", ErrValidation)
	}

	if err := s.users.RevokeRoles(ctx, userID, roles); err != nil {
		return fmt.Errorf("revoke roles: %w", err)
	}

	if s.events != nil {
		event := domain.RolesRevokedEvent{
			EventID:      uuid.NewString(),
			UserID:       userID,
			RolesRemoved: roles,
			RevokedBy:    actor.ID,
			RevokedAt:    s.now().UTC(),
			Reason:       reason,
		}
		if err := s.events.PublishRolesRevoked(ctx, event); err != nil {
			logger.WithContext(ctx).Warn("publish roles revoked", zap.Error(err))
		}
	}

	return nil
}

// ChangePassword lets users rotate their own password after confirming the
// current one.
func (s *UserService) ChangePassword(ctx context.Context, actor domain.Actor, current, next string) error {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	ok, err := security.VerifyPassword(current, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if err := s.passwords.Validate(next); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	hash, err := security.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hash
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, *user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

func validateRoles(roles []domain.Role) error {
	for _, role := range roles {
		if len(domain.PermissionsForRole(role)) == 0 {
			return fmt.Errorf("%w: %s", ErrUnknownRole, role)
		}
	}
	return nil
}

func (s *UserService) publishUserCreated(ctx context.Context, user domain.User, createdBy string) {
	if s.events == nil {
		return
	}
	event := domain.UserCreatedEvent{
		EventID:    uuid.NewString(),
		UserID:     user.ID,
		Email:      user.Email,
		Department: user.Department,
		CreatedBy:  createdBy,
		CreatedAt:  user.CreatedAt,
	}
	if err := s.events.PublishUserCreated(ctx, event); err != nil {
		logger.WithContext(ctx).Warn("publish user created", zap.Error(err))
	}
}

func (s *UserService) publishRolesAssigned(ctx context.Context, userID string, roles []domain.Role, assignedBy string) {
	if s.events == nil {
		return
	}
	event := domain.RolesAssignedEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		RolesAdded: roles,
		AssignedBy: assignedBy,
		AssignedAt: s.now().UTC(),
	}
	if err := s.events.PublishRolesAssigned(ctx, event); err != nil {
		logger.WithContext(ctx).Warn("publish roles assigned", zap.Error(err))
	}
}

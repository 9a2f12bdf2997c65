package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/infra/config"
	"github.com/campusio/intl-office/internal/infra/logger"
	"github.com/campusio/intl-office/internal/infra/security"
	"github.com/campusio/intl-office/internal/repository"
)

// AuthService coordinates login and token issuance.
type AuthService struct {
	users    port.UserRepository
	tokens   *security.TokenManager
	attempts port.RateLimitStore
	limits   config.RateLimitSettings
	now      func() time.Time
}

// NewAuthService constructs an AuthService. The rate-limit store may be nil,
// which disables login throttling.
func NewAuthService(users port.UserRepository, tokens *security.TokenManager, attempts port.RateLimitStore, limits config.RateLimitSettings) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		attempts: attempts,
		limits:   limits,
		now:      time.Now,
	}
}

// WithClock overrides the time source (testing).
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// LoginResult carries the issued token alongside the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

// Login validates credentials, enforces the sliding-window attempt limit and
// issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if err := s.checkAttempts(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordAttempt(ctx, email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.Status != domain.UserStatusActive {
		return nil, ErrInactiveAccount
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.recordAttempt(ctx, email)
		return nil, ErrInvalidCredentials
	}

	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.Department, roles)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: sanitized}, nil
}

// Me returns the caller's own account.
func (s *AuthService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) checkAttempts(ctx context.Context, email string) error {
	if s.attempts == nil || s.limits.LoginMaxAttempts <= 0 || s.limits.WindowDuration <= 0 {
		return nil
	}

	reference := s.now().UTC()
	if err := s.attempts.TrimWindow(ctx, email, s.limits.WindowDuration, reference); err != nil {
		logger.WithContext(ctx).Warn("trim login attempts", zap.Error(err))
		return nil
	}

	count, err := s.attempts.CountAttempts(ctx, email, s.limits.WindowDuration, reference)
	if err != nil {
		logger.WithContext(ctx).Warn("count login attempts", zap.Error(err))
		return nil
	}

	if count >= s.limits.LoginMaxAttempts {
		return ErrRateLimited
	}

	return nil
}

// recordAttempt is best-effort: a Redis outage must not block logins.
func (s *AuthService) recordAttempt(ctx context.Context, email string) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.RecordAttempt(ctx, email, s.now().UTC()); err != nil {
		logger.WithContext(ctx).Warn("record login attempt",
			zap.String("email", logger.MaskEmail(email)),
			zap.Error(err))
	}
}

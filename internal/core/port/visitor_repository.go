package port

import (
	"context"
	"time"

	"github.com/campusio/intl-office/internal/core/domain"
)

// VisitorFilter narrows visitor-registration listings.
type VisitorFilter struct {
	OwnerID string
	Status  domain.VisitorStatus
	Country string
	From    *time.Time
	To      *time.Time
	Search  string
	Limit   int
	Offset  int
}

// VisitorRepository persists international-visitor registrations.
type VisitorRepository interface {
	Create(ctx context.Context, reg domain.VisitorRegistration) error
	GetByID(ctx context.Context, id string) (*domain.VisitorRegistration, error)
	List(ctx context.Context, filter VisitorFilter) ([]domain.VisitorRegistration, error)
	Count(ctx context.Context, filter VisitorFilter) (int, error)
	Update(ctx context.Context, reg domain.VisitorRegistration) error
	Delete(ctx context.Context, id string) error
}

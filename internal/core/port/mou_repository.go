package port

import (
	"context"
	"time"

	"github.com/campusio/intl-office/internal/core/domain"
)

// MOUFilter narrows memorandum listings.
type MOUFilter struct {
	OwnerID string
	Status  domain.MOUStatus
	Country string
	From    *time.Time
	To      *time.Time
	Search  string
	Limit   int
	Offset  int
}

// MOUReportRow is a flattened memorandum joined with its owner, used by the
// reporting service.
type MOUReportRow struct {
	ID             string
	Title          string
	PartnerName    string
	PartnerCountry string
	OwnerName      string
	Status         domain.MOUStatus
	ProposedAt     *time.Time
	SignedAt       *time.Time
}

// MOURepository persists memoranda of understanding and their transition
// history.
type MOURepository interface {
	Create(ctx context.Context, mou domain.MOU) error
	GetByID(ctx context.Context, id string) (*domain.MOU, error)
	List(ctx context.Context, filter MOUFilter) ([]domain.MOU, error)
	Count(ctx context.Context, filter MOUFilter) (int, error)
	Update(ctx context.Context, mou domain.MOU) error
	// UpdateStatus persists the mutated row and appends the history record
	// in a single transaction.
	UpdateStatus(ctx context.Context, mou domain.MOU, history domain.MOUHistory) error
	Delete(ctx context.Context, id string) error
	ListHistory(ctx context.Context, mouID string) ([]domain.MOUHistory, error)
	ListForReport(ctx context.Context, filter MOUFilter) ([]MOUReportRow, error)
}

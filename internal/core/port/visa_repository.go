package port

import (
	"context"
	"time"

	"github.com/campusio/intl-office/internal/core/domain"
)

// VisaFilter narrows visa-extension listings.
type VisaFilter struct {
	OwnerID string
	Status  domain.VisaStatus
	Country string
	From    *time.Time
	To      *time.Time
	Search  string
	Limit   int
	Offset  int
}

// VisaReportRow is a flattened visa extension joined with its owner, used
// by the reporting service.
type VisaReportRow struct {
	ID             string
	ApplicantName  string
	ApplicantEmail string
	Department     string
	PassportNumber string
	Country        string
	Status         domain.VisaStatus
	SubmittedAt    *time.Time
	RequestedUntil time.Time
}

// VisaExtensionRepository persists visa-extension applications and their
// transition history.
type VisaExtensionRepository interface {
	Create(ctx context.Context, visa domain.VisaExtension) error
	GetByID(ctx context.Context, id string) (*domain.VisaExtension, error)
	List(ctx context.Context, filter VisaFilter) ([]domain.VisaExtension, error)
	Count(ctx context.Context, filter VisaFilter) (int, error)
	Update(ctx context.Context, visa domain.VisaExtension) error
	// UpdateStatus persists the mutated row and appends the history record
	// in a single transaction.
	UpdateStatus(ctx context.Context, visa domain.VisaExtension, history domain.VisaExtensionHistory) error
	Delete(ctx context.Context, id string) error
	ListHistory(ctx context.Context, visaID string) ([]domain.VisaExtensionHistory, error)
	ListExpiring(ctx context.Context, before time.Time) ([]domain.VisaExtension, error)
	ListForReport(ctx context.Context, filter VisaFilter) ([]VisaReportRow, error)
}

package port

import (
	"context"

	"github.com/campusio/intl-office/internal/core/domain"
)

// TranslationFilter narrows translation-request listings.
type TranslationFilter struct {
	OwnerID string
	Status  domain.TranslationStatus
	Search  string
	Limit   int
	Offset  int
}

// TranslationRepository persists translation requests.
type TranslationRepository interface {
	Create(ctx context.Context, req domain.TranslationRequest) error
	GetByID(ctx context.Context, id string) (*domain.TranslationRequest, error)
	List(ctx context.Context, filter TranslationFilter) ([]domain.TranslationRequest, error)
	Count(ctx context.Context, filter TranslationFilter) (int, error)
	Update(ctx context.Context, req domain.TranslationRequest) error
	Delete(ctx context.Context, id string) error
}

package port

import (
	"context"

	"github.com/campusio/intl-office/internal/core/domain"
)

// DocumentRepository persists attachment metadata. Physical bytes are
// handled by FileStore.
type DocumentRepository interface {
	Create(ctx context.Context, doc domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByParent(ctx context.Context, parent domain.DocumentParent, parentID string) ([]domain.Document, error)
	CountRequired(ctx context.Context, parent domain.DocumentParent, parentID string) (int, error)
	SetVerified(ctx context.Context, id string, verified bool) error
	Delete(ctx context.Context, id string) error
}

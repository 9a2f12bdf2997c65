package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/repository"
)

// DocumentRepository implements port.DocumentRepository using PostgreSQL.
type DocumentRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewDocumentRepository wires a PostgreSQL-backed document repository.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied
// transaction.
func (r *DocumentRepository) WithTx(tx pgx.Tx) *DocumentRepository {
	if tx == nil {
		return r
	}
	return &DocumentRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

const documentColumns = `id, parent, parent_id, file_name, stored_path, mime_type, size_bytes,
document_type, is_required, is_verified, uploaded_by, created_at`

// Create inserts a new document metadata row.
func (r *DocumentRepository) Create(ctx context.Context, doc domain.Document) error {
	stmt, args, err := r.builder.Insert("intl.documents").
		Columns(
			"id", "parent", "parent_id", "file_name", "stored_path", "mime_type",
			"size_bytes", "document_type", "is_required", "is_verified", "uploaded_by", "created_at",
		).
		Values(
			doc.ID, doc.Parent, doc.ParentID, doc.FileName, doc.StoredPath, doc.MimeType,
			doc.SizeBytes, doc.DocumentType, doc.IsRequired, doc.IsVerified, doc.UploadedBy, doc.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert document sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	return nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	if err := row.Scan(
		&doc.ID,
		&doc.Parent,
		&doc.ParentID,
		&doc.FileName,
		&doc.StoredPath,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.DocumentType,
		&doc.IsRequired,
		&doc.IsVerified,
		&doc.UploadedBy,
		&doc.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return &doc, nil
}

// GetByID retrieves a document by identifier.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	stmt, args, err := r.builder.Select(documentColumns).
		From("intl.documents").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select document sql: %w", err)
	}

	return scanDocument(r.exec.QueryRow(ctx, stmt, args...))
}

// ListByParent retrieves documents attached to the given request.
func (r *DocumentRepository) ListByParent(ctx context.Context, parent domain.DocumentParent, parentID string) ([]domain.Document, error) {
	stmt, args, err := r.builder.Select(documentColumns).
		From("intl.documents").
		Where(squirrel.Eq{"parent": parent, "parent_id": parentID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list documents sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

// CountRequired returns the number of required documents attached to the
// given request.
func (r *DocumentRepository) CountRequired(ctx context.Context, parent domain.DocumentParent, parentID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("intl.documents").
		Where(squirrel.Eq{"parent": parent, "parent_id": parentID, "is_required": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count required documents sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count required documents: %w", err)
	}

	return count, nil
}

// SetVerified updates the verification flag on a document.
func (r *DocumentRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	stmt, args, err := r.builder.Update("intl.documents").
		Set("is_verified", verified).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build verify document sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("verify document: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a document metadata row.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("intl.documents").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete document sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.DocumentRepository = (*DocumentRepository)(nil)

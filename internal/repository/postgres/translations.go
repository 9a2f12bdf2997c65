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

// TranslationRepository implements port.TranslationRepository using
// PostgreSQL.
type TranslationRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTranslationRepository wires a PostgreSQL-backed translation repository.
func NewTranslationRepository(pool *pgxpool.Pool) *TranslationRepository {
	return &TranslationRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied
// transaction.
func (r *TranslationRepository) WithTx(tx pgx.Tx) *TranslationRepository {
	if tx == nil {
		return r
	}
	return &TranslationRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

const translationColumns = `id, owner_id, source_language, target_language, document_title, page_count,
notes, status, translator_id, processed_at, completed_at, rejected_at, created_at, updated_at`

// Create inserts a new translation-request row.
func (r *TranslationRepository) Create(ctx context.Context, req domain.TranslationRequest) error {
	stmt, args, err := r.builder.Insert("intl.translation_requests").
		Columns(
			"id", "owner_id", "source_language", "target_language", "document_title",
			"page_count", "notes", "status", "translator_id", "processed_at",
			"completed_at", "rejected_at", "created_at", "updated_at",
		).
		Values(
			req.ID, req.OwnerID, req.SourceLanguage, req.TargetLanguage, req.DocumentTitle,
			req.PageCount, req.Notes, req.Status, req.TranslatorID, req.ProcessedAt,
			req.CompletedAt, req.RejectedAt, req.CreatedAt, req.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert translation sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert translation request: %w", err)
	}

	return nil
}

func scanTranslation(row pgx.Row) (*domain.TranslationRequest, error) {
	var req domain.TranslationRequest
	if err := row.Scan(
		&req.ID,
		&req.OwnerID,
		&req.SourceLanguage,
		&req.TargetLanguage,
		&req.DocumentTitle,
		&req.PageCount,
		&req.Notes,
		&req.Status,
		&req.TranslatorID,
		&req.ProcessedAt,
		&req.CompletedAt,
		&req.RejectedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan translation request: %w", err)
	}
	return &req, nil
}

// GetByID retrieves a translation request by identifier.
func (r *TranslationRepository) GetByID(ctx context.Context, id string) (*domain.TranslationRequest, error) {
	stmt, args, err := r.builder.Select(translationColumns).
		From("intl.translation_requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select translation sql: %w", err)
	}

	return scanTranslation(r.exec.QueryRow(ctx, stmt, args...))
}

func (r *TranslationRepository) applyFilter(query squirrel.SelectBuilder, filter port.TranslationFilter) squirrel.SelectBuilder {
	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"owner_id": filter.OwnerID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"document_title": like},
			squirrel.ILike{"notes": like},
		})
	}
	return query
}

// List retrieves translation requests matching the filter, newest first.
func (r *TranslationRepository) List(ctx context.Context, filter port.TranslationFilter) ([]domain.TranslationRequest, error) {
	query := r.applyFilter(r.builder.Select(translationColumns).From("intl.translation_requests"), filter).
		OrderBy("created_at DESC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list translations sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query translation requests: %w", err)
	}
	defer rows.Close()

	reqs := make([]domain.TranslationRequest, 0)
	for rows.Next() {
		req, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translation requests: %w", err)
	}

	return reqs, nil
}

// Count returns the number of translation requests matching the filter.
func (r *TranslationRepository) Count(ctx context.Context, filter port.TranslationFilter) (int, error) {
	stmt, args, err := r.applyFilter(r.builder.Select("COUNT(*)").From("intl.translation_requests"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count translations sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count translation requests: %w", err)
	}

	return count, nil
}

// Update persists the mutated translation request.
func (r *TranslationRepository) Update(ctx context.Context, req domain.TranslationRequest) error {
	stmt, args, err := r.builder.Update("intl.translation_requests").
		Set("source_language", req.SourceLanguage).
		Set("target_language", req.TargetLanguage).
		Set("document_title", req.DocumentTitle).
		Set("page_count", req.PageCount).
		Set("notes", req.Notes).
		Set("status", req.Status).
		Set("translator_id", req.TranslatorID).
		Set("processed_at", req.ProcessedAt).
		Set("completed_at", req.CompletedAt).
		Set("rejected_at", req.RejectedAt).
		Set("updated_at", req.UpdatedAt).
		Where(squirrel.Eq{"id": req.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update translation sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update translation request: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a translation request.
func (r *TranslationRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("intl.translation_requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete translation sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete translation request: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.TranslationRepository = (*TranslationRepository)(nil)

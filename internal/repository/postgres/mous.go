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

// MOURepository implements port.MOURepository using PostgreSQL.
type MOURepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewMOURepository wires a PostgreSQL-backed memorandum repository.
func NewMOURepository(pool *pgxpool.Pool) *MOURepository {
	return &MOURepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied
// transaction.
func (r *MOURepository) WithTx(tx pgx.Tx) *MOURepository {
	if tx == nil {
		return r
	}
	return &MOURepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

const mouColumns = `id, owner_id, partner_name, partner_country, title, summary, start_date, end_date,
status, reviewer_id, revision_count, proposed_at, reviewed_at, approved_at, signed_at, rejected_at,
created_at, updated_at`

// Create inserts a new memorandum row.
func (r *MOURepository) Create(ctx context.Context, mou domain.MOU) error {
	stmt, args, err := r.builder.Insert("intl.mous").
		Columns(
			"id", "owner_id", "partner_name", "partner_country", "title", "summary",
			"start_date", "end_date", "status", "reviewer_id", "revision_count",
			"proposed_at", "reviewed_at", "approved_at", "signed_at", "rejected_at",
			"created_at", "updated_at",
		).
		Values(
			mou.ID, mou.OwnerID, mou.PartnerName, mou.PartnerCountry, mou.Title, mou.Summary,
			mou.StartDate, mou.EndDate, mou.Status, mou.ReviewerID, mou.RevisionCount,
			mou.ProposedAt, mou.ReviewedAt, mou.ApprovedAt, mou.SignedAt, mou.RejectedAt,
			mou.CreatedAt, mou.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert mou sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert mou: %w", err)
	}

	return nil
}

func scanMOU(row pgx.Row) (*domain.MOU, error) {
	var mou domain.MOU
	if err := row.Scan(
		&mou.ID,
		&mou.OwnerID,
		&mou.PartnerName,
		&mou.PartnerCountry,
		&mou.Title,
		&mou.Summary,
		&mou.StartDate,
		&mou.EndDate,
		&mou.Status,
		&mou.ReviewerID,
		&mou.RevisionCount,
		&mou.ProposedAt,
		&mou.ReviewedAt,
		&mou.ApprovedAt,
		&mou.SignedAt,
		&mou.RejectedAt,
		&mou.CreatedAt,
		&mou.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan mou: %w", err)
	}
	return &mou, nil
}

// GetByID retrieves a memorandum by identifier.
func (r *MOURepository) GetByID(ctx context.Context, id string) (*domain.MOU, error) {
	stmt, args, err := r.builder.Select(mouColumns).
		From("intl.mous").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select mou sql: %w", err)
	}

	return scanMOU(r.exec.QueryRow(ctx, stmt, args...))
}

func (r *MOURepository) applyFilter(query squirrel.SelectBuilder, filter port.MOUFilter) squirrel.SelectBuilder {
	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"owner_id": filter.OwnerID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Country != "" {
		query = query.Where(squirrel.Eq{"partner_country": filter.Country})
	}
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.LtOrEq{"created_at": *filter.To})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"title": like},
			squirrel.ILike{"partner_name": like},
		})
	}
	return query
}

// List retrieves memoranda matching the filter, newest first.
func (r *MOURepository) List(ctx context.Context, filter port.MOUFilter) ([]domain.MOU, error) {
	query := r.applyFilter(r.builder.Select(mouColumns).From("intl.mous"), filter).
		OrderBy("created_at DESC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list mous sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query mous: %w", err)
	}
	defer rows.Close()

	mous := make([]domain.MOU, 0)
	for rows.Next() {
		mou, err := scanMOU(rows)
		if err != nil {
			return nil, err
		}
		mous = append(mous, *mou)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mous: %w", err)
	}

	return mous, nil
}

// Count returns the number of memoranda matching the filter.
func (r *MOURepository) Count(ctx context.Context, filter port.MOUFilter) (int, error) {
	stmt, args, err := r.applyFilter(r.builder.Select("COUNT(*)").From("intl.mous"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count mous sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count mous: %w", err)
	}

	return count, nil
}

func (r *MOURepository) update(ctx context.Context, exec pgExecutor, mou domain.MOU) error {
	stmt, args, err := r.builder.Update("intl.mous").
		Set("partner_name", mou.PartnerName).
		Set("partner_country", mou.PartnerCountry).
		Set("title", mou.Title).
		Set("summary", mou.Summary).
		Set("start_date", mou.StartDate).
		Set("end_date", mou.EndDate).
		Set("status", mou.Status).
		Set("reviewer_id", mou.ReviewerID).
		Set("revision_count", mou.RevisionCount).
		Set("proposed_at", mou.ProposedAt).
		Set("reviewed_at", mou.ReviewedAt).
		Set("approved_at", mou.ApprovedAt).
		Set("signed_at", mou.SignedAt).
		Set("rejected_at", mou.RejectedAt).
		Set("updated_at", mou.UpdatedAt).
		Where(squirrel.Eq{"id": mou.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update mou sql: %w", err)
	}

	res, err := exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update mou: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Update persists the mutated memorandum.
func (r *MOURepository) Update(ctx context.Context, mou domain.MOU) error {
	return r.update(ctx, r.exec, mou)
}

func (r *MOURepository) insertHistory(ctx context.Context, exec pgExecutor, history domain.MOUHistory) error {
	stmt, args, err := r.builder.Insert("intl.mou_history").
		Columns("id", "mou_id", "from_status", "to_status", "comment", "changed_by", "changed_at").
		Values(history.ID, history.MOUID, history.FromStatus, history.ToStatus, history.Comment, history.ChangedBy, history.ChangedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert mou history sql: %w", err)
	}

	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert mou history: %w", err)
	}

	return nil
}

// UpdateStatus persists the mutated row and appends the history record in a
// single transaction.
func (r *MOURepository) UpdateStatus(ctx context.Context, mou domain.MOU, history domain.MOUHistory) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin status transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := r.update(ctx, tx, mou); err != nil {
		return err
	}
	if err := r.insertHistory(ctx, tx, history); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit status transaction: %w", err)
	}

	return nil
}

// Delete removes a memorandum (history rows cascade via FK).
func (r *MOURepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("intl.mous").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete mou sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete mou: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListHistory returns the transition history for a memorandum, oldest first.
func (r *MOURepository) ListHistory(ctx context.Context, mouID string) ([]domain.MOUHistory, error) {
	stmt, args, err := r.builder.Select("id", "mou_id", "from_status", "to_status", "comment", "changed_by", "changed_at").
		From("intl.mou_history").
		Where(squirrel.Eq{"mou_id": mouID}).
		OrderBy("changed_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build mou history sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query mou history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.MOUHistory, 0)
	for rows.Next() {
		var entry domain.MOUHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.MOUID,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.Comment,
			&entry.ChangedBy,
			&entry.ChangedAt,
		); err != nil {
			return nil, fmt.Errorf("scan mou history: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mou history: %w", err)
	}

	return entries, nil
}

// ListForReport returns flattened memorandum rows joined with owner details.
func (r *MOURepository) ListForReport(ctx context.Context, filter port.MOUFilter) ([]port.MOUReportRow, error) {
	query := r.builder.Select(
		"m.id",
		"m.title",
		"m.partner_name",
		"m.partner_country",
		"u.full_name",
		"m.status",
		"m.proposed_at",
		"m.signed_at",
	).
		From("intl.mous m").
		Join("intl.users u ON u.id = m.owner_id").
		OrderBy("m.created_at DESC")

	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"m.owner_id": filter.OwnerID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"m.status": filter.Status})
	}
	if filter.Country != "" {
		query = query.Where(squirrel.Eq{"m.partner_country": filter.Country})
	}
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"m.created_at": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.LtOrEq{"m.created_at": *filter.To})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build mou report sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query mou report rows: %w", err)
	}
	defer rows.Close()

	report := make([]port.MOUReportRow, 0)
	for rows.Next() {
		var row port.MOUReportRow
		if err := rows.Scan(
			&row.ID,
			&row.Title,
			&row.PartnerName,
			&row.PartnerCountry,
			&row.OwnerName,
			&row.Status,
			&row.ProposedAt,
			&row.SignedAt,
		); err != nil {
			return nil, fmt.Errorf("scan mou report row: %w", err)
		}
		report = append(report, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mou report rows: %w", err)
	}

	return report, nil
}

var _ port.MOURepository = (*MOURepository)(nil)

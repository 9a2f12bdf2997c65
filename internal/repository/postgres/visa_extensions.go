package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/repository"
)

// VisaExtensionRepository implements port.VisaExtensionRepository using
// PostgreSQL.
type VisaExtensionRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewVisaExtensionRepository wires a PostgreSQL-backed visa repository.
func NewVisaExtensionRepository(pool *pgxpool.Pool) *VisaExtensionRepository {
	return &VisaExtensionRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied
// transaction.
func (r *VisaExtensionRepository) WithTx(tx pgx.Tx) *VisaExtensionRepository {
	if tx == nil {
		return r
	}
	return &VisaExtensionRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

const visaColumns = `id, owner_id, passport_number, country, current_visa_expiry, requested_until,
reason, status, reviewer_id, revision_count, submitted_at, reviewed_at, approved_at, rejected_at,
extended_at, created_at, updated_at`

// Create inserts a new visa-extension row.
func (r *VisaExtensionRepository) Create(ctx context.Context, visa domain.VisaExtension) error {
	stmt, args, err := r.builder.Insert("intl.visa_extensions").
		Columns(
			"id", "owner_id", "passport_number", "country", "current_visa_expiry",
			"requested_until", "reason", "status", "reviewer_id", "revision_count",
			"submitted_at", "reviewed_at", "approved_at", "rejected_at", "extended_at",
			"created_at", "updated_at",
		).
		Values(
			visa.ID, visa.OwnerID, visa.PassportNumber, visa.Country, visa.CurrentVisaExpiry,
			visa.RequestedUntil, visa.Reason, visa.Status, visa.ReviewerID, visa.RevisionCount,
			visa.SubmittedAt, visa.ReviewedAt, visa.ApprovedAt, visa.RejectedAt, visa.ExtendedAt,
			visa.CreatedAt, visa.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert visa sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert visa extension: %w", err)
	}

	return nil
}

func scanVisa(row pgx.Row) (*domain.VisaExtension, error) {
	var visa domain.VisaExtension
	if err := row.Scan(
		&visa.ID,
		&visa.OwnerID,
		&visa.PassportNumber,
		&visa.Country,
		&visa.CurrentVisaExpiry,
		&visa.RequestedUntil,
		&visa.Reason,
		&visa.Status,
		&visa.ReviewerID,
		&visa.RevisionCount,
		&visa.SubmittedAt,
		&visa.ReviewedAt,
		&visa.ApprovedAt,
		&visa.RejectedAt,
		&visa.ExtendedAt,
		&visa.CreatedAt,
		&visa.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan visa extension: %w", err)
	}
	return &visa, nil
}

// GetByID retrieves a visa extension by identifier.
func (r *VisaExtensionRepository) GetByID(ctx context.Context, id string) (*domain.VisaExtension, error) {
	stmt, args, err := r.builder.Select(visaColumns).
		From("intl.visa_extensions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select visa sql: %w", err)
	}

	return scanVisa(r.exec.QueryRow(ctx, stmt, args...))
}

func (r *VisaExtensionRepository) applyFilter(query squirrel.SelectBuilder, filter port.VisaFilter) squirrel.SelectBuilder {
	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"owner_id": filter.OwnerID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Country != "" {
		query = query.Where(squirrel.Eq{"country": filter.Country})
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
			squirrel.ILike{"passport_number": like},
			squirrel.ILike{"reason": like},
		})
	}
	return query
}

// List retrieves visa extensions matching the filter, newest first.
func (r *VisaExtensionRepository) List(ctx context.Context, filter port.VisaFilter) ([]domain.VisaExtension, error) {
	query := r.applyFilter(r.builder.Select(visaColumns).From("intl.visa_extensions"), filter).
		OrderBy("created_at DESC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list visas sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query visa extensions: %w", err)
	}
	defer rows.Close()

	visas := make([]domain.VisaExtension, 0)
	for rows.Next() {
		visa, err := scanVisa(rows)
		if err != nil {
			return nil, err
		}
		visas = append(visas, *visa)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visa extensions: %w", err)
	}

	return visas, nil
}

// Count returns the number of visa extensions matching the filter.
func (r *VisaExtensionRepository) Count(ctx context.Context, filter port.VisaFilter) (int, error) {
	stmt, args, err := r.applyFilter(r.builder.Select("COUNT(*)").From("intl.visa_extensions"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count visas sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count visa extensions: %w", err)
	}

	return count, nil
}

func (r *VisaExtensionRepository) update(ctx context.Context, exec pgExecutor, visa domain.VisaExtension) error {
	stmt, args, err := r.builder.Update("intl.visa_extensions").
		Set("passport_number", visa.PassportNumber).
		Set("country", visa.Country).
		Set("current_visa_expiry", visa.CurrentVisaExpiry).
		Set("requested_until", visa.RequestedUntil).
		Set("reason", visa.Reason).
		Set("status", visa.Status).
		Set("reviewer_id", visa.ReviewerID).
		Set("revision_count", visa.RevisionCount).
		Set("submitted_at", visa.SubmittedAt).
		Set("reviewed_at", visa.ReviewedAt).
		Set("approved_at", visa.ApprovedAt).
		Set("rejected_at", visa.RejectedAt).
		Set("extended_at", visa.ExtendedAt).
		Set("updated_at", visa.UpdatedAt).
		Where(squirrel.Eq{"id": visa.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update visa sql: %w", err)
	}

	res, err := exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update visa extension: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Update persists the mutated visa extension.
func (r *VisaExtensionRepository) Update(ctx context.Context, visa domain.VisaExtension) error {
	return r.update(ctx, r.exec, visa)
}

func (r *VisaExtensionRepository) insertHistory(ctx context.Context, exec pgExecutor, history domain.VisaExtensionHistory) error {
	stmt, args, err := r.builder.Insert("intl.visa_extension_history").
		Columns("id", "visa_extension_id", "from_status", "to_status", "comment", "changed_by", "changed_at").
		Values(history.ID, history.VisaExtensionID, history.FromStatus, history.ToStatus, history.Comment, history.ChangedBy, history.ChangedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert visa history sql: %w", err)
	}

	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert visa history: %w", err)
	}

	return nil
}

// UpdateStatus persists the mutated row and appends the history record in a
// single transaction, so the entity and its audit trail cannot diverge.
func (r *VisaExtensionRepository) UpdateStatus(ctx context.Context, visa domain.VisaExtension, history domain.VisaExtensionHistory) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin status transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := r.update(ctx, tx, visa); err != nil {
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

// Delete removes a visa extension (history rows cascade via FK).
func (r *VisaExtensionRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("intl.visa_extensions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete visa sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete visa extension: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListHistory returns the transition history for a visa extension, oldest
// first.
func (r *VisaExtensionRepository) ListHistory(ctx context.Context, visaID string) ([]domain.VisaExtensionHistory, error) {
	stmt, args, err := r.builder.Select("id", "visa_extension_id", "from_status", "to_status", "comment", "changed_by", "changed_at").
		From("intl.visa_extension_history").
		Where(squirrel.Eq{"visa_extension_id": visaID}).
		OrderBy("changed_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build visa history sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query visa history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.VisaExtensionHistory, 0)
	for rows.Next() {
		var entry domain.VisaExtensionHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.VisaExtensionID,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.Comment,
			&entry.ChangedBy,
			&entry.ChangedAt,
		); err != nil {
			return nil, fmt.Errorf("scan visa history: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visa history: %w", err)
	}

	return entries, nil
}

// ListExpiring returns approved or extended visa extensions whose requested
// end date falls before the given instant.
func (r *VisaExtensionRepository) ListExpiring(ctx context.Context, before time.Time) ([]domain.VisaExtension, error) {
	stmt, args, err := r.builder.Select(visaColumns).
		From("intl.visa_extensions").
		Where(squirrel.Eq{"status": []domain.VisaStatus{domain.VisaStatusApproved, domain.VisaStatusExtended}}).
		Where(squirrel.LtOrEq{"requested_until": before}).
		OrderBy("requested_until ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build expiring visas sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query expiring visas: %w", err)
	}
	defer rows.Close()

	visas := make([]domain.VisaExtension, 0)
	for rows.Next() {
		visa, err := scanVisa(rows)
		if err != nil {
			return nil, err
		}
		visas = append(visas, *visa)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expiring visas: %w", err)
	}

	return visas, nil
}

// ListForReport returns flattened visa rows joined with owner details.
func (r *VisaExtensionRepository) ListForReport(ctx context.Context, filter port.VisaFilter) ([]port.VisaReportRow, error) {
	query := r.builder.Select(
		"v.id",
		"u.full_name",
		"u.email",
		"u.department",
		"v.passport_number",
		"v.country",
		"v.status",
		"v.submitted_at",
		"v.requested_until",
	).
		From("intl.visa_extensions v").
		Join("intl.users u ON u.id = v.owner_id").
		OrderBy("v.created_at DESC")

	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"v.owner_id": filter.OwnerID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"v.status": filter.Status})
	}
	if filter.Country != "" {
		query = query.Where(squirrel.Eq{"v.country": filter.Country})
	}
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"v.created_at": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.LtOrEq{"v.created_at": *filter.To})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build visa report sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query visa report rows: %w", err)
	}
	defer rows.Close()

	report := make([]port.VisaReportRow, 0)
	for rows.Next() {
		var row port.VisaReportRow
		if err := rows.Scan(
			&row.ID,
			&row.ApplicantName,
			&row.ApplicantEmail,
			&row.Department,
			&row.PassportNumber,
			&row.Country,
			&row.Status,
			&row.SubmittedAt,
			&row.RequestedUntil,
		); err != nil {
			return nil, fmt.Errorf("scan visa report row: %w", err)
		}
		report = append(report, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visa report rows: %w", err)
	}

	return report, nil
}

var _ port.VisaExtensionRepository = (*VisaExtensionRepository)(nil)

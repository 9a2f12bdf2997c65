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

// VisitorRepository implements port.VisitorRepository using PostgreSQL.
type VisitorRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewVisitorRepository wires a PostgreSQL-backed visitor repository.
func NewVisitorRepository(pool *pgxpool.Pool) *VisitorRepository {
	return &VisitorRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied
// transaction.
func (r *VisitorRepository) WithTx(tx pgx.Tx) *VisitorRepository {
	if tx == nil {
		return r
	}
	return &VisitorRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

const visitorColumns = `id, owner_id, visitor_name, visitor_email, country, institution, purpose,
arrival_date, departure_date, status, reviewer_id, reviewed_at, approved_at, rejected_at,
completed_at, created_at, updated_at`

// Create inserts a new visitor-registration row.
func (r *VisitorRepository) Create(ctx context.Context, reg domain.VisitorRegistration) error {
	stmt, args, err := r.builder.Insert("intl.visitor_registrations").
		Columns(
			"id", "owner_id", "visitor_name", "visitor_email", "country", "institution",
			"purpose", "arrival_date", "departure_date", "status", "reviewer_id",
			"reviewed_at", "approved_at", "rejected_at", "completed_at", "created_at", "updated_at",
		).
		Values(
			reg.ID, reg.OwnerID, reg.VisitorName, reg.VisitorEmail, reg.Country, reg.Institution,
			reg.Purpose, reg.ArrivalDate, reg.DepartureDate, reg.Status, reg.ReviewerID,
			reg.ReviewedAt, reg.ApprovedAt, reg.RejectedAt, reg.CompletedAt, reg.CreatedAt, reg.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert visitor sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert visitor registration: %w", err)
	}

	return nil
}

func scanVisitor(row pgx.Row) (*domain.VisitorRegistration, error) {
	var reg domain.VisitorRegistration
	if err := row.Scan(
		&reg.ID,
		&reg.OwnerID,
		&reg.VisitorName,
		&reg.VisitorEmail,
		&reg.Country,
		&reg.Institution,
		&reg.Purpose,
		&reg.ArrivalDate,
		&reg.DepartureDate,
		&reg.Status,
		&reg.ReviewerID,
		&reg.ReviewedAt,
		&reg.ApprovedAt,
		&reg.RejectedAt,
		&reg.CompletedAt,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan visitor registration: %w", err)
	}
	return &reg, nil
}

// GetByID retrieves a visitor registration by identifier.
func (r *VisitorRepository) GetByID(ctx context.Context, id string) (*domain.VisitorRegistration, error) {
	stmt, args, err := r.builder.Select(visitorColumns).
		From("intl.visitor_registrations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select visitor sql: %w", err)
	}

	return scanVisitor(r.exec.QueryRow(ctx, stmt, args...))
}

func (r *VisitorRepository) applyFilter(query squirrel.SelectBuilder, filter port.VisitorFilter) squirrel.SelectBuilder {
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
		query = query.Where(squirrel.GtOrEq{"arrival_date": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.LtOrEq{"arrival_date": *filter.To})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"visitor_name": like},
			squirrel.ILike{"institution": like},
		})
	}
	return query
}

// List retrieves visitor registrations matching the filter, soonest arrival
// first.
func (r *VisitorRepository) List(ctx context.Context, filter port.VisitorFilter) ([]domain.VisitorRegistration, error) {
	query := r.applyFilter(r.builder.Select(visitorColumns).From("intl.visitor_registrations"), filter).
		OrderBy("arrival_date ASC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list visitors sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query visitor registrations: %w", err)
	}
	defer rows.Close()

	regs := make([]domain.VisitorRegistration, 0)
	for rows.Next() {
		reg, err := scanVisitor(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visitor registrations: %w", err)
	}

	return regs, nil
}

// Count returns the number of visitor registrations matching the filter.
func (r *VisitorRepository) Count(ctx context.Context, filter port.VisitorFilter) (int, error) {
	stmt, args, err := r.applyFilter(r.builder.Select("COUNT(*)").From("intl.visitor_registrations"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count visitors sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count visitor registrations: %w", err)
	}

	return count, nil
}

// Update persists the mutated visitor registration.
func (r *VisitorRepository) Update(ctx context.Context, reg domain.VisitorRegistration) error {
	stmt, args, err := r.builder.Update("intl.visitor_registrations").
		Set("visitor_name", reg.VisitorName).
		Set("visitor_email", reg.VisitorEmail).
		Set("country", reg.Country).
		Set("institution", reg.Institution).
		Set("purpose", reg.Purpose).
		Set("arrival_date", reg.ArrivalDate).
		Set("departure_date", reg.DepartureDate).
		Set("status", reg.Status).
		Set("reviewer_id", reg.ReviewerID).
		Set("reviewed_at", reg.ReviewedAt).
		Set("approved_at", reg.ApprovedAt).
		Set("rejected_at", reg.RejectedAt).
		Set("completed_at", reg.CompletedAt).
		Set("updated_at", reg.UpdatedAt).
		Where(squirrel.Eq{"id": reg.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update visitor sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update visitor registration: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a visitor registration.
func (r *VisitorRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("intl.visitor_registrations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete visitor sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete visitor registration: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.VisitorRepository = (*VisitorRepository)(nil)

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telesales/callops-service/internal/domain"
)

// ProtocolFilter captures protocol listing parameters.
type ProtocolFilter struct {
	OwnerID      *string
	OpenedByID   *string
	DepartmentID *string
	Statuses     []domain.ProtocolStatus
}

// ProtocolUpdate carries the mutable protocol fields. Nil fields are left
// untouched; updated_at always advances.
type ProtocolUpdate struct {
	Status            *domain.ProtocolStatus
	OwnerID           *string
	ResolutionSummary *string
	ClosedAt          *time.Time
}

// ProtocolRepository encapsulates protocol persistence. There is no delete:
// closed protocols are archived, never removed.
type ProtocolRepository interface {
	Create(ctx context.Context, p *domain.Protocol) error
	GetByID(ctx context.Context, id string) (*domain.Protocol, error)
	Update(ctx context.Context, protocolID string, update ProtocolUpdate) error
	List(ctx context.Context, filter ProtocolFilter) ([]domain.Protocol, error)
}

type protocolRepository struct {
	pool *pgxpool.Pool
}

// NewProtocolRepository instantiates repository.
func NewProtocolRepository(pool *pgxpool.Pool) ProtocolRepository {
	return &protocolRepository{pool: pool}
}

func (r *protocolRepository) Create(ctx context.Context, p *domain.Protocol) error {
	const query = `
        INSERT INTO protocols (protocol_number, client_id, opened_by_id, owner_id, origin, department_id,
            title, description, priority, status, opened_at, updated_at, sla_due_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		p.ProtocolNumber,
		p.ClientID,
		p.OpenedByID,
		p.OwnerID,
		p.Origin,
		p.DepartmentID,
		p.Title,
		p.Description,
		p.Priority,
		p.Status,
		p.OpenedAt,
		p.UpdatedAt,
		p.SLADueAt,
	).Scan(&p.ID)
}

func (r *protocolRepository) GetByID(ctx context.Context, id string) (*domain.Protocol, error) {
	const query = `
        SELECT id, protocol_number, client_id, opened_by_id, owner_id, origin, department_id,
               title, description, priority, status, opened_at, updated_at, closed_at, sla_due_at, resolution_summary
        FROM protocols WHERE id=$1`
	var p domain.Protocol
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.ProtocolNumber,
		&p.ClientID,
		&p.OpenedByID,
		&p.OwnerID,
		&p.Origin,
		&p.DepartmentID,
		&p.Title,
		&p.Description,
		&p.Priority,
		&p.Status,
		&p.OpenedAt,
		&p.UpdatedAt,
		&p.ClosedAt,
		&p.SLADueAt,
		&p.ResolutionSummary,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *protocolRepository) Update(ctx context.Context, protocolID string, update ProtocolUpdate) error {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	if update.Status != nil {
		args = append(args, *update.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if update.OwnerID != nil {
		args = append(args, *update.OwnerID)
		sets = append(sets, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if update.ResolutionSummary != nil {
		args = append(args, *update.ResolutionSummary)
		sets = append(sets, fmt.Sprintf("resolution_summary=$%d", len(args)))
	}
	if update.ClosedAt != nil {
		args = append(args, *update.ClosedAt)
		sets = append(sets, fmt.Sprintf("closed_at=$%d", len(args)))
	}

	args = append(args, protocolID)
	query := fmt.Sprintf("UPDATE protocols SET %s WHERE id=$%d", strings.Join(sets, ", "), len(args))
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *protocolRepository) List(ctx context.Context, filter ProtocolFilter) ([]domain.Protocol, error) {
	base := `SELECT id, protocol_number, client_id, opened_by_id, owner_id, origin, department_id,
                    title, description, priority, status, opened_at, updated_at, closed_at, sla_due_at, resolution_summary
             FROM protocols`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil && filter.OpenedByID != nil {
		args = append(args, *filter.OwnerID, *filter.OpenedByID)
		clauses = append(clauses, fmt.Sprintf("(owner_id=$%d OR opened_by_id=$%d)", len(args)-1, len(args)))
	} else if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	} else if filter.OpenedByID != nil {
		args = append(args, *filter.OpenedByID)
		clauses = append(clauses, fmt.Sprintf("opened_by_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY opened_at DESC", base, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Protocol
	for rows.Next() {
		var p domain.Protocol
		if err := rows.Scan(
			&p.ID,
			&p.ProtocolNumber,
			&p.ClientID,
			&p.OpenedByID,
			&p.OwnerID,
			&p.Origin,
			&p.DepartmentID,
			&p.Title,
			&p.Description,
			&p.Priority,
			&p.Status,
			&p.OpenedAt,
			&p.UpdatedAt,
			&p.ClosedAt,
			&p.SLADueAt,
			&p.ResolutionSummary,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

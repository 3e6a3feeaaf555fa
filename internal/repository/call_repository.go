package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telesales/callops-service/internal/domain"
)

// CallRepository stores immutable call records.
type CallRepository interface {
	Create(ctx context.Context, call *domain.CallRecord) error
	List(ctx context.Context) ([]domain.CallRecord, error)
	ListSince(ctx context.Context, since time.Time) ([]domain.CallRecord, error)
	HasRecentCall(ctx context.Context, clientID string, since time.Time) (bool, error)
}

type callRepository struct {
	pool *pgxpool.Pool
}

// NewCallRepository builds repository.
func NewCallRepository(pool *pgxpool.Pool) CallRepository {
	return &callRepository{pool: pool}
}

func (r *callRepository) Create(ctx context.Context, call *domain.CallRecord) error {
	const query = `
        INSERT INTO call_logs (task_id, operator_id, client_id, call_type, responses, duration, report_time, start_time, end_time, protocol_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		call.TaskID,
		call.OperatorID,
		call.ClientID,
		call.Type,
		call.Responses,
		call.Duration,
		call.ReportTime,
		call.StartTime,
		call.EndTime,
		call.ProtocolID,
	).Scan(&call.ID)
}

func (r *callRepository) List(ctx context.Context) ([]domain.CallRecord, error) {
	const query = `
        SELECT id, task_id, operator_id, client_id, call_type, responses, duration, report_time, start_time, end_time, protocol_id
        FROM call_logs ORDER BY start_time DESC`
	return r.fetch(ctx, query)
}

func (r *callRepository) ListSince(ctx context.Context, since time.Time) ([]domain.CallRecord, error) {
	const query = `
        SELECT id, task_id, operator_id, client_id, call_type, responses, duration, report_time, start_time, end_time, protocol_id
        FROM call_logs WHERE start_time >= $1 ORDER BY start_time DESC`
	return r.fetch(ctx, query, since)
}

func (r *callRepository) HasRecentCall(ctx context.Context, clientID string, since time.Time) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM call_logs WHERE client_id=$1 AND start_time >= $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, clientID, since).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *callRepository) fetch(ctx context.Context, query string, args ...any) ([]domain.CallRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CallRecord
	for rows.Next() {
		var call domain.CallRecord
		if err := rows.Scan(
			&call.ID,
			&call.TaskID,
			&call.OperatorID,
			&call.ClientID,
			&call.Type,
			&call.Responses,
			&call.Duration,
			&call.ReportTime,
			&call.StartTime,
			&call.EndTime,
			&call.ProtocolID,
		); err != nil {
			return nil, err
		}
		result = append(result, call)
	}
	return result, rows.Err()
}

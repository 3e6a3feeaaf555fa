package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telesales/callops-service/internal/domain"
)

// OperatorEventRepository stores the append-only operator activity log.
type OperatorEventRepository interface {
	Append(ctx context.Context, event *domain.OperatorEvent) error
	ListRange(ctx context.Context, from, to time.Time) ([]domain.OperatorEvent, error)
}

type operatorEventRepository struct {
	pool *pgxpool.Pool
}

// NewOperatorEventRepository builds repository.
func NewOperatorEventRepository(pool *pgxpool.Pool) OperatorEventRepository {
	return &operatorEventRepository{pool: pool}
}

func (r *operatorEventRepository) Append(ctx context.Context, event *domain.OperatorEvent) error {
	const query = `
        INSERT INTO operator_events (operator_id, task_id, event_type, note)
        VALUES ($1,$2,$3,$4)
        RETURNING id, timestamp`
	return r.pool.QueryRow(ctx, query,
		event.OperatorID,
		event.TaskID,
		event.EventType,
		event.Note,
	).Scan(&event.ID, &event.Timestamp)
}

func (r *operatorEventRepository) ListRange(ctx context.Context, from, to time.Time) ([]domain.OperatorEvent, error) {
	const query = `
        SELECT id, operator_id, task_id, event_type, note, timestamp
        FROM operator_events WHERE timestamp >= $1 AND timestamp <= $2 ORDER BY timestamp ASC`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OperatorEvent
	for rows.Next() {
		var event domain.OperatorEvent
		if err := rows.Scan(
			&event.ID,
			&event.OperatorID,
			&event.TaskID,
			&event.EventType,
			&event.Note,
			&event.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

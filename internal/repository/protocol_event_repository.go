package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telesales/callops-service/internal/domain"
)

// ProtocolEventRepository stores the append-only protocol audit log.
type ProtocolEventRepository interface {
	Append(ctx context.Context, event *domain.ProtocolEvent) error
	ListByProtocol(ctx context.Context, protocolID string) ([]domain.ProtocolEvent, error)
}

type protocolEventRepository struct {
	pool *pgxpool.Pool
}

// NewProtocolEventRepository builds repository.
func NewProtocolEventRepository(pool *pgxpool.Pool) ProtocolEventRepository {
	return &protocolEventRepository{pool: pool}
}

func (r *protocolEventRepository) Append(ctx context.Context, event *domain.ProtocolEvent) error {
	const query = `
        INSERT INTO protocol_events (protocol_id, event_type, old_value, new_value, note, actor_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		event.ProtocolID,
		event.EventType,
		event.OldValue,
		event.NewValue,
		event.Note,
		event.ActorID,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *protocolEventRepository) ListByProtocol(ctx context.Context, protocolID string) ([]domain.ProtocolEvent, error) {
	const query = `
        SELECT id, protocol_id, event_type, old_value, new_value, note, actor_id, created_at
        FROM protocol_events WHERE protocol_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, protocolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProtocolEvent
	for rows.Next() {
		var event domain.ProtocolEvent
		if err := rows.Scan(
			&event.ID,
			&event.ProtocolID,
			&event.EventType,
			&event.OldValue,
			&event.NewValue,
			&event.Note,
			&event.ActorID,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

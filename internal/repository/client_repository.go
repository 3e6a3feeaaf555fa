package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telesales/callops-service/internal/domain"
)

// ClientRepository manages client persistence keyed by normalized phone.
type ClientRepository interface {
	Upsert(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	TouchLastInteraction(ctx context.Context, clientID string, at time.Time) error
}

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository builds the repository.
func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &clientRepository{pool: pool}
}

// Upsert inserts or updates by normalized phone, merging equipment items
// with the existing row rather than overwriting them.
func (r *clientRepository) Upsert(ctx context.Context, client *domain.Client) error {
	phone := domain.NormalizePhone(client.Phone)
	if phone == "" {
		return errors.New("phone required")
	}
	client.Phone = phone

	existing, err := r.GetByPhone(ctx, phone)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if existing != nil {
		client.Items = domain.MergeItems(existing.Items, client.Items)
		if client.Address == "" {
			client.Address = existing.Address
		}
		client.LastInteraction = existing.LastInteraction
	}
	if client.Acceptance == "" {
		client.Acceptance = domain.LevelMedium
	}
	if client.Satisfaction == "" {
		client.Satisfaction = domain.LevelMedium
	}

	const query = `
        INSERT INTO clients (name, phone, address, items, acceptance, satisfaction, last_interaction)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (phone) DO UPDATE SET
            name=EXCLUDED.name, address=EXCLUDED.address, items=EXCLUDED.items, updated_at=NOW()
        RETURNING id, last_interaction, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		client.Name,
		client.Phone,
		client.Address,
		client.Items,
		client.Acceptance,
		client.Satisfaction,
		client.LastInteraction,
	).Scan(&client.ID, &client.LastInteraction, &client.CreatedAt, &client.UpdatedAt)
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	const query = `
        SELECT id, name, phone, address, items, acceptance, satisfaction, last_interaction, created_at, updated_at
        FROM clients WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *clientRepository) GetByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	const query = `
        SELECT id, name, phone, address, items, acceptance, satisfaction, last_interaction, created_at, updated_at
        FROM clients WHERE phone=$1`
	return r.fetchSingle(ctx, query, phone)
}

func (r *clientRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Client, error) {
	var client domain.Client
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&client.ID,
		&client.Name,
		&client.Phone,
		&client.Address,
		&client.Items,
		&client.Acceptance,
		&client.Satisfaction,
		&client.LastInteraction,
		&client.CreatedAt,
		&client.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context) ([]domain.Client, error) {
	const query = `
        SELECT id, name, phone, address, items, acceptance, satisfaction, last_interaction, created_at, updated_at
        FROM clients ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Client
	for rows.Next() {
		var client domain.Client
		if err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.Phone,
			&client.Address,
			&client.Items,
			&client.Acceptance,
			&client.Satisfaction,
			&client.LastInteraction,
			&client.CreatedAt,
			&client.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, client)
	}
	return result, rows.Err()
}

func (r *clientRepository) TouchLastInteraction(ctx context.Context, clientID string, at time.Time) error {
	const query = `UPDATE clients SET last_interaction=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, at, clientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

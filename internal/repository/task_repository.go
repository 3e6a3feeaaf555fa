package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telesales/callops-service/internal/domain"
)

// TaskFilter captures task listing parameters. Results are always ordered
// by creation time ascending; the dedup sweep relies on that ordering.
type TaskFilter struct {
	AssignedTo *string
	ClientID   *string
	Type       *domain.CallType
	Statuses   []domain.TaskStatus
}

// TaskRepository encapsulates task persistence.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus, skipReason *string) error
	Delete(ctx context.Context, taskID string) error
	DeleteBatch(ctx context.Context, ids []string) error
	DeleteByOperator(ctx context.Context, operatorID string, statuses []domain.TaskStatus) error
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}
	const query = `
        INSERT INTO tasks (client_id, type, assigned_to, status, skip_reason)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		task.ClientID,
		task.Type,
		task.AssignedTo,
		task.Status,
		task.SkipReason,
	).Scan(&task.ID, &task.CreatedAt)
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
        SELECT id, client_id, type, assigned_to, status, skip_reason, created_at
        FROM tasks WHERE id=$1`
	var task domain.Task
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.ClientID,
		&task.Type,
		&task.AssignedTo,
		&task.Status,
		&task.SkipReason,
		&task.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus, skipReason *string) error {
	const query = `UPDATE tasks SET status=$1, skip_reason=$2 WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, skipReason, taskID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, taskID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, taskID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = ANY($1)`, ids)
	return err
}

func (r *taskRepository) DeleteByOperator(ctx context.Context, operatorID string, statuses []domain.TaskStatus) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM tasks WHERE assigned_to=$1 AND status = ANY($2)`,
		operatorID, statusStrings(statuses))
	return err
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	base := `SELECT id, client_id, type, assigned_to, status, skip_reason, created_at FROM tasks`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		clauses = append(clauses, fmt.Sprintf("client_id=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, statusStrings(filter.Statuses))
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY created_at ASC", base, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.ClientID,
			&task.Type,
			&task.AssignedTo,
			&task.Status,
			&task.SkipReason,
			&task.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

func statusStrings(statuses []domain.TaskStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

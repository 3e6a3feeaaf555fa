package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telesales/callops-service/internal/domain"
)

// QuestionRepository manages questionnaire configuration.
type QuestionRepository interface {
	List(ctx context.Context) ([]domain.Question, error)
	Save(ctx context.Context, q *domain.Question) error
	Delete(ctx context.Context, id string) error
}

type questionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository builds the repository.
func NewQuestionRepository(pool *pgxpool.Pool) QuestionRepository {
	return &questionRepository{pool: pool}
}

func (r *questionRepository) List(ctx context.Context) ([]domain.Question, error) {
	const query = `
        SELECT id, text, options, type, order_index, COALESCE(stage_id, '')
        FROM questions ORDER BY order_index ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Options, &q.Type, &q.Order, &q.StageID); err != nil {
			return nil, err
		}
		result = append(result, q)
	}
	return result, rows.Err()
}

func (r *questionRepository) Save(ctx context.Context, q *domain.Question) error {
	var stageID *string
	if q.StageID != "" {
		stageID = &q.StageID
	}
	const query = `
        INSERT INTO questions (id, text, options, type, order_index, stage_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (id) DO UPDATE SET
            text=EXCLUDED.text, options=EXCLUDED.options, type=EXCLUDED.type,
            order_index=EXCLUDED.order_index, stage_id=EXCLUDED.stage_id`
	_, err := r.pool.Exec(ctx, query, q.ID, q.Text, q.Options, q.Type, q.Order, stageID)
	return err
}

func (r *questionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

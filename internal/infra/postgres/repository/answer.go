package repository

import (
	"context"
	"fmt"

	"github.com/aliskhannn/finquest/internal/domain/entities"
	"github.com/aliskhannn/finquest/internal/infra/postgres"
)

// AnswerRepository provides access to the answer ledger in the database.
type AnswerRepository struct {
	db postgres.DBTX
}

// NewAnswerRepository creates a new AnswerRepository with the provided database pool.
func NewAnswerRepository(db postgres.DBTX) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// Upsert creates or updates the ledger row of (user_id, question_id).
func (r *AnswerRepository) Upsert(ctx context.Context, rec *entities.AnsweredRecord) error {
	query := `
		INSERT INTO answered_questions (user_id, question_id, level, is_correct, answered_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, question_id) DO UPDATE SET
			level = EXCLUDED.level,
			is_correct = EXCLUDED.is_correct,
			answered_at = EXCLUDED.answered_at
	`

	_, err := postgres.Conn(ctx, r.db).Exec(
		ctx, query,
		rec.UserID,
		rec.QuestionID,
		rec.Level,
		rec.IsCorrect,
		rec.AnsweredAt,
	)
	if err != nil {
		return fmt.Errorf("upsert answer: %w", err)
	}

	return nil
}

// ListAnsweredIDs returns the question ids the user answered at a level.
func (r *AnswerRepository) ListAnsweredIDs(ctx context.Context, userID string, level int) ([]int64, error) {
	query := `
		SELECT question_id
		FROM answered_questions
		WHERE user_id = $1 AND level = $2
		ORDER BY question_id
	`

	rows, err := postgres.Conn(ctx, r.db).Query(ctx, query, userID, level)
	if err != nil {
		return nil, fmt.Errorf("list answered ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list answered ids: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list answered ids: %w", err)
	}

	return ids, nil
}

// Stats counts answered and correctly answered questions of the user.
func (r *AnswerRepository) Stats(ctx context.Context, userID string) (entities.AnswerStats, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_correct)
		FROM answered_questions
		WHERE user_id = $1
	`

	var stats entities.AnswerStats
	if err := postgres.Conn(ctx, r.db).QueryRow(ctx, query, userID).Scan(&stats.Answered, &stats.Correct); err != nil {
		return entities.AnswerStats{}, fmt.Errorf("answer stats: %w", err)
	}

	return stats, nil
}

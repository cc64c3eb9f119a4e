package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
	"github.com/aliskhannn/finquest/internal/infra/postgres"
)

// QuestionRepository provides access to the quiz catalog in the database.
type QuestionRepository struct {
	db postgres.DBTX
}

// NewQuestionRepository creates a new QuestionRepository with the provided database pool.
func NewQuestionRepository(db postgres.DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `id, level, question, options, correct_answer, explanation, category, difficulty, active, created_at`

// ListActiveByLevel returns the active questions of a level ordered by id.
func (r *QuestionRepository) ListActiveByLevel(ctx context.Context, level int) ([]*entities.QuizQuestion, error) {
	query := `SELECT ` + questionColumns + `
		FROM quiz_questions
		WHERE level = $1 AND active
		ORDER BY id`

	rows, err := postgres.Conn(ctx, r.db).Query(ctx, query, level)
	if err != nil {
		return nil, fmt.Errorf("list questions by level: %w", err)
	}
	defer rows.Close()

	var out []*entities.QuizQuestion
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("list questions by level: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions by level: %w", err)
	}

	return out, nil
}

// GetByID retrieves a question regardless of its active flag.
// Returns domain.ErrQuestionNotFound if the question doesn't exist.
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*entities.QuizQuestion, error) {
	query := `SELECT ` + questionColumns + ` FROM quiz_questions WHERE id = $1`

	q, err := scanQuestion(postgres.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}

	return q, nil
}

// Count returns the number of questions in the catalog.
func (r *QuestionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := postgres.Conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM quiz_questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// CreateBatch inserts the questions and sets their ids.
func (r *QuestionRepository) CreateBatch(ctx context.Context, questions []*entities.QuizQuestion) error {
	query := `
		INSERT INTO quiz_questions (
			level, question, options, correct_answer, explanation,
			category, difficulty, active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	batch := &pgx.Batch{}
	for _, q := range questions {
		batch.Queue(query,
			q.Level,
			q.Question,
			q.Options,
			q.CorrectAnswer,
			q.Explanation,
			q.Category,
			q.Difficulty,
			q.Active,
			q.CreatedAt,
		)
	}

	results := postgres.Conn(ctx, r.db).SendBatch(ctx, batch)
	for _, q := range questions {
		if err := results.QueryRow().Scan(&q.ID); err != nil {
			_ = results.Close()
			return fmt.Errorf("create question: %w", err)
		}
	}

	return results.Close()
}

// SetActive flips the active flag of a question.
func (r *QuestionRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := postgres.Conn(ctx, r.db).Exec(ctx, `UPDATE quiz_questions SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set question active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func scanQuestion(row pgx.Row) (*entities.QuizQuestion, error) {
	var q entities.QuizQuestion
	err := row.Scan(
		&q.ID,
		&q.Level,
		&q.Question,
		&q.Options,
		&q.CorrectAnswer,
		&q.Explanation,
		&q.Category,
		&q.Difficulty,
		&q.Active,
		&q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
	"github.com/aliskhannn/finquest/internal/infra/postgres"
)

// SessionRepository provides access to quiz sessions in the database.
type SessionRepository struct {
	db postgres.DBTX
}

// NewSessionRepository creates a new SessionRepository with the provided database pool.
func NewSessionRepository(db postgres.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new quiz session.
func (r *SessionRepository) Create(ctx context.Context, s *entities.QuizSession) error {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	query := `
		INSERT INTO quiz_sessions (
			id, user_id, level, question_ids, answers,
			score, status, version, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = postgres.Conn(ctx, r.db).Exec(
		ctx,
		query,
		s.ID,
		s.UserID,
		s.Level,
		s.QuestionIDs,
		answers,
		s.Score,
		string(s.Status),
		s.Version,
		s.StartedAt,
		s.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("create quiz session: %w", err)
	}

	return nil
}

// GetByID retrieves a quiz session. Inside a transaction the row is locked for update.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.QuizSession, error) {
	query := `
		SELECT id, user_id, level, question_ids, answers,
		       score, status, version, started_at, completed_at
		FROM quiz_sessions
		WHERE id = $1
	`
	if postgres.InTx(ctx) {
		query += ` FOR UPDATE`
	}

	var (
		s       entities.QuizSession
		answers []byte
		status  string
	)
	err := postgres.Conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.UserID,
		&s.Level,
		&s.QuestionIDs,
		&answers,
		&s.Score,
		&status,
		&s.Version,
		&s.StartedAt,
		&s.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get quiz session: %w", err)
	}

	s.Status = entities.SessionStatus(status)
	if err := json.Unmarshal(answers, &s.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}

	return &s, nil
}

// Update updates a quiz session using optimistic locking.
func (r *SessionRepository) Update(ctx context.Context, s *entities.QuizSession) error {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	query := `
		UPDATE quiz_sessions
		SET answers = $1,
		    score = $2,
		    status = $3,
		    completed_at = $4,
		    version = version + 1
		WHERE id = $5 AND version = $6
	`

	result, err := postgres.Conn(ctx, r.db).Exec(
		ctx,
		query,
		answers,
		s.Score,
		string(s.Status),
		s.CompletedAt,
		s.ID,
		s.Version,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrOptimisticLock
	}

	// Increment version locally
	s.Version++

	return nil
}

// DeleteCompletedBefore removes completed sessions closed before the given time.
func (r *SessionRepository) DeleteCompletedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM quiz_sessions
		WHERE status = $1 AND completed_at < $2
	`

	result, err := postgres.Conn(ctx, r.db).Exec(ctx, query, string(entities.SessionCompleted), before)
	if err != nil {
		return 0, fmt.Errorf("delete completed sessions: %w", err)
	}

	return result.RowsAffected(), nil
}

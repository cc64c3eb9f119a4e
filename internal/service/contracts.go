package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/finquest/internal/domain/entities"
)

// QuestionRepository stores the quiz catalog.
type QuestionRepository interface {
	ListActiveByLevel(ctx context.Context, level int) ([]*entities.QuizQuestion, error)
	GetByID(ctx context.Context, id int64) (*entities.QuizQuestion, error)
	Count(ctx context.Context) (int, error)
	CreateBatch(ctx context.Context, questions []*entities.QuizQuestion) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// AnswerRepository stores the answer ledger. Upsert must be atomic per (user, question).
type AnswerRepository interface {
	Upsert(ctx context.Context, rec *entities.AnsweredRecord) error
	ListAnsweredIDs(ctx context.Context, userID string, level int) ([]int64, error)
	Stats(ctx context.Context, userID string) (entities.AnswerStats, error)
}

// SessionRepository stores quiz sessions. Update is a compare-and-swap on Version.
type SessionRepository interface {
	Create(ctx context.Context, s *entities.QuizSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.QuizSession, error)
	Update(ctx context.Context, s *entities.QuizSession) error
	DeleteCompletedBefore(ctx context.Context, before time.Time) (int64, error)
}

// ProgressRepository stores one tracker per user. Update is a compare-and-swap on Version.
type ProgressRepository interface {
	Get(ctx context.Context, userID string) (*entities.ProgressTracker, error)
	Create(ctx context.Context, t *entities.ProgressTracker) error
	Update(ctx context.Context, t *entities.ProgressTracker) error
	ListUserIDs(ctx context.Context, limit, offset int) ([]string, error)
}

// Transactor runs fn as one atomic unit. Repositories pick the transaction up from ctx.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serializes work on one key (a user id) across goroutines or instances.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

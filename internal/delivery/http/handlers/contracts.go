package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/aliskhannn/finquest/internal/domain/entities"
	"github.com/aliskhannn/finquest/internal/service"
)

type QuizService interface {
	StartSession(ctx context.Context, userID string, level, count int) (*entities.QuizSession, []entities.QuestionView, error)
	ResumeSession(ctx context.Context, userID string, sessionID uuid.UUID) (*entities.QuizSession, []entities.QuestionView, error)
	SubmitAnswer(ctx context.Context, userID string, sessionID uuid.UUID, questionID int64, selected string) (*service.AnswerResult, error)
	CompleteSession(ctx context.Context, userID string, sessionID uuid.UUID, reportedScore int) (*service.CompletionResult, error)
}

type ProgressService interface {
	GetProgressSummary(ctx context.Context, userID string) (*service.ProgressSummary, error)
	ResetIfDue(ctx context.Context, userID string) (*entities.ResetOutcome, error)
}

type QuestionService interface {
	ListQuestions(ctx context.Context, level int) ([]*entities.QuizQuestion, error)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aliskhannn/finquest/internal/domain/entities"
)

// AnswerLedger remembers which questions a user has answered so selection can prefer new ones.
// It is not the score of record.
type AnswerLedger struct {
	repository AnswerRepository
}

// NewAnswerLedger creates a new AnswerLedger.
func NewAnswerLedger(repository AnswerRepository) *AnswerLedger {
	return &AnswerLedger{repository: repository}
}

// RecordAnswer upserts the ledger row of (userID, questionID).
func (l *AnswerLedger) RecordAnswer(
	ctx context.Context, userID string, questionID int64, level int, isCorrect bool, answeredAt time.Time,
) error {
	rec := entities.NewAnsweredRecord(userID, questionID, level, isCorrect, answeredAt)
	if err := l.repository.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

// ListAnsweredQuestionIDs returns the set of question ids the user answered at a level.
func (l *AnswerLedger) ListAnsweredQuestionIDs(ctx context.Context, userID string, level int) (map[int64]struct{}, error) {
	ids, err := l.repository.ListAnsweredIDs(ctx, userID, level)
	if err != nil {
		return nil, fmt.Errorf("list answered questions: %w", err)
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Stats returns the answered/correct totals of the user.
func (l *AnswerLedger) Stats(ctx context.Context, userID string) (entities.AnswerStats, error) {
	return l.repository.Stats(ctx, userID)
}

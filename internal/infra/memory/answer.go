package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aliskhannn/finquest/internal/domain/entities"
)

type answerKey struct {
	userID     string
	questionID int64
}

// AnswerStore keeps the answer ledger in memory, one record per (user, question).
type AnswerStore struct {
	mu      sync.RWMutex
	records map[answerKey]entities.AnsweredRecord
}

// NewAnswerStore creates an empty AnswerStore.
func NewAnswerStore() *AnswerStore {
	return &AnswerStore{records: make(map[answerKey]entities.AnsweredRecord)}
}

// Upsert inserts or overwrites the record of (rec.UserID, rec.QuestionID).
func (s *AnswerStore) Upsert(_ context.Context, rec *entities.AnsweredRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[answerKey{userID: rec.UserID, questionID: rec.QuestionID}] = *rec
	return nil
}

// ListAnsweredIDs returns the question ids the user answered at a level.
func (s *AnswerStore) ListAnsweredIDs(_ context.Context, userID string, level int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0)
	for k, rec := range s.records {
		if k.userID == userID && rec.Level == level {
			ids = append(ids, k.questionID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

// Stats counts answered and correctly answered questions of the user.
func (s *AnswerStore) Stats(_ context.Context, userID string) (entities.AnswerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats entities.AnswerStats
	for k, rec := range s.records {
		if k.userID != userID {
			continue
		}
		stats.Answered++
		if rec.IsCorrect {
			stats.Correct++
		}
	}
	return stats, nil
}

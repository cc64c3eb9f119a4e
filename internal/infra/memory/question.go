// Package memory provides in-process implementations of the engine's storage contracts.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
)

// QuestionStore keeps the quiz catalog in memory.
type QuestionStore struct {
	mu        sync.RWMutex
	nextID    int64
	questions map[int64]*entities.QuizQuestion
}

// NewQuestionStore creates an empty QuestionStore.
func NewQuestionStore() *QuestionStore {
	return &QuestionStore{questions: make(map[int64]*entities.QuizQuestion)}
}

// ListActiveByLevel returns active questions of a level ordered by id.
func (s *QuestionStore) ListActiveByLevel(_ context.Context, level int) ([]*entities.QuizQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.QuizQuestion, 0)
	for _, q := range s.questions {
		if q.Level == level && q.Active {
			out = append(out, cloneQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// GetByID returns a question or domain.ErrQuestionNotFound.
func (s *QuestionStore) GetByID(_ context.Context, id int64) (*entities.QuizQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	return cloneQuestion(q), nil
}

// Count returns the number of stored questions, active or not.
func (s *QuestionStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions), nil
}

// CreateBatch stores the questions and assigns their ids.
func (s *QuestionStore) CreateBatch(_ context.Context, questions []*entities.QuizQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range questions {
		s.nextID++
		q.ID = s.nextID
		s.questions[q.ID] = cloneQuestion(q)
	}
	return nil
}

// SetActive flips the active flag of a question.
func (s *QuestionStore) SetActive(_ context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	q.Active = active
	return nil
}

func cloneQuestion(q *entities.QuizQuestion) *entities.QuizQuestion {
	out := *q
	out.Options = append([]string(nil), q.Options...)
	return &out
}

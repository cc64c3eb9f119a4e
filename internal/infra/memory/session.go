package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
)

// SessionStore keeps quiz sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*entities.QuizSession
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]*entities.QuizSession)}
}

// Create stores a new session.
func (s *SessionStore) Create(_ context.Context, session *entities.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session.Clone()
	return nil
}

// GetByID returns a copy of the session or domain.ErrSessionNotFound.
func (s *SessionStore) GetByID(_ context.Context, id uuid.UUID) (*entities.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Update replaces the session if its version still matches and bumps the version.
func (s *SessionStore) Update(_ context.Context, session *entities.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[session.ID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if stored.Version != session.Version {
		return domain.ErrOptimisticLock
	}

	session.Version++
	s.sessions[session.ID] = session.Clone()
	return nil
}

// DeleteCompletedBefore removes completed sessions closed before the given time.
func (s *SessionStore) DeleteCompletedBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, session := range s.sessions {
		if session.IsCompleted() && session.CompletedAt != nil && session.CompletedAt.Before(before) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

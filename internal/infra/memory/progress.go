package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
)

// ProgressStore keeps one ProgressTracker per user in memory.
type ProgressStore struct {
	mu       sync.RWMutex
	trackers map[string]*entities.ProgressTracker
}

// NewProgressStore creates an empty ProgressStore.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{trackers: make(map[string]*entities.ProgressTracker)}
}

// Get returns a copy of the user's tracker or domain.ErrUserProgressNotFound.
func (s *ProgressStore) Get(_ context.Context, userID string) (*entities.ProgressTracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trackers[userID]
	if !ok {
		return nil, domain.ErrUserProgressNotFound
	}
	return t.Clone(), nil
}

// Create stores the tracker unless the user already has one.
func (s *ProgressStore) Create(_ context.Context, t *entities.ProgressTracker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trackers[t.UserID]; ok {
		return nil
	}
	s.trackers[t.UserID] = t.Clone()
	return nil
}

// Update replaces the tracker if its version still matches and bumps the version.
func (s *ProgressStore) Update(_ context.Context, t *entities.ProgressTracker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.trackers[t.UserID]
	if !ok {
		return domain.ErrUserProgressNotFound
	}
	if stored.Version != t.Version {
		return domain.ErrOptimisticLock
	}

	t.Version++
	s.trackers[t.UserID] = t.Clone()
	return nil
}

// ListUserIDs pages through user ids in lexical order.
func (s *ProgressStore) ListUserIDs(_ context.Context, limit, offset int) ([]string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.trackers))
	for id := range s.trackers {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	if offset >= len(ids) {
		return []string{}, nil
	}
	end := min(offset+limit, len(ids))
	return ids[offset:end], nil
}

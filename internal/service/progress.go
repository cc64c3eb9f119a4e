package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
)

// ProgressService owns the per-user ProgressTracker: lazy creation, reads, and the periodic reset hook.
type ProgressService struct {
	repository ProgressRepository
	ledger     *AnswerLedger
	tr         Transactor
	locker     Locker
	policy     entities.ResetPolicy
	logger     *zap.Logger
	now        func() time.Time
}

// NewProgressService creates a new ProgressService.
func NewProgressService(
	repository ProgressRepository,
	ledger *AnswerLedger,
	tr Transactor,
	locker Locker,
	policy entities.ResetPolicy,
	logger *zap.Logger,
) *ProgressService {
	return &ProgressService{
		repository: repository,
		ledger:     ledger,
		tr:         tr,
		locker:     locker,
		policy:     policy,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the tracker of a user. It never creates one and fails with
// domain.ErrUserProgressNotFound for users who never played.
func (s *ProgressService) Get(ctx context.Context, userID string) (*entities.ProgressTracker, error) {
	return s.repository.Get(ctx, userID)
}

// GetOrCreate returns the tracker of a user, creating the default one on first access.
func (s *ProgressService) GetOrCreate(ctx context.Context, userID string) (*entities.ProgressTracker, error) {
	t, err := s.repository.Get(ctx, userID)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, domain.ErrUserProgressNotFound) {
		return nil, err
	}

	// Create is a no-op when a concurrent call created the row first; re-read either way.
	if err := s.repository.Create(ctx, entities.NewProgressTracker(userID, s.now())); err != nil {
		return nil, fmt.Errorf("create progress: %w", err)
	}
	return s.repository.Get(ctx, userID)
}

// save writes a tracker the caller changed under the user lock.
func (s *ProgressService) save(ctx context.Context, t *entities.ProgressTracker) error {
	return s.repository.Update(ctx, t)
}

// ResetIfDue runs the daily reset policy for one user. Calling it twice in the same
// reset window leaves the tracker unchanged the second time.
func (s *ProgressService) ResetIfDue(ctx context.Context, userID string) (*entities.ResetOutcome, error) {
	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out entities.ResetOutcome
	err = s.tr.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.repository.Get(ctx, userID)
		if err != nil {
			return err
		}

		out = t.ResetIfDue(s.policy, s.now())
		if !out.Applied {
			return nil
		}

		return s.repository.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	if out.Action != entities.ResetNone {
		s.logger.Info("progress reset",
			zap.String("user_id", userID),
			zap.String("action", string(out.Action)),
			zap.Int("current_map", out.CurrentMap),
			zap.Int("current_level", out.CurrentLevel),
			zap.Int("streak_days", out.StreakDays),
		)
	}

	return &out, nil
}

// ProgressSummary is the player-facing view of a tracker.
type ProgressSummary struct {
	Tracker           *entities.ProgressTracker `json:"progress"`
	CurrentMap        entities.MapProgress      `json:"current_map_progress"`
	LevelsRemaining   int                       `json:"levels_remaining"`
	AnsweredQuestions int                       `json:"answered_questions"`
	Accuracy          float64                   `json:"accuracy"`
}

// GetProgressSummary returns the tracker of a user together with ledger statistics.
func (s *ProgressService) GetProgressSummary(ctx context.Context, userID string) (*ProgressSummary, error) {
	t, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.ledger.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("answer stats: %w", err)
	}

	current := t.MapProgressFor(t.CurrentMap)

	return &ProgressSummary{
		Tracker:           t,
		CurrentMap:        current,
		LevelsRemaining:   entities.MaxLevelsPerMap - len(current.LevelsCompleted),
		AnsweredQuestions: stats.Answered,
		Accuracy:          stats.Accuracy(),
	}, nil
}

// ListUserIDs pages through users that have a tracker.
func (s *ProgressService) ListUserIDs(ctx context.Context, limit, offset int) ([]string, error) {
	return s.repository.ListUserIDs(ctx, limit, offset)
}

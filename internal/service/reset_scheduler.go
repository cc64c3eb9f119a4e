package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ResetScheduler periodically runs the daily reset hook for every user and prunes
// completed sessions past their retention.
type ResetScheduler struct {
	progress  *ProgressService
	sessions  SessionRepository
	spec      string
	location  *time.Location
	retention time.Duration
	logger    *zap.Logger
}

// NewResetScheduler creates a new scheduler running on the given cron spec.
func NewResetScheduler(
	progress *ProgressService,
	sessions SessionRepository,
	spec string,
	location *time.Location,
	retention time.Duration,
	logger *zap.Logger,
) *ResetScheduler {
	if location == nil {
		location = time.UTC
	}
	return &ResetScheduler{
		progress:  progress,
		sessions:  sessions,
		spec:      spec,
		location:  location,
		retention: retention,
		logger:    logger,
	}
}

// Start runs the cron loop until ctx is cancelled.
func (s *ResetScheduler) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(s.location))

	_, err := c.AddFunc(s.spec, func() {
		s.logger.Info("cron triggered: running daily reset")
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error("daily reset failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("add cron job %q: %w", s.spec, err)
	}

	c.Start()
	s.logger.Info("reset scheduler started", zap.String("spec", s.spec))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("reset scheduler stopped")

	return nil
}

// RunOnce resets every user whose window is due and prunes old sessions.
func (s *ResetScheduler) RunOnce(ctx context.Context) error {
	const batchSize = 100
	offset := 0
	total := 0

	for {
		userIDs, err := s.progress.ListUserIDs(ctx, batchSize, offset)
		if err != nil {
			return fmt.Errorf("list users batch: %w", err)
		}
		if len(userIDs) == 0 {
			break
		}

		total += s.processBatch(ctx, userIDs)

		if len(userIDs) < batchSize {
			break
		}
		offset += batchSize
	}

	pruned := int64(0)
	if s.retention > 0 {
		var err error
		pruned, err = s.sessions.DeleteCompletedBefore(ctx, time.Now().UTC().Add(-s.retention))
		if err != nil {
			return fmt.Errorf("prune sessions: %w", err)
		}
	}

	s.logger.Info("daily reset processed",
		zap.Int("users_reset", total),
		zap.Int64("sessions_pruned", pruned),
	)

	return nil
}

// processBatch resets a batch of users concurrently and returns how many trackers changed.
func (s *ResetScheduler) processBatch(ctx context.Context, userIDs []string) int {
	const maxConcurrent = 10
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	changed := 0

	for _, userID := range userIDs {
		wg.Add(1)
		sem <- struct{}{}

		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			out, err := s.progress.ResetIfDue(ctx, userID)
			if err != nil {
				s.logger.Error("failed to reset user",
					zap.String("user_id", userID),
					zap.Error(err))
				return
			}
			if out.Applied {
				mu.Lock()
				changed++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return changed
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
	"github.com/aliskhannn/finquest/internal/infra/postgres"
)

// ProgressRepository provides access to user progress trackers in the database.
type ProgressRepository struct {
	db postgres.DBTX
}

// NewProgressRepository creates a new ProgressRepository with the provided database pool.
func NewProgressRepository(db postgres.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Get retrieves the tracker of a user. Inside a transaction the row is locked for update.
func (r *ProgressRepository) Get(ctx context.Context, userID string) (*entities.ProgressTracker, error) {
	query := `
		SELECT user_id, current_level, current_map, completed_levels, completed_maps,
		       map_progress, total_score, total_xp, last_played_at, last_daily_reset,
		       streak_days, version, created_at, updated_at
		FROM user_progress
		WHERE user_id = $1
	`
	if postgres.InTx(ctx) {
		query += ` FOR UPDATE`
	}

	var (
		t    entities.ProgressTracker
		maps []byte
	)
	err := postgres.Conn(ctx, r.db).QueryRow(ctx, query, userID).Scan(
		&t.UserID,
		&t.CurrentLevel,
		&t.CurrentMap,
		&t.CompletedLevels,
		&t.CompletedMaps,
		&maps,
		&t.TotalScore,
		&t.TotalXP,
		&t.LastPlayedAt,
		&t.LastDailyReset,
		&t.StreakDays,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserProgressNotFound
		}
		return nil, fmt.Errorf("get user progress: %w", err)
	}

	t.Maps = make(map[int]*entities.MapProgress)
	if err := json.Unmarshal(maps, &t.Maps); err != nil {
		return nil, fmt.Errorf("unmarshal map progress: %w", err)
	}

	return &t, nil
}

// Create inserts the tracker unless the user already has one.
func (r *ProgressRepository) Create(ctx context.Context, t *entities.ProgressTracker) error {
	maps, err := marshalMaps(t)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO user_progress (
			user_id, current_level, current_map, completed_levels, completed_maps,
			map_progress, total_score, total_xp, last_played_at, last_daily_reset,
			streak_days, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err = postgres.Conn(ctx, r.db).Exec(
		ctx,
		query,
		t.UserID,
		t.CurrentLevel,
		t.CurrentMap,
		nonNilInts(t.CompletedLevels),
		nonNilInts(t.CompletedMaps),
		maps,
		t.TotalScore,
		t.TotalXP,
		t.LastPlayedAt,
		t.LastDailyReset,
		t.StreakDays,
		t.Version,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user progress: %w", err)
	}

	return nil
}

// Update updates the tracker using optimistic locking.
func (r *ProgressRepository) Update(ctx context.Context, t *entities.ProgressTracker) error {
	maps, err := marshalMaps(t)
	if err != nil {
		return err
	}

	query := `
		UPDATE user_progress
		SET current_level = $1,
		    current_map = $2,
		    completed_levels = $3,
		    completed_maps = $4,
		    map_progress = $5,
		    total_score = $6,
		    total_xp = $7,
		    last_played_at = $8,
		    last_daily_reset = $9,
		    streak_days = $10,
		    updated_at = $11,
		    version = version + 1
		WHERE user_id = $12 AND version = $13
	`

	result, err := postgres.Conn(ctx, r.db).Exec(
		ctx,
		query,
		t.CurrentLevel,
		t.CurrentMap,
		nonNilInts(t.CompletedLevels),
		nonNilInts(t.CompletedMaps),
		maps,
		t.TotalScore,
		t.TotalXP,
		t.LastPlayedAt,
		t.LastDailyReset,
		t.StreakDays,
		t.UpdatedAt,
		t.UserID,
		t.Version,
	)
	if err != nil {
		return fmt.Errorf("update user progress: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrOptimisticLock
	}

	// Increment version locally
	t.Version++

	return nil
}

// ListUserIDs returns a page of user ids ordered by id.
func (r *ProgressRepository) ListUserIDs(ctx context.Context, limit, offset int) ([]string, error) {
	query := `
		SELECT user_id
		FROM user_progress
		ORDER BY user_id
		LIMIT $1 OFFSET $2
	`

	rows, err := postgres.Conn(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return ids, nil
}

func marshalMaps(t *entities.ProgressTracker) ([]byte, error) {
	maps := t.Maps
	if maps == nil {
		maps = map[int]*entities.MapProgress{}
	}
	data, err := json.Marshal(maps)
	if err != nil {
		return nil, fmt.Errorf("marshal map progress: %w", err)
	}
	return data, nil
}

// nonNilInts keeps NOT NULL array columns from receiving NULL.
func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

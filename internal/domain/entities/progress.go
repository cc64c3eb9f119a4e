package entities

import (
	"slices"
	"time"
)

// Scoring and unlock constants of the progression.
const (
	QuestionsPerSession  = 4   // questions in a regular quiz session
	MaxLevelsPerMap      = 4   // levels 1..MaxLevelsPerMap make up a map
	PassingScore         = 2   // minimum session score that earns credit
	XPPerCorrectAnswer   = 25  // per correct answer
	PerfectScoreBonus    = 50  // all QuestionsPerSession answers correct
	LevelCompletionBonus = 100 // first completion of a level in the current map cycle
)

// MapProgress is a user's state inside one map.
type MapProgress struct {
	Completed       bool  `json:"completed"`
	LevelsCompleted []int `json:"levels_completed"` // sorted, unique
	PointsEarned    bool  `json:"points_earned"`
}

// HasLevel reports whether the level was completed in the current cycle of this map.
func (m MapProgress) HasLevel(level int) bool {
	_, ok := slices.BinarySearch(m.LevelsCompleted, level)
	return ok
}

// coversAllLevels reports whether every level 1..MaxLevelsPerMap is completed.
func (m MapProgress) coversAllLevels() bool {
	for level := 1; level <= MaxLevelsPerMap; level++ {
		if !m.HasLevel(level) {
			return false
		}
	}
	return true
}

func (m MapProgress) clone() MapProgress {
	m.LevelsCompleted = append([]int{}, m.LevelsCompleted...)
	return m
}

// ProgressTracker is the durable per-user progression state.
type ProgressTracker struct {
	UserID          string               `json:"user_id"`
	CurrentLevel    int                  `json:"current_level"` // always in [1, MaxLevelsPerMap]
	CurrentMap      int                  `json:"current_map"`
	CompletedLevels []int                `json:"completed_levels"` // sorted, unique
	CompletedMaps   []int                `json:"completed_maps"`   // sorted, unique
	Maps            map[int]*MapProgress `json:"map_progress"`
	TotalScore      int                  `json:"total_score"`
	TotalXP         int                  `json:"total_xp"`
	LastPlayedAt    *time.Time           `json:"last_played_at,omitempty"`
	LastDailyReset  *time.Time           `json:"last_daily_reset,omitempty"`
	StreakDays      int                  `json:"streak_days"`
	Version         int                  `json:"version"` // optimistic lock counter
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// NewProgressTracker creates the default state of a user who has never played.
func NewProgressTracker(userID string, now time.Time) *ProgressTracker {
	return &ProgressTracker{
		UserID:          userID,
		CurrentLevel:    1,
		CurrentMap:      1,
		CompletedLevels: []int{},
		CompletedMaps:   []int{},
		Maps:            make(map[int]*MapProgress),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// MapProgressFor returns a copy of the progress of the given map,
// or the empty default when the map was never played.
func (t *ProgressTracker) MapProgressFor(mapNumber int) MapProgress {
	if mp, ok := t.Maps[mapNumber]; ok && mp != nil {
		return mp.clone()
	}
	return MapProgress{LevelsCompleted: []int{}}
}

func (t *ProgressTracker) setMapProgress(mapNumber int, mp MapProgress) {
	if t.Maps == nil {
		t.Maps = make(map[int]*MapProgress)
	}
	t.Maps[mapNumber] = &mp
}

// CompletionOutcome is the result of applying a completed session to the tracker.
type CompletionOutcome struct {
	EarnedXP       int  `json:"earned_xp"`
	TotalXP        int  `json:"total_xp"`
	LevelUnlocked  int  `json:"level_unlocked"`
	IsMapCompleted bool `json:"is_map_completed"`
	IsRepeatLevel  bool `json:"is_repeat_level"`
	Passed         bool `json:"passed"`
	Changed        bool `json:"-"` // tracker must be persisted
}

// CalculateXP returns the XP earned by a first-time passing completion with the given score.
func CalculateXP(score int) int {
	xp := score*XPPerCorrectAnswer + LevelCompletionBonus
	if score >= QuestionsPerSession {
		xp += PerfectScoreBonus
	}
	return xp
}

// ApplyCompletion applies a completed session of the given level and score.
//
// A failing score leaves the tracker untouched. A passing score for a level already completed
// in the current map cycle is a replay: it passes but grants nothing. Otherwise the level is
// credited, XP is granted and the next level unlocks; a map whose levels are all completed
// holds at its final level until a reset advances the user to the next map.
func (t *ProgressTracker) ApplyCompletion(level, score int, now time.Time) CompletionOutcome {
	mapNumber := t.CurrentMap
	mp := t.MapProgressFor(mapNumber)

	out := CompletionOutcome{
		TotalXP:        t.TotalXP,
		LevelUnlocked:  t.CurrentLevel,
		IsMapCompleted: mp.Completed,
		IsRepeatLevel:  mp.HasLevel(level),
		Passed:         score >= PassingScore,
	}
	if !out.Passed || out.IsRepeatLevel {
		return out
	}

	earned := CalculateXP(score)

	mp.LevelsCompleted = insertSorted(mp.LevelsCompleted, level)
	t.CompletedLevels = insertSorted(t.CompletedLevels, level)

	isMapCompleted := mp.coversAllLevels()
	nextLevel := MaxLevelsPerMap
	if !isMapCompleted {
		nextLevel = min(level+1, MaxLevelsPerMap)
	}

	mp.PointsEarned = true
	mp.Completed = isMapCompleted
	t.setMapProgress(mapNumber, mp)
	if isMapCompleted {
		t.CompletedMaps = insertSorted(t.CompletedMaps, mapNumber)
	}

	t.TotalXP += earned
	t.TotalScore += score
	t.CurrentLevel = nextLevel
	t.LastPlayedAt = &now
	t.UpdatedAt = now

	out.EarnedXP = earned
	out.TotalXP = t.TotalXP
	out.LevelUnlocked = nextLevel
	out.IsMapCompleted = isMapCompleted
	out.Changed = true

	return out
}

// Clone returns a deep copy of the tracker.
func (t *ProgressTracker) Clone() *ProgressTracker {
	out := *t
	out.CompletedLevels = append([]int{}, t.CompletedLevels...)
	out.CompletedMaps = append([]int{}, t.CompletedMaps...)
	out.Maps = make(map[int]*MapProgress, len(t.Maps))
	for k, v := range t.Maps {
		if v == nil {
			continue
		}
		mp := v.clone()
		out.Maps[k] = &mp
	}
	if t.LastPlayedAt != nil {
		ts := *t.LastPlayedAt
		out.LastPlayedAt = &ts
	}
	if t.LastDailyReset != nil {
		ts := *t.LastDailyReset
		out.LastDailyReset = &ts
	}
	return &out
}

// insertSorted adds v to a sorted unique slice if it is not already there.
func insertSorted(s []int, v int) []int {
	i, found := slices.BinarySearch(s, v)
	if found {
		return s
	}
	return slices.Insert(s, i, v)
}

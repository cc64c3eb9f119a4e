package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ResetAction describes what a periodic reset did to the tracker.
type ResetAction string

const (
	ResetNone         ResetAction = "none"          // already reset in this window
	ResetInitialized  ResetAction = "initialized"   // first observation, window stamped only
	ResetAdvancedMap  ResetAction = "advanced_map"  // completed map, moved to the next one
	ResetRestartedMap ResetAction = "restarted_map" // incomplete map, new cycle from level 1
	ResetKept         ResetAction = "kept"          // credit already earned this window, progress kept
)

// ResetPolicy opens one reset window per calendar day in Location.
type ResetPolicy struct {
	Location *time.Location
}

// NewResetPolicy returns a daily policy for the given location, UTC when nil.
func NewResetPolicy(loc *time.Location) ResetPolicy {
	if loc == nil {
		loc = time.UTC
	}
	return ResetPolicy{Location: loc}
}

// WindowStart returns the start of the reset window containing now.
func (p ResetPolicy) WindowStart(now time.Time) time.Time {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
}

// ResetOutcome is the result of a reset attempt.
type ResetOutcome struct {
	Applied      bool        `json:"applied"` // tracker changed and must be persisted
	Action       ResetAction `json:"action"`
	CurrentMap   int         `json:"current_map"`
	CurrentLevel int         `json:"current_level"`
	StreakDays   int         `json:"streak_days"`
}

// ResetIfDue runs the periodic reset at most once per window.
//
// A completed current map advances the user to the next map at level 1. An incomplete map starts
// a new cycle at level 1 unless the user already earned credit inside the current window.
// The streak grows when the user earned credit since the start of the previous window and
// drops to zero otherwise.
func (t *ProgressTracker) ResetIfDue(policy ResetPolicy, now time.Time) (out ResetOutcome) {
	window := policy.WindowStart(now)

	out.Action = ResetNone
	defer func() {
		out.CurrentMap = t.CurrentMap
		out.CurrentLevel = t.CurrentLevel
		out.StreakDays = t.StreakDays
	}()

	if t.LastDailyReset != nil && !t.LastDailyReset.Before(window) {
		return out
	}

	out.Applied = true
	stamp := window.UTC()
	if t.LastDailyReset == nil {
		t.LastDailyReset = &stamp
		t.UpdatedAt = now
		out.Action = ResetInitialized
		return out
	}

	previous := window.AddDate(0, 0, -1)
	if t.LastPlayedAt != nil && !t.LastPlayedAt.Before(previous) {
		t.StreakDays++
	} else {
		t.StreakDays = 0
	}

	current := t.MapProgressFor(t.CurrentMap)
	playedThisWindow := t.LastPlayedAt != nil && !t.LastPlayedAt.Before(window)

	switch {
	case current.Completed:
		t.CurrentMap++
		t.CurrentLevel = 1
		out.Action = ResetAdvancedMap
	case playedThisWindow:
		out.Action = ResetKept
	default:
		t.setMapProgress(t.CurrentMap, MapProgress{LevelsCompleted: []int{}})
		t.CurrentLevel = 1
		out.Action = ResetRestartedMap
	}

	t.LastDailyReset = &stamp
	t.UpdatedAt = now

	return out
}

// ParseResetLocation accepts an IANA zone name ("Europe/Berlin"), "UTC"/"GMT",
// or a fixed offset ("UTC+3", "+05:30", "-7").
func ParseResetLocation(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	switch strings.ToUpper(tz) {
	case "", "UTC", "GMT", "ETC/UTC":
		return time.UTC, nil
	}

	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}

	offset := tz
	if strings.HasPrefix(strings.ToUpper(offset), "UTC") {
		offset = strings.TrimSpace(offset[3:])
	}
	seconds, ok := parseOffsetSeconds(offset)
	if !ok {
		return nil, fmt.Errorf("unsupported timezone %q", tz)
	}

	sign := '+'
	abs := seconds
	if seconds < 0 {
		sign = '-'
		abs = -seconds
	}
	name := fmt.Sprintf("UTC%c%02d:%02d", sign, abs/3600, abs%3600/60)

	return time.FixedZone(name, seconds), nil
}

func parseOffsetSeconds(s string) (int, bool) {
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return 0, false
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}

	hh, mm, hasMinutes := strings.Cut(s[1:], ":")
	if !hasMinutes {
		mm = "0"
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 14 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m >= 60 {
		return 0, false
	}

	return sign * (h*3600 + m*60), true
}

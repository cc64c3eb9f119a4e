package entities

import (
	"testing"
	"time"
)

func TestResetIfDueFirstObservationStampsOnly(t *testing.T) {
	t.Parallel()

	policy := NewResetPolicy(time.UTC)
	tr := NewProgressTracker("u1", testNow)
	tr.ApplyCompletion(1, 2, testNow)

	out := tr.ResetIfDue(policy, testNow)
	if !out.Applied || out.Action != ResetInitialized {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if tr.CurrentLevel != 2 {
		t.Fatalf("first observation changed level to %d", tr.CurrentLevel)
	}

	again := tr.ResetIfDue(policy, testNow.Add(time.Hour))
	if again.Applied || again.Action != ResetNone {
		t.Fatalf("second call in window should be a no-op, got %+v", again)
	}
}

func TestResetIfDueRestartsIncompleteMap(t *testing.T) {
	t.Parallel()

	policy := NewResetPolicy(time.UTC)
	tr := NewProgressTracker("u1", testNow)
	tr.ResetIfDue(policy, testNow)
	tr.ApplyCompletion(1, 3, testNow)
	tr.ApplyCompletion(2, 3, testNow)

	nextDay := testNow.Add(24 * time.Hour)
	out := tr.ResetIfDue(policy, nextDay)
	if !out.Applied || out.Action != ResetRestartedMap {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if tr.CurrentLevel != 1 || tr.CurrentMap != 1 {
		t.Fatalf("map=%d level=%d, want map 1 level 1", tr.CurrentMap, tr.CurrentLevel)
	}
	if mp := tr.MapProgressFor(1); len(mp.LevelsCompleted) != 0 || mp.PointsEarned {
		t.Fatalf("map cycle not restarted: %+v", mp)
	}
	if tr.StreakDays != 1 {
		t.Fatalf("streak = %d, want 1", tr.StreakDays)
	}

	// A restarted cycle credits the level again.
	if res := tr.ApplyCompletion(1, 2, nextDay); res.EarnedXP != 150 {
		t.Fatalf("earned after restart = %d, want 150", res.EarnedXP)
	}

	if again := tr.ResetIfDue(policy, nextDay.Add(2*time.Hour)); again.Applied {
		t.Fatalf("reset applied twice in one window")
	}
}

func TestResetIfDueAdvancesCompletedMap(t *testing.T) {
	t.Parallel()

	policy := NewResetPolicy(time.UTC)
	tr := NewProgressTracker("u1", testNow)
	tr.ResetIfDue(policy, testNow)
	for level := 1; level <= MaxLevelsPerMap; level++ {
		tr.ApplyCompletion(level, 4, testNow)
	}

	out := tr.ResetIfDue(policy, testNow.Add(24*time.Hour))
	if out.Action != ResetAdvancedMap {
		t.Fatalf("action = %s, want %s", out.Action, ResetAdvancedMap)
	}
	if tr.CurrentMap != 2 || tr.CurrentLevel != 1 || out.CurrentMap != 2 {
		t.Fatalf("map=%d level=%d", tr.CurrentMap, tr.CurrentLevel)
	}
	if mp := tr.MapProgressFor(2); mp.Completed || len(mp.LevelsCompleted) != 0 {
		t.Fatalf("new map should start empty: %+v", mp)
	}
	if !tr.MapProgressFor(1).Completed {
		t.Fatalf("previous map lost its completion")
	}
}

func TestResetIfDueKeepsProgressEarnedInWindow(t *testing.T) {
	t.Parallel()

	policy := NewResetPolicy(time.UTC)
	tr := NewProgressTracker("u1", testNow)
	tr.ResetIfDue(policy, testNow)

	nextDay := testNow.Add(24 * time.Hour)
	tr.ApplyCompletion(1, 2, nextDay)

	out := tr.ResetIfDue(policy, nextDay.Add(time.Hour))
	if out.Action != ResetKept {
		t.Fatalf("action = %s, want %s", out.Action, ResetKept)
	}
	if tr.CurrentLevel != 2 {
		t.Fatalf("progress earned today was wiped")
	}
}

func TestResetIfDueBreaksStreak(t *testing.T) {
	t.Parallel()

	policy := NewResetPolicy(time.UTC)
	tr := NewProgressTracker("u1", testNow)
	tr.ResetIfDue(policy, testNow)
	tr.StreakDays = 5
	tr.ApplyCompletion(1, 2, testNow)

	tr.ResetIfDue(policy, testNow.Add(72*time.Hour))
	if tr.StreakDays != 0 {
		t.Fatalf("streak = %d, want 0", tr.StreakDays)
	}
}

func TestParseResetLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		offset int
		ok     bool
	}{
		{in: "", offset: 0, ok: true},
		{in: "UTC", offset: 0, ok: true},
		{in: "UTC+3", offset: 3 * 3600, ok: true},
		{in: "+05:30", offset: 5*3600 + 30*60, ok: true},
		{in: "-7", offset: -7 * 3600, ok: true},
		{in: "UTC+15", ok: false},
		{in: "Mars/Olympus", ok: false},
	}

	for _, tt := range tests {
		loc, err := ParseResetLocation(tt.in)
		if !tt.ok {
			if err == nil {
				t.Fatalf("ParseResetLocation(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseResetLocation(%q) error = %v", tt.in, err)
		}
		_, offset := testNow.In(loc).Zone()
		if offset != tt.offset {
			t.Fatalf("ParseResetLocation(%q) offset = %d, want %d", tt.in, offset, tt.offset)
		}
	}
}

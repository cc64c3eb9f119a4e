package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
)

func TestKeyedLockerSerializesSameKey(t *testing.T) {
	t.Parallel()

	locker := NewKeyedLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "u1")
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
			unlock()
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
	if len(locker.locks) != 0 {
		t.Fatalf("locker kept %d idle keys", len(locker.locks))
	}
}

func TestKeyedLockerTimesOut(t *testing.T) {
	t.Parallel()

	locker := NewKeyedLocker()
	unlock, err := locker.Lock(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, "u1"); !errors.Is(err, domain.ErrLockTimeout) {
		t.Fatalf("err = %v, want ErrLockTimeout", err)
	}

	other, err := locker.Lock(context.Background(), "u2")
	if err != nil {
		t.Fatalf("other key must not block: %v", err)
	}
	other()
}

func TestAnswerStoreUpsertKeepsOneRecord(t *testing.T) {
	t.Parallel()

	store := NewAnswerStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	first := entities.NewAnsweredRecord("u1", 7, 1, false, now)
	second := entities.NewAnsweredRecord("u1", 7, 1, true, now.Add(time.Minute))
	for _, rec := range []*entities.AnsweredRecord{first, second} {
		if err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	ids, err := store.ListAnsweredIDs(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("ListAnsweredIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != 7 {
		t.Fatalf("ids = %v, want [7]", ids)
	}

	stats, err := store.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Answered != 1 || stats.Correct != 1 {
		t.Fatalf("stats = %+v, want latest outcome only", stats)
	}
}

func TestProgressStoreVersionCheck(t *testing.T) {
	t.Parallel()

	store := NewProgressStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	if err := store.Create(ctx, entities.NewProgressTracker("u1", now)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	a, _ := store.Get(ctx, "u1")
	b, _ := store.Get(ctx, "u1")

	a.TotalXP = 100
	if err := store.Update(ctx, a); err != nil {
		t.Fatalf("Update: %v", err)
	}

	b.TotalXP = 50
	if err := store.Update(ctx, b); !errors.Is(err, domain.ErrOptimisticLock) {
		t.Fatalf("stale Update err = %v, want ErrOptimisticLock", err)
	}

	got, _ := store.Get(ctx, "u1")
	if got.TotalXP != 100 || got.Version != 1 {
		t.Fatalf("tracker = %+v", got)
	}
}

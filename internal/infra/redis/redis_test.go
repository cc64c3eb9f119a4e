package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// testClient runs against an in-process miniredis unless FINQUEST_TEST_REDIS_URL
// points at a real server. mr is nil in the latter case.
func testClient(t *testing.T) (context.Context, *goredis.Client, *miniredis.Miniredis, string) {
	t.Helper()

	ctx := context.Background()
	prefix := "finquest-test-" + uuid.NewString()

	var mr *miniredis.Miniredis
	url := os.Getenv("FINQUEST_TEST_REDIS_URL")
	if url == "" {
		mr = miniredis.RunT(t)
		url = "redis://" + mr.Addr()
	}

	rdb, err := NewClient(ctx, url)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	return ctx, rdb, mr, prefix
}

func TestSessionStoreVersionCheck(t *testing.T) {
	ctx, rdb, _, prefix := testClient(t)

	store := NewSessionStore(rdb, prefix, time.Minute, time.Minute)
	session := entities.NewQuizSession(uuid.New(), "u1", 1, []int64{1, 2, 3, 4}, testNow)

	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, session); err == nil {
		t.Fatalf("second Create must fail")
	}

	stale, err := store.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	session.Complete(testNow)
	if err := store.Update(ctx, session); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if session.Version != 1 {
		t.Fatalf("version = %d, want 1", session.Version)
	}

	if err := store.Update(ctx, stale); !errors.Is(err, domain.ErrOptimisticLock) {
		t.Fatalf("stale Update err = %v, want ErrOptimisticLock", err)
	}

	got, err := store.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.IsCompleted() || got.Version != 1 {
		t.Fatalf("stored session = %+v", got)
	}

	if _, err := store.GetByID(ctx, uuid.New()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("missing session err = %v", err)
	}
}

func TestSessionStoreUpdateMissing(t *testing.T) {
	ctx, rdb, _, prefix := testClient(t)

	store := NewSessionStore(rdb, prefix, time.Minute, time.Minute)
	session := entities.NewQuizSession(uuid.New(), "u1", 1, []int64{1, 2, 3, 4}, testNow)

	if err := store.Update(ctx, session); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionStoreTTL(t *testing.T) {
	ctx, rdb, mr, prefix := testClient(t)

	ttl, retention := time.Hour, 10*time.Minute
	store := NewSessionStore(rdb, prefix, ttl, retention)
	session := entities.NewQuizSession(uuid.New(), "u1", 1, []int64{1, 2, 3, 4}, testNow)
	key := store.key(session.ID)

	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if mr != nil {
		mr.FastForward(20 * time.Minute)
	}

	// Answering keeps the remaining lifetime of an open session.
	session.Answers = append(session.Answers, entities.SubmittedAnswer{QuestionID: 1, SelectedAnswer: "Save", CorrectAnswer: "Save", IsCorrect: true, AnsweredAt: testNow})
	if err := store.Update(ctx, session); err != nil {
		t.Fatalf("Update open: %v", err)
	}
	open, err := rdb.TTL(ctx, key).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if open <= retention || open > ttl {
		t.Fatalf("open ttl = %v, want in (%v, %v]", open, retention, ttl)
	}
	if mr != nil && open != 40*time.Minute {
		t.Fatalf("open ttl = %v, want 40m", open)
	}

	session.Complete(testNow)
	if err := store.Update(ctx, session); err != nil {
		t.Fatalf("Update completed: %v", err)
	}
	done, err := rdb.TTL(ctx, key).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if done <= 0 || done > retention {
		t.Fatalf("completed ttl = %v, want in (0, %v]", done, retention)
	}

	if mr == nil {
		return
	}
	mr.FastForward(retention + time.Second)
	if _, err := store.GetByID(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expired session err = %v, want ErrSessionNotFound", err)
	}
}

func TestLockerExcludesSecondHolder(t *testing.T) {
	ctx, rdb, _, prefix := testClient(t)

	locker := NewLocker(rdb, prefix, 5*time.Second)

	unlock, err := locker.Lock(ctx, "u1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(waitCtx, "u1"); !errors.Is(err, domain.ErrLockTimeout) {
		t.Fatalf("second Lock err = %v, want ErrLockTimeout", err)
	}

	// Other keys are independent.
	other, err := locker.Lock(ctx, "u2")
	if err != nil {
		t.Fatalf("Lock u2: %v", err)
	}
	other()

	unlock()

	unlock, err = locker.Lock(ctx, "u1")
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	unlock()
}

func TestLockerReleaseKeepsForeignToken(t *testing.T) {
	ctx, rdb, _, prefix := testClient(t)

	locker := NewLocker(rdb, prefix, 5*time.Second)
	lockKey := fmt.Sprintf("%s:lock:%s", prefix, "u1")

	unlock, err := locker.Lock(ctx, "u1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	// Our lease ran out and another instance took the lock.
	if err := rdb.Set(ctx, lockKey, "someone-else", 5*time.Second).Err(); err != nil {
		t.Fatalf("Set: %v", err)
	}

	unlock()

	got, err := rdb.Get(ctx, lockKey).Result()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "someone-else" {
		t.Fatalf("lock value = %q, want the other holder's token", got)
	}
}

func TestLockerLeaseExpires(t *testing.T) {
	ctx, rdb, mr, prefix := testClient(t)
	if mr == nil {
		t.Skip("needs an in-process clock")
	}

	locker := NewLocker(rdb, prefix, 2*time.Second)

	if _, err := locker.Lock(ctx, "u1"); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	// The owner never unlocks; its lease must not block others forever.
	mr.FastForward(3 * time.Second)

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlock, err := locker.Lock(waitCtx, "u1")
	if err != nil {
		t.Fatalf("Lock after expiry: %v", err)
	}
	unlock()
}

package repository

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
	"github.com/aliskhannn/finquest/internal/infra/postgres"
)

// Set FINQUEST_TEST_DATABASE_URL to run these against a disposable database.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("FINQUEST_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FINQUEST_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{MaxConns: 4})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	return pool
}

func TestQuestionAndAnswerRepositories(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	// A level no other test run uses keeps listings isolated.
	level := 1000 + rand.IntN(1_000_000)
	userID := "user-" + uuid.NewString()

	questions := []*entities.QuizQuestion{
		{Level: level, Question: "What is a budget?", Options: []string{"A plan", "A loan", "A tax"}, CorrectAnswer: "A plan", Active: true, CreatedAt: now},
		{Level: level, Question: "What is interest?", Options: []string{"A fee", "A gift", "A cost of money"}, CorrectAnswer: "A cost of money", Active: true, CreatedAt: now},
	}

	questionRepo := NewQuestionRepository(pool)
	if err := questionRepo.CreateBatch(ctx, questions); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if questions[0].ID == 0 || questions[1].ID == 0 {
		t.Fatalf("ids not assigned: %d, %d", questions[0].ID, questions[1].ID)
	}

	if err := questionRepo.SetActive(ctx, questions[1].ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	active, err := questionRepo.ListActiveByLevel(ctx, level)
	if err != nil {
		t.Fatalf("ListActiveByLevel: %v", err)
	}
	if len(active) != 1 || active[0].ID != questions[0].ID {
		t.Fatalf("active = %+v", active)
	}
	if _, err := questionRepo.GetByID(ctx, -1); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("GetByID missing err = %v", err)
	}

	answerRepo := NewAnswerRepository(pool)
	for _, correct := range []bool{false, true} {
		rec := entities.NewAnsweredRecord(userID, questions[0].ID, level, correct, now)
		if err := answerRepo.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	ids, err := answerRepo.ListAnsweredIDs(ctx, userID, level)
	if err != nil {
		t.Fatalf("ListAnsweredIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != questions[0].ID {
		t.Fatalf("answered ids = %v", ids)
	}

	stats, err := answerRepo.Stats(ctx, userID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Answered != 1 || stats.Correct != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestSessionRepositoryVersionCheck(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	repo := NewSessionRepository(pool)
	session := entities.NewQuizSession(uuid.New(), "user-"+uuid.NewString(), 1, []int64{1, 2, 3, 4}, now)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stale, err := repo.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	session.RecordAnswer(entities.SubmittedAnswer{QuestionID: 1, SelectedAnswer: "A", CorrectAnswer: "A", IsCorrect: true, AnsweredAt: now})
	if err := repo.Update(ctx, session); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := repo.Update(ctx, stale); !errors.Is(err, domain.ErrOptimisticLock) {
		t.Fatalf("stale Update err = %v, want ErrOptimisticLock", err)
	}

	got, err := repo.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Score != 1 || len(got.Answers) != 1 || got.Status != entities.SessionInProgress {
		t.Fatalf("stored session = %+v", got)
	}

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("missing session err = %v", err)
	}
}

func TestProgressRepositoryRoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	userID := "user-" + uuid.NewString()

	repo := NewProgressRepository(pool)
	if _, err := repo.Get(ctx, userID); !errors.Is(err, domain.ErrUserProgressNotFound) {
		t.Fatalf("Get missing err = %v", err)
	}

	if err := repo.Create(ctx, entities.NewProgressTracker(userID, now)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// A second Create keeps the first row.
	if err := repo.Create(ctx, entities.NewProgressTracker(userID, now.Add(time.Hour))); err != nil {
		t.Fatalf("second Create: %v", err)
	}

	tracker, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	stale := tracker.Clone()

	outcome := tracker.ApplyCompletion(1, 3, now)
	if !outcome.Changed {
		t.Fatalf("completion did not change the tracker")
	}
	if err := repo.Update(ctx, tracker); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := repo.Update(ctx, stale); !errors.Is(err, domain.ErrOptimisticLock) {
		t.Fatalf("stale Update err = %v, want ErrOptimisticLock", err)
	}

	got, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TotalXP != 175 || got.CurrentLevel != 2 || !got.MapProgressFor(1).HasLevel(1) {
		t.Fatalf("stored tracker = %+v", got)
	}
	if got.LastPlayedAt == nil || !got.LastPlayedAt.Equal(now) {
		t.Fatalf("last played = %v, want %v", got.LastPlayedAt, now)
	}
}

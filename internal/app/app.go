// Package app builds the service graph from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aliskhannn/finquest/internal/config"
	"github.com/aliskhannn/finquest/internal/domain/entities"
	"github.com/aliskhannn/finquest/internal/infra/memory"
	"github.com/aliskhannn/finquest/internal/infra/postgres"
	"github.com/aliskhannn/finquest/internal/infra/postgres/repository"
	infraredis "github.com/aliskhannn/finquest/internal/infra/redis"
	"github.com/aliskhannn/finquest/internal/service"
)

// App holds the services shared by the HTTP server and the operator CLI.
type App struct {
	Bank      *service.QuestionBank
	Ledger    *service.AnswerLedger
	Progress  *service.ProgressService
	Engine    *service.Engine
	Scheduler *service.ResetScheduler
	Location  *time.Location

	closers []func()
}

type stores struct {
	questions service.QuestionRepository
	answers   service.AnswerRepository
	sessions  service.SessionRepository
	progress  service.ProgressRepository
	tr        service.Transactor
	locker    service.Locker
}

// New connects the configured backends and wires the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{}

	loc, err := entities.ParseResetLocation(cfg.Reset.Timezone)
	if err != nil {
		return nil, fmt.Errorf("reset timezone: %w", err)
	}
	a.Location = loc

	st, err := a.openStores(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Bank = service.NewQuestionBank(st.questions, st.tr, logger)
	a.Ledger = service.NewAnswerLedger(st.answers)
	selector := service.NewQuestionSelector(a.Bank, a.Ledger)
	a.Progress = service.NewProgressService(st.progress, a.Ledger, st.tr, st.locker, entities.NewResetPolicy(loc), logger)
	a.Engine = service.NewEngine(a.Bank, a.Ledger, selector, a.Progress, st.sessions, st.tr, st.locker, logger)
	a.Scheduler = service.NewResetScheduler(a.Progress, st.sessions, cfg.Reset.Schedule, loc, cfg.Sessions.Retention, logger)

	return a, nil
}

func (a *App) openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	st := &stores{}

	var pool *pgxpool.Pool
	if cfg.NeedsPostgres() {
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, err
		}
		pool, err = postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		logger.Info("connected to postgres")
	}

	var rdb *goredis.Client
	if cfg.NeedsRedis() {
		var err error
		rdb, err = infraredis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		logger.Info("connected to redis")
	}

	switch cfg.Storage.Engine {
	case config.BackendPostgres:
		st.questions = repository.NewQuestionRepository(pool)
		st.answers = repository.NewAnswerRepository(pool)
		st.progress = repository.NewProgressRepository(pool)
		st.tr = postgres.NewTransactor(pool)
	default:
		st.questions = memory.NewQuestionStore()
		st.answers = memory.NewAnswerStore()
		st.progress = memory.NewProgressStore()
		st.tr = memory.NewTransactor()
	}

	switch cfg.Sessions.Store {
	case config.BackendPostgres:
		st.sessions = repository.NewSessionRepository(pool)
	case config.BackendRedis:
		st.sessions = infraredis.NewSessionStore(rdb, cfg.Redis.KeyPrefix, cfg.Sessions.TTL, cfg.Sessions.Retention)
	default:
		st.sessions = memory.NewSessionStore()
	}

	switch cfg.Locks.Backend {
	case config.BackendRedis:
		st.locker = infraredis.NewLocker(rdb, cfg.Redis.KeyPrefix, cfg.Locks.TTL)
	default:
		st.locker = memory.NewKeyedLocker()
	}

	logger.Info("storage configured",
		zap.String("storage", cfg.Storage.Engine),
		zap.String("sessions", cfg.Sessions.Store),
		zap.String("locks", cfg.Locks.Backend),
	)

	return st, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

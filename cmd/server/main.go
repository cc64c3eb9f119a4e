package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/finquest/internal/app"
	"github.com/aliskhannn/finquest/internal/config"
	httpdelivery "github.com/aliskhannn/finquest/internal/delivery/http"
	httpH "github.com/aliskhannn/finquest/internal/delivery/http/handlers"
	"github.com/aliskhannn/finquest/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to build application", zap.Error(err))
	}
	defer a.Close()

	// Seed the catalog on first start.
	if cfg.Catalog.SeedPath != "" {
		n, err := a.Bank.SeedFromFile(ctx, cfg.Catalog.SeedPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			lg.Warn("seed catalog not found", zap.String("path", cfg.Catalog.SeedPath))
		case err != nil:
			lg.Fatal("failed to seed catalog", zap.Error(err))
		case n > 0:
			lg.Info("catalog seeded", zap.Int("questions", n))
		}
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpdelivery.NewRouter(httpdelivery.RouterConfig{
		Logger:          lg,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		QuizHandler:     httpH.NewQuizHandler(a.Engine),
		ProgressHandler: httpH.NewProgressHandler(a.Progress),
		QuestionHandler: httpH.NewQuestionHandler(a.Bank),
		HealthHandler:   httpH.NewHealthHandler(),
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return a.Scheduler.Start(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Error("server stopped with error", zap.Error(err))
	}
}

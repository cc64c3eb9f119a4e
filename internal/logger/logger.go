package logger

import (
	"go.uber.org/zap"

	"github.com/aliskhannn/finquest/internal/config"
)

// Name is the root logger name; components add their own with Named.
const Name = "finquest"

// New builds a JSON logger in production and a console one elsewhere.
// Every entry carries the environment and the configured backends.
func New(cfg *config.Config) (*zap.Logger, error) {
	var (
		lg  *zap.Logger
		err error
	)
	if cfg.Env == "production" {
		lg, err = zap.NewProduction()
	} else {
		lg, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}

	return lg.Named(Name).With(
		zap.String("env", cfg.Env),
		zap.String("storage", cfg.Storage.Engine),
		zap.String("sessions", cfg.Sessions.Store),
	), nil
}

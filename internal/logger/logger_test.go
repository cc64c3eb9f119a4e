package logger

import (
	"testing"

	"go.uber.org/zap"

	"github.com/aliskhannn/finquest/internal/config"
)

func TestNewLevelsByEnvironment(t *testing.T) {
	tests := []struct {
		env   string
		debug bool
	}{
		{"production", false},
		{"local", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := &config.Config{Env: tt.env}
			cfg.Storage.Engine = config.BackendMemory
			cfg.Sessions.Store = config.BackendMemory

			lg, err := New(cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			if lg.Name() != Name {
				t.Fatalf("name = %q, want %q", lg.Name(), Name)
			}
			if got := lg.Core().Enabled(zap.DebugLevel); got != tt.debug {
				t.Fatalf("debug enabled = %v, want %v", got, tt.debug)
			}
		})
	}
}

package app

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/finquest/internal/config"
)

func TestNewWithMemoryBackends(t *testing.T) {
	cfg := &config.Config{
		Storage:  config.Storage{Engine: config.BackendMemory},
		Sessions: config.Sessions{Store: config.BackendMemory},
		Locks:    config.Locks{Backend: config.BackendMemory},
		Reset:    config.Reset{Schedule: "5 0 * * *", Timezone: "UTC+3"},
	}

	a, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Engine == nil || a.Scheduler == nil || a.Bank == nil {
		t.Fatalf("services not wired: %+v", a)
	}
	if _, offset := time.Date(2026, 3, 14, 0, 0, 0, 0, a.Location).Zone(); offset != 3*3600 {
		t.Fatalf("reset offset = %d, want %d", offset, 3*3600)
	}
}

func TestNewRejectsBadTimezone(t *testing.T) {
	cfg := &config.Config{
		Storage:  config.Storage{Engine: config.BackendMemory},
		Sessions: config.Sessions{Store: config.BackendMemory},
		Locks:    config.Locks{Backend: config.BackendMemory},
		Reset:    config.Reset{Timezone: "Mars/Olympus"},
	}

	if _, err := New(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatalf("New accepted an unknown timezone")
	}
}

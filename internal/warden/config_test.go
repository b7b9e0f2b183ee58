package warden

import (
	"errors"
	"testing"

	"github.com/danmuck/lodestone/internal/testutil/testlog"
)

func TestDefaultServiceConfigValidates(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultServiceConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.ReapDecrement() != 60 {
		t.Fatalf("reap decrement=%d want 60", cfg.ReapDecrement())
	}
}

func TestValidateRejectsBadCadence(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultServiceConfig()
	cfg.SimulationHz = 50
	cfg.NetworkHz = 7
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidServiceConfig) {
		t.Fatalf("expected ErrInvalidServiceConfig for 7/50, got %v", err)
	}

	cfg = DefaultServiceConfig()
	cfg.SimulationHz = 1
	cfg.NetworkHz = 2
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidServiceConfig) {
		t.Fatalf("expected ErrInvalidServiceConfig for net > sim, got %v", err)
	}
}

func TestWithDefaultsFillsZeroFields(t *testing.T) {
	testlog.Start(t)
	cfg := (ServiceConfig{}).WithDefaults()
	if cfg.ServerID == "" || cfg.Port == 0 || cfg.SimulationHz == 0 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Session.MaxSessions != 2 {
		t.Fatalf("session defaults not applied: %+v", cfg.Session)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("filled config invalid: %v", err)
	}
}

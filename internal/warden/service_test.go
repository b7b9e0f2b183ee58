package warden

import (
	"bytes"
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/danmuck/lodestone/internal/testutil/testlog"
)

// freeUDPPort grabs an ephemeral port and releases it for the service under
// test. Slightly racy, but local test runs reclaim it immediately.
func freeUDPPort(t *testing.T) uint16 {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("probe port: %v", err)
	}
	port := uint16(conn.LocalAddr().(*net.UDPAddr).Port)
	_ = conn.Close()
	return port
}

func TestStopBeforeStart(t *testing.T) {
	testlog.Start(t)
	svc := NewService()
	if err := svc.Stop(); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultServiceConfig()
	cfg.SimulationHz = 30
	cfg.NetworkHz = 7
	svc := NewServiceWithConfig(cfg)
	if err := svc.Start(); !errors.Is(err, ErrInvalidServiceConfig) {
		t.Fatalf("expected ErrInvalidServiceConfig, got %v", err)
	}
}

func TestStartStopPersistsWorld(t *testing.T) {
	testlog.Start(t)
	saveFile := filepath.Join(t.TempDir(), "world.sqlite")

	cfg := DefaultServiceConfig()
	cfg.Port = freeUDPPort(t)
	cfg.SaveFile = saveFile
	svc := NewServiceWithConfig(cfg)
	if err := svc.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.Server().World().SetTerrain([]byte("carved-out-cavern")); err != nil {
		t.Fatalf("set terrain: %v", err)
	}
	want := svc.Server().World().Snapshot()
	if err := svc.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	cfg2 := DefaultServiceConfig()
	cfg2.Port = freeUDPPort(t)
	cfg2.SaveFile = saveFile
	restarted := NewServiceWithConfig(cfg2)
	if err := restarted.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer func() {
		if err := restarted.Stop(); err != nil {
			t.Fatalf("stop restarted: %v", err)
		}
	}()

	if got := restarted.Server().World().Snapshot(); !bytes.Equal(got, want) {
		t.Fatalf("restored terrain mismatch: got=%q want=%q", got, want)
	}
	if restarted.Server().World().Revision() != 1 {
		t.Fatalf("restored revision=%d want 1", restarted.Server().World().Revision())
	}
}

func TestStartFailsWhenPortTaken(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultServiceConfig()
	cfg.Port = freeUDPPort(t)
	cfg.SaveFile = ""

	first := NewServiceWithConfig(cfg)
	if err := first.Start(); err != nil {
		t.Fatalf("first start: %v", err)
	}
	defer func() { _ = first.Stop() }()

	second := NewServiceWithConfig(cfg)
	if err := second.Start(); err == nil {
		_ = second.Stop()
		t.Fatalf("second bind on the same port succeeded")
	}
}

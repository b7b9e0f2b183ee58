package warden

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danmuck/lodestone/internal/transport"
	"github.com/danmuck/lodestone/internal/world"
	"github.com/rs/zerolog/log"
)

var ErrNotStarted = errors.New("warden: service not started")

// Service owns the warden process lifecycle: bind and world load at start,
// the tick driver loop while running, save and close at stop. Both tick
// cadences fire from one goroutine so core operations never overlap.
type Service struct {
	cfg     ServiceConfig
	server  *Server
	gateway *transport.Gateway
	store   *world.Store
}

// NewService builds a stopped service from cfg defaults.
func NewService() *Service {
	return NewServiceWithConfig(DefaultServiceConfig())
}

// NewServiceWithConfig builds a stopped service with explicit configuration.
func NewServiceWithConfig(cfg ServiceConfig) *Service {
	return &Service{cfg: cfg.WithDefaults()}
}

// Server exposes the core for the admin surface and tests; nil until Start.
func (s *Service) Server() *Server {
	return s.server
}

// Start acquires the transport endpoint and loads the persisted world.
// Bind failure is the one fatal startup condition.
func (s *Service) Start() error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	gw, err := transport.Bind(s.cfg.Port)
	if err != nil {
		return err
	}
	s.gateway = gw
	s.server = NewServer(s.cfg, gw)

	if path := strings.TrimSpace(s.cfg.SaveFile); path != "" {
		store, err := world.OpenStore(path)
		if err != nil {
			_ = gw.Close()
			return err
		}
		s.store = store
		snapshot, revision, err := store.Load()
		switch {
		case err == nil:
			if err := s.server.World().Restore(snapshot, revision); err != nil {
				_ = s.closeResources()
				return err
			}
			log.Info().
				Uint64("revision", revision).
				Int("bytes", len(snapshot)).
				Msg("warden.Service.Start world restored")
		case errors.Is(err, world.ErrNoSnapshot):
			log.Info().Msg("warden.Service.Start no saved world, using default terrain")
		default:
			_ = s.closeResources()
			return err
		}
	}

	log.Info().
		Str("server_id", s.cfg.ServerID).
		Str("addr", gw.LocalAddr().String()).
		Int("simulation_hz", s.cfg.SimulationHz).
		Int("network_hz", s.cfg.NetworkHz).
		Msg("warden.Service.Start listening")
	return nil
}

// Stop saves the world and releases the socket. Safe to call once after a
// successful Start.
func (s *Service) Stop() error {
	if s.server == nil {
		return ErrNotStarted
	}
	var saveErr error
	if s.store != nil {
		w := s.server.World()
		saveErr = s.store.Save(w.Revision(), w.Snapshot(), time.Now())
		if saveErr != nil {
			log.Error().Err(saveErr).Msg("warden.Service.Stop world save failed")
		} else {
			log.Info().Uint64("revision", w.Revision()).Msg("warden.Service.Stop world saved")
		}
	}
	if err := s.closeResources(); err != nil {
		return err
	}
	return saveErr
}

func (s *Service) closeResources() error {
	var firstErr error
	if s.store != nil {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.store = nil
	}
	if s.gateway != nil {
		if err := s.gateway.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.gateway = nil
	}
	return firstErr
}

// Run starts the service and blocks until signal shutdown.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.Start(); err != nil {
		return err
	}
	defer func() {
		if err := s.Stop(); err != nil {
			log.Error().Err(err).Msg("warden.Service.Run stop failed")
		}
	}()

	return s.serve(ctx)
}

// serve drives the two cadences plus the heartbeat from a single select
// loop, and supervises the optional admin listener.
func (s *Service) serve(ctx context.Context) error {
	simTicker := time.NewTicker(time.Second / time.Duration(s.cfg.SimulationHz))
	defer simTicker.Stop()
	netTicker := time.NewTicker(time.Second / time.Duration(s.cfg.NetworkHz))
	defer netTicker.Stop()
	heartbeat := time.NewTicker(s.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	adminErr := make(chan error, 1)
	if addr := strings.TrimSpace(s.cfg.AdminListenAddr); addr != "" {
		admin := NewAdmin(s.cfg, s.server)
		go func() {
			adminErr <- admin.Serve(ctx, addr)
		}()
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("warden.Service.serve shutdown")
			return nil
		case err := <-adminErr:
			if err != nil {
				return fmt.Errorf("warden: admin surface: %w", err)
			}
		case <-simTicker.C:
			s.server.OnSimulationTick()
		case <-netTicker.C:
			s.server.OnNetworkTick()
		case <-heartbeat.C:
			status := s.server.Status()
			log.Info().
				Str("server_id", status.ServerID).
				Uint64("sequence", status.Sequence).
				Int("sessions", status.Sessions).
				Uint64("terrain_revision", status.TerrainRevision).
				Int("pending_inputs", status.PendingInputs).
				Int("events", s.server.Events().Len()).
				Msg("warden.Service.heartbeat")
		}
	}
}

package warden

import (
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/lodestone/internal/protocol/session"
)

var ErrInvalidServiceConfig = errors.New("warden: invalid service config")

// ServiceConfig configures one warden process.
type ServiceConfig struct {
	// ServerID names this warden in logs, metrics, and admin views.
	ServerID string
	// Port is the UDP port the gateway binds on all interfaces.
	Port uint16

	// SimulationHz drives the inbound drain and the global sequence.
	SimulationHz int
	// NetworkHz drives broadcast, flush, and the reaper. Must divide
	// SimulationHz so the reaper decrement is a whole tick count.
	NetworkHz int

	// HeartbeatInterval paces the service status log line.
	HeartbeatInterval time.Duration

	// SaveFile is the sqlite path for terrain persistence; empty disables
	// persistence entirely.
	SaveFile string

	// AdminListenAddr serves the HTTP admin surface when non-empty.
	AdminListenAddr string
	// AdminAuthToken guards the admin surface when non-empty.
	AdminAuthToken string
	// AdminCORSOrigins is the allowed origin list for the admin surface.
	AdminCORSOrigins []string

	// EventLogSize bounds the in-memory lifecycle event feed.
	EventLogSize int

	Session session.Config
}

// DefaultServiceConfig returns the shipping defaults: 60 Hz simulation,
// 1 Hz network, two clients.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ServerID:          "warden.local",
		Port:              5227,
		SimulationHz:      60,
		NetworkHz:         1,
		HeartbeatInterval: 5 * time.Second,
		SaveFile:          "local/world.sqlite",
		AdminListenAddr:   "",
		AdminCORSOrigins:  []string{"http://localhost:3000"},
		EventLogSize:      128,
		Session:           session.DefaultConfig(),
	}
}

// WithDefaults fills zero-valued fields from DefaultServiceConfig.
func (c ServiceConfig) WithDefaults() ServiceConfig {
	def := DefaultServiceConfig()
	if c.ServerID == "" {
		c.ServerID = def.ServerID
	}
	if c.Port == 0 {
		c.Port = def.Port
	}
	if c.SimulationHz <= 0 {
		c.SimulationHz = def.SimulationHz
	}
	if c.NetworkHz <= 0 {
		c.NetworkHz = def.NetworkHz
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = def.HeartbeatInterval
	}
	if c.EventLogSize <= 0 {
		c.EventLogSize = def.EventLogSize
	}
	c.Session = c.Session.WithDefaults()
	return c
}

func (c ServiceConfig) Validate() error {
	if c.SimulationHz <= 0 {
		return fmt.Errorf("%w: simulation_hz must be positive", ErrInvalidServiceConfig)
	}
	if c.NetworkHz <= 0 {
		return fmt.Errorf("%w: network_hz must be positive", ErrInvalidServiceConfig)
	}
	if c.SimulationHz < c.NetworkHz {
		return fmt.Errorf("%w: simulation_hz must be >= network_hz", ErrInvalidServiceConfig)
	}
	if c.SimulationHz%c.NetworkHz != 0 {
		return fmt.Errorf("%w: network_hz must divide simulation_hz", ErrInvalidServiceConfig)
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("%w: heartbeat_interval must be positive", ErrInvalidServiceConfig)
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	return nil
}

// ReapDecrement is the simulation-tick count one reaper run charges every
// session.
func (c ServiceConfig) ReapDecrement() uint64 {
	return uint64(c.SimulationHz / c.NetworkHz)
}

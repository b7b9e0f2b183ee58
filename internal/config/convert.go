package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/lodestone/internal/protocol/session"
	"github.com/danmuck/lodestone/internal/warden"
)

// ServiceConfig converts an on-disk warden config into runtime form. Fields
// left zero in the file keep the service defaults.
func (cfg WardenConfig) ServiceConfig() (warden.ServiceConfig, error) {
	out := warden.DefaultServiceConfig()

	if v := strings.TrimSpace(cfg.ServerID); v != "" {
		out.ServerID = v
	}
	if cfg.Port != 0 {
		out.Port = cfg.Port
	}
	if cfg.SimulationHz > 0 {
		out.SimulationHz = cfg.SimulationHz
	}
	if cfg.NetworkHz > 0 {
		out.NetworkHz = cfg.NetworkHz
	}
	if v := strings.TrimSpace(cfg.Heartbeat); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return warden.ServiceConfig{}, fmt.Errorf("config heartbeat invalid: %w", err)
		}
		out.HeartbeatInterval = d
	}
	if v := strings.TrimSpace(cfg.SaveFile); v != "" {
		out.SaveFile = v
	}
	out.AdminListenAddr = strings.TrimSpace(cfg.AdminListenAddr)
	out.AdminAuthToken = strings.TrimSpace(cfg.AdminAuthToken)
	if len(cfg.AdminCORSOrigins) > 0 {
		out.AdminCORSOrigins = cfg.AdminCORSOrigins
	}

	if cfg.MaxSessions > 0 {
		out.Session.MaxSessions = cfg.MaxSessions
	}
	if cfg.SessionTTLTicks > 0 {
		out.Session.InitialTTL = cfg.SessionTTLTicks
	}
	if v := strings.TrimSpace(cfg.TTLPolicy); v != "" {
		out.Session.TTLPolicy = session.TTLPolicy(v)
	}

	if err := out.Validate(); err != nil {
		return warden.ServiceConfig{}, err
	}
	return out, nil
}

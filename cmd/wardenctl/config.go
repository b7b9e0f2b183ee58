package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/lodestone/internal/protocol/session"
	"github.com/danmuck/lodestone/internal/warden"
)

// fileConfig is the operator overlay: only keys present in the file override
// the service defaults.
type fileConfig struct {
	ServerID     string `toml:"server_id"`
	Port         int    `toml:"port"`
	SimulationHz int    `toml:"simulation_hz"`
	NetworkHz    int    `toml:"network_hz"`
	Heartbeat    string `toml:"heartbeat"`
	SaveFile     string `toml:"save_file"`

	AdminListenAddr  string   `toml:"admin_listen_addr"`
	AdminAuthToken   string   `toml:"admin_auth_token"`
	AdminCORSOrigins []string `toml:"admin_cors_origins"`

	MaxSessions     int    `toml:"max_sessions"`
	SessionTTLTicks uint64 `toml:"session_ttl_ticks"`
	TTLPolicy       string `toml:"ttl_policy"`
}

func loadServiceConfig(path string) (warden.ServiceConfig, error) {
	cfg := warden.DefaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return warden.ServiceConfig{}, fmt.Errorf("load warden config: %w", err)
	}

	if meta.IsDefined("server_id") {
		if id := strings.TrimSpace(raw.ServerID); id != "" {
			cfg.ServerID = id
		}
	}

	if meta.IsDefined("port") {
		if raw.Port <= 0 || raw.Port > 65535 {
			return warden.ServiceConfig{}, fmt.Errorf("port out of range: %d", raw.Port)
		}
		cfg.Port = uint16(raw.Port)
	}

	if meta.IsDefined("simulation_hz") {
		cfg.SimulationHz = raw.SimulationHz
	}

	if meta.IsDefined("network_hz") {
		cfg.NetworkHz = raw.NetworkHz
	}

	if meta.IsDefined("heartbeat") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Heartbeat))
		if err != nil {
			return warden.ServiceConfig{}, fmt.Errorf("parse heartbeat: %w", err)
		}
		cfg.HeartbeatInterval = d
	}

	if meta.IsDefined("save_file") {
		cfg.SaveFile = strings.TrimSpace(raw.SaveFile)
	}

	if meta.IsDefined("admin_listen_addr") {
		cfg.AdminListenAddr = strings.TrimSpace(raw.AdminListenAddr)
	}

	if meta.IsDefined("admin_auth_token") {
		cfg.AdminAuthToken = strings.TrimSpace(raw.AdminAuthToken)
	}

	if meta.IsDefined("admin_cors_origins") {
		cfg.AdminCORSOrigins = normalizeOrigins(raw.AdminCORSOrigins)
	}

	if meta.IsDefined("max_sessions") {
		cfg.Session.MaxSessions = raw.MaxSessions
	}

	if meta.IsDefined("session_ttl_ticks") {
		cfg.Session.InitialTTL = raw.SessionTTLTicks
	}

	if meta.IsDefined("ttl_policy") {
		cfg.Session.TTLPolicy = session.TTLPolicy(strings.TrimSpace(raw.TTLPolicy))
	}

	if err := cfg.Validate(); err != nil {
		return warden.ServiceConfig{}, err
	}
	return cfg, nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// WardenConfig is the full on-disk configuration for one warden process.
type WardenConfig struct {
	ServerID     string `toml:"server_id"`
	Port         uint16 `toml:"port"`
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

// ClientSimConfig configures the headless protocol client.
type ClientSimConfig struct {
	ServerAddr   string `toml:"server_addr"`
	PingInterval string `toml:"ping_interval"`
	InputPayload string `toml:"input_payload"`
	RunFor       string `toml:"run_for"`
}

func LoadWardenConfig(path string) (WardenConfig, error) {
	var cfg WardenConfig
	if err := loadToml(path, &cfg); err != nil {
		return WardenConfig{}, err
	}
	if cfg.ServerID == "" {
		cfg.ServerID = "warden.local"
	}
	if err := ValidateWardenConfig(cfg); err != nil {
		return WardenConfig{}, err
	}
	return cfg, nil
}

func LoadClientSimConfig(path string) (ClientSimConfig, error) {
	var cfg ClientSimConfig
	if err := loadToml(path, &cfg); err != nil {
		return ClientSimConfig{}, err
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = "127.0.0.1:5227"
	}
	if err := ValidateClientSimConfig(cfg); err != nil {
		return ClientSimConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateWardenConfig(cfg WardenConfig) error {
	if strings.TrimSpace(cfg.ServerID) == "" {
		return fmt.Errorf("warden config missing server_id")
	}
	if cfg.SimulationHz < 0 || cfg.NetworkHz < 0 {
		return fmt.Errorf("warden config tick rates must not be negative")
	}
	if cfg.SimulationHz > 0 && cfg.NetworkHz > 0 && cfg.SimulationHz%cfg.NetworkHz != 0 {
		return fmt.Errorf("warden config network_hz must divide simulation_hz")
	}
	if cfg.MaxSessions < 0 {
		return fmt.Errorf("warden config max_sessions must not be negative")
	}
	if err := validateDuration("heartbeat", cfg.Heartbeat); err != nil {
		return err
	}
	switch strings.TrimSpace(cfg.TTLPolicy) {
	case "", "fresh-only", "any-inbound":
	default:
		return fmt.Errorf("warden config unknown ttl_policy %q", cfg.TTLPolicy)
	}
	return nil
}

func ValidateClientSimConfig(cfg ClientSimConfig) error {
	if strings.TrimSpace(cfg.ServerAddr) == "" {
		return fmt.Errorf("client-sim config missing server_addr")
	}
	if err := validateDuration("ping_interval", cfg.PingInterval); err != nil {
		return err
	}
	if err := validateDuration("run_for", cfg.RunFor); err != nil {
		return err
	}
	return nil
}

func validateDuration(key, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := time.ParseDuration(raw); err != nil {
		return fmt.Errorf("config %s invalid: %w", key, err)
	}
	return nil
}

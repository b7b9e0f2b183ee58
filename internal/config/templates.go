package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "warden":
		return wardenTemplate, nil
	case "client-sim":
		return clientSimTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const wardenTemplate = `server_id = "warden.local"
port = 5227
simulation_hz = 60
network_hz = 1
heartbeat = "5s"
save_file = "local/world.sqlite"

admin_listen_addr = "127.0.0.1:5228"
admin_auth_token = ""
admin_cors_origins = ["http://localhost:3000"]

max_sessions = 2
session_ttl_ticks = 600
ttl_policy = "fresh-only"
`

const clientSimTemplate = `server_addr = "127.0.0.1:5227"
ping_interval = "1s"
input_payload = ""
run_for = "0s"
`

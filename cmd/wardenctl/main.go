package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/lodestone/internal/logging"
	"github.com/danmuck/lodestone/internal/observability"
	"github.com/danmuck/lodestone/internal/warden"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "", "optional TOML config overlay")
	flag.Parse()

	// Optional .env for LODESTONE_LOG_* and deployment overrides.
	_ = godotenv.Load()
	logging.ConfigureRuntime()
	observability.InitLogger("wardenctl")

	cfg := warden.DefaultServiceConfig()
	if *configPath != "" {
		loaded, err := loadServiceConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wardenctl: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	svc := warden.NewServiceWithConfig(cfg)
	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "wardenctl: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"flag"
	"log"

	"github.com/danmuck/lodestone/internal/config"
)

func main() {
	kind := flag.String("kind", "warden", "config kind: warden|client-sim")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			switch *kind {
			case "warden":
				path = "cmd/wardenctl/config.toml"
			case "client-sim":
				path = "cmd/client-sim/config.toml"
			default:
				log.Fatalf("unknown kind: %s", *kind)
			}
		}

		switch *kind {
		case "warden":
			if _, err := config.LoadWardenConfig(path); err != nil {
				log.Fatal(err)
			}
		case "client-sim":
			if _, err := config.LoadClientSimConfig(path); err != nil {
				log.Fatal(err)
			}
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		switch *kind {
		case "warden":
			target = "cmd/wardenctl/config.toml"
		case "client-sim":
			target = "cmd/client-sim/config.toml"
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}

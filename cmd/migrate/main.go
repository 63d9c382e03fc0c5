package main

import (
	"os"

	"github.com/shopfabric/orderflow/internal/config"
	"github.com/shopfabric/orderflow/pkg/logging"
	"github.com/shopfabric/orderflow/pkg/migrate"
)

func main() {
	log := logging.New("migrate")
	cfg := config.Load()

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	var err error
	switch direction {
	case "up":
		err = migrate.Up(cfg.PGURL, cfg.MigrationsURL)
	case "down":
		err = migrate.Down(cfg.PGURL, cfg.MigrationsURL)
	default:
		log.Error("unknown direction, expected up or down", "direction", direction)
		os.Exit(2)
	}
	if err != nil {
		log.Error("migration failed", "direction", direction, "err", err)
		os.Exit(1)
	}
	log.Info("migration complete", "direction", direction)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"hookreg/internal/pkg/logger"
	"hookreg/internal/platform/config"
	"hookreg/internal/platform/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up, down or status")
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.MigrateContext(context.Background(), db, *direction); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	log.Info().Str("direction", *direction).Str("path", cfg.Database.Path).Msg("migration completed")
}

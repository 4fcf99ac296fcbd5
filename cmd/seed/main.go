package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/parlohq/parlo-backend/internal/bulkload"
	"github.com/parlohq/parlo-backend/internal/config"
	"github.com/parlohq/parlo-backend/internal/repository/sqldb"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if cfg.SnapshotPath == "" {
		log.Fatal().Msg("SNAPSHOT_PATH is required")
	}

	ctx := context.Background()

	// Open the configured storage backend
	store, err := sqldb.Open(ctx, cfg.StoreDriver, cfg.StoreDSN, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() { _ = store.Close() }()

	snap, err := bulkload.ReadFile(cfg.SnapshotPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read snapshot")
	}

	stats, err := bulkload.Load(ctx, store, snap)
	if err != nil {
		log.Fatal().Err(err).Msg("Bulk load failed, nothing was persisted")
	}

	log.Info().
		Int("users", stats.Users).
		Int("workspaces", stats.Workspaces).
		Int("conversations", stats.Conversations).
		Int("messages", stats.Messages).
		Msg("Bulk load complete")
}

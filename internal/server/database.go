package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/repository"
)

// ConnectDB opens the keyword store described by cfg and pings it.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repository.DB, error) {
	backend := "sqlite"
	if common.IsPostgresDSN(cfg.DSN) {
		backend = "postgres"
	}
	logger.Info("connecting to database", "backend", backend)
	db, err := repository.Open(ctx, repository.ConfigFrom(cfg), logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := PingDB(ctx, db, logger, cfg.DialTimeout); err != nil {
		CloseDB(db, logger)
		return nil, err
	}
	logger.Info("successfully connected to database")
	return db, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, db *repository.DB, logger *slog.Logger, timeout time.Duration) error {
	logger.Debug("pinging database")
	if err := db.HealthCheck(ctx, timeout); err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

// CloseDB closes the database connections gracefully
func CloseDB(db *repository.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	logger.Info("closing database connections")
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
		return
	}
	logger.Info("database connections closed")
}

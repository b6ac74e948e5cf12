package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"spendbot/core/logger"
)

// Connect opens the SQLite database, verifies connectivity and configures the pool.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "sqlite", cfg.DSN())
	if err != nil {
		logger.LogEvent(ctx, logger.DB, slog.LevelError, "connect",
			slog.String("status", "fail"),
			slog.String("db_path", cfg.Path),
			slog.Any("err", err),
		)
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)
	db.SetConnMaxIdleTime(5 * time.Minute)

	logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "connect",
		slog.String("status", "ok"),
		slog.String("db_path", cfg.Path),
		slog.Duration("duration", logger.Took(start)),
	)
	return db, nil
}

package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"spendbot/core/logger"
)

// Seeder populates reference data after migrations have been applied.
// Implementations must be idempotent.
type Seeder interface {
	Name() string
	Seed(ctx context.Context, db *sqlx.DB) error
}

func runSeeders(ctx context.Context, db *sqlx.DB, seeders []Seeder) error {
	for _, s := range seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Seed(ctx, db); err != nil {
			logger.LogEvent(ctx, logger.SEED, slog.LevelError, "seed",
				slog.String("status", "fail"),
				slog.String("seeder", s.Name()),
				slog.Any("err", err),
			)
			return err
		}
		logger.LogEvent(ctx, logger.SEED, slog.LevelInfo, "seed",
			slog.String("status", "ok"),
			slog.String("seeder", s.Name()),
			slog.Duration("duration", logger.Took(start)),
		)
	}
	return nil
}

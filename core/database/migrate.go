package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemig "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"spendbot/core/logger"
)

// Migrate applies pending schema migrations from the embedded filesystem.
// A database that is already up to date is not an error.
func Migrate(ctx context.Context, db *sqlx.DB, migrations fs.FS, dir string) error {
	start := time.Now()

	source, err := iofs.New(migrations, dir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlitemig.WithInstance(db.DB, &sqlitemig.Config{})
	if err != nil {
		return fmt.Errorf("prepare migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}

	err = m.Up()
	switch {
	case err == nil:
		version, _, _ := m.Version()
		logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "migrate",
			slog.String("status", "ok"),
			slog.Uint64("version", uint64(version)),
			slog.Duration("duration", logger.Took(start)),
		)
		return nil
	case errors.Is(err, migrate.ErrNoChange):
		logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "migrate",
			slog.String("status", "skip"),
			slog.Duration("duration", logger.Took(start)),
		)
		return nil
	default:
		logger.LogEvent(ctx, logger.MIG, slog.LevelError, "migrate",
			slog.String("status", "fail"),
			slog.Any("err", err),
		)
		return fmt.Errorf("apply migrations: %w", err)
	}
}

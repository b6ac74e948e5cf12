package bootstrap

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"

	"spendbot/core/database"
)

// Options collects everything needed to prepare the application storage.
type Options struct {
	Database      database.Config
	Migrations    fs.FS
	MigrationsDir string
	Seeders       []Seeder
}

// Run connects to the database, applies migrations and executes seeders.
// The returned handle is owned by the caller.
func Run(ctx context.Context, opts Options) (*sqlx.DB, error) {
	db, err := database.Connect(ctx, opts.Database)
	if err != nil {
		return nil, err
	}

	if opts.Migrations != nil {
		dir := opts.MigrationsDir
		if dir == "" {
			dir = "migrations"
		}
		if err := database.Migrate(ctx, db, opts.Migrations, dir); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if err := runSeeders(ctx, db, opts.Seeders); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed reference data: %w", err)
	}
	return db, nil
}

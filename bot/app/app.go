// Package app assembles the bot: configuration, storage, handlers and
// the Telegram run loop.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/yaml.v3"

	"spendbot/bot/draft"
	"spendbot/bot/handlers"
	"spendbot/bot/storage"
	"spendbot/core/bootstrap"
	coreconfig "spendbot/core/config"
	"spendbot/core/database"
	tg "spendbot/core/telegram"
	tghelpers "spendbot/core/telegram/helpers"
	"spendbot/core/telegram/router"
)

// Config extends the shared runtime configuration with storage settings.
type Config struct {
	Core     coreconfig.Config `yaml:",inline"`
	Database database.Config   `yaml:"database"`
}

// App owns the bot's long-lived resources.
type App struct {
	cfg    *Config
	db     *sqlx.DB
	store  *storage.Store
	drafts *draft.Store
}

// New returns an empty App ready for LoadConfig/Bootstrap/Start.
func New() *App {
	return &App{}
}

// LoadConfig parses YAML configuration with environment overrides.
func (a *App) LoadConfig(path string) (*coreconfig.Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := database.Normalize(&cfg.Database); err != nil {
		return nil, err
	}

	a.cfg = &cfg
	return &cfg.Core, nil
}

// Bootstrap opens the database, applies migrations and seeds reference data.
func (a *App) Bootstrap(ctx context.Context) error {
	if a.cfg == nil {
		return fmt.Errorf("app: config not loaded")
	}

	db, err := bootstrap.Run(ctx, bootstrap.Options{
		Database:      a.cfg.Database,
		Migrations:    storage.Migrations,
		MigrationsDir: "migrations",
		Seeders:       []bootstrap.Seeder{storage.Seeder{}},
	})
	if err != nil {
		return err
	}

	a.db = db
	a.store = storage.New(db)
	a.drafts = draft.NewStore()
	return nil
}

// Start runs the Telegram bot until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	reg := tg.NewRegistry()
	h := handlers.New(a.store, a.drafts)
	h.Register(reg)

	onLimited := func(c tele.Context) error {
		return tghelpers.SendText(c, "Too fast, try again in a moment.")
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, "This command is restricted.")
		},
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoute(reg, router.TextOptions{
		OnText: h.Text,
		Name:   "expense_text",
	}))

	return tg.RunTelegram(ctx, tg.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Core, onLimited),
		Routes:      routes,
	})
}

// Close releases resources acquired during Bootstrap.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

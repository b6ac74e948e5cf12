package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	coreconfig "spendbot/core/config"
	"spendbot/core/logger"
)

// App is the application contract driven by the runner.
type App interface {
	// LoadConfig parses configuration from the given path and keeps it internally.
	LoadConfig(path string) (*coreconfig.Config, error)
	// Bootstrap prepares storage and long-lived resources.
	Bootstrap(ctx context.Context) error
	// Start runs the application until ctx is cancelled.
	Start(ctx context.Context) error
	// Close releases resources acquired during Bootstrap.
	Close() error
}

// Options tunes the runner behavior.
type Options struct {
	// DefaultConfigPath is used when the -config flag is not provided.
	DefaultConfigPath string
}

// Run drives the full application lifecycle: config, logger, bootstrap,
// signal handling and graceful shutdown. It is the only place that may exit
// the process.
func Run(app App, opts Options) {
	configPath := flag.String("config", defaultPath(opts), "path to YAML config file")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := logger.InitLogger(cfg); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "logger shutdown: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Bootstrap(ctx); err != nil {
		logger.LogEvent(ctx, logger.L, slog.LevelError, "bootstrap",
			slog.String("status", "fail"),
			slog.Any("err", err),
		)
		stop()
		_ = logger.Shutdown()
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.LogEvent(context.Background(), logger.L, slog.LevelWarn, "close",
				slog.String("status", "fail"),
				slog.Any("err", err),
			)
		}
	}()

	if err := app.Start(ctx); err != nil && ctx.Err() == nil {
		logger.LogEvent(ctx, logger.L, slog.LevelError, "run",
			slog.String("status", "fail"),
			slog.Any("err", err),
		)
		stop()
		_ = app.Close()
		_ = logger.Shutdown()
		os.Exit(1)
	}

	logger.LogEvent(context.Background(), logger.L, slog.LevelInfo, "shutdown",
		slog.String("status", "ok"),
	)
}

func defaultPath(opts Options) string {
	if opts.DefaultConfigPath != "" {
		return opts.DefaultConfigPath
	}
	return "config.yaml"
}

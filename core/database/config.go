package database

import (
	"fmt"
	"strings"
)

// Config describes the SQLite connection settings.
type Config struct {
	Path string `yaml:"path" envconfig:"DB_PATH"`
	// MaxConnections caps the sql.DB pool. SQLite tolerates few writers,
	// so the default stays small.
	MaxConnections int `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	BusyTimeoutMS  int `yaml:"busy_timeout_ms" envconfig:"DB_BUSY_TIMEOUT_MS"`
}

// Normalize validates the configuration and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil database config")
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return fmt.Errorf("database.path is required")
	}
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = 4
	}
	if cfg.BusyTimeoutMS <= 0 {
		cfg.BusyTimeoutMS = 5000
	}
	return nil
}

// DSN builds the driver connection string with the pragmas the bot relies on.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
		c.Path, c.BusyTimeoutMS,
	)
}

package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// The embedded default keeps the engine usable with zero configuration:
// WAL for concurrent readers and a busy timeout so contending writers wait
// instead of failing.
const defaultSQLiteDSN = "file:parlo.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Config holds all configuration for the application
type Config struct {
	// Storage backend, selected once at startup
	StoreDriver string
	StoreDSN    string

	// Bulk load
	SnapshotPath string

	Env string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		StoreDriver:  getEnv("STORE_DRIVER", DriverSQLite),
		StoreDSN:     getEnv("STORE_DSN", ""),
		SnapshotPath: getEnv("SNAPSHOT_PATH", ""),
		Env:          getEnv("ENV", "development"),
	}
	if cfg.StoreDSN == "" && cfg.StoreDriver == DriverSQLite {
		cfg.StoreDSN = defaultSQLiteDSN
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.StoreDriver)
	}
	if c.StoreDSN == "" {
		return fmt.Errorf("STORE_DSN is required for driver %q", c.StoreDriver)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	TransportHTTP = "http"
	TransportMCP  = "mcp"
)

// Config holds the service settings.
type Config struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
	Listen      string
	Transport   string
	LogFile     string
	LogLevel    string
}

// Load reads envFile if it exists, then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Driver:      getenv("WBS_DRIVER", DriverPostgres),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getenv("WBS_SQLITE_PATH", "wbs.db"),
		Listen:      getenv("WBS_LISTEN", ":3000"),
		Transport:   getenv("WBS_TRANSPORT", TransportHTTP),
		LogFile:     os.Getenv("WBS_LOG_FILE"),
		LogLevel:    getenv("WBS_LOG_LEVEL", "info"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combination of settings.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is not set")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("config: WBS_SQLITE_PATH is empty")
		}
	default:
		return fmt.Errorf("config: unknown driver %q", c.Driver)
	}

	switch c.Transport {
	case TransportHTTP, TransportMCP:
	default:
		return fmt.Errorf("config: unknown transport %q", c.Transport)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// Package config loads buildledger configuration from defaults, a YAML
// file, environment variables, and CLI flags, in ascending precedence.
package config

import (
	"fmt"
	"os"
	"regexp"
)

// Default configuration values.
const (
	DefaultHTTPAddr   = "127.0.0.1:8080"
	DefaultDriver     = "sqlite"
	DefaultSQLitePath = "buildledger.db"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `koanf:"addr"`

	// SessionKey signs the lead-portal session cookies. Generated per
	// process when empty, which invalidates sessions on restart.
	SessionKey string `koanf:"session_key"`

	// PriceBookPath points at a YAML rate override file. When set, the
	// server watches it and reloads rates on change.
	PriceBookPath string `koanf:"price_book"`
}

// PostgresConfig holds connection settings for the postgres driver.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"sslmode"`
}

// StorageConfig selects and configures the backing store.
type StorageConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `koanf:"driver"`

	// Path is the SQLite database file, or ":memory:".
	Path string `koanf:"path"`

	Postgres PostgresConfig `koanf:"postgres"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `koanf:"level"`
	// Format is text or json.
	Format string `koanf:"format"`
}

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	Log     LogConfig     `koanf:"log"`
	Verbose bool          `koanf:"verbose"`
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Storage.Postgres.Database == "" {
			return fmt.Errorf("storage.postgres.database is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q (use sqlite or postgres)", c.Storage.Driver)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.Log.Level)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns with environment variable values,
// leaving unknown variables untouched.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}

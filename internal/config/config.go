// Package config provides centralized configuration management for the
// import service. It loads settings from environment variables with
// sensible defaults and validates them on startup to fail fast on
// misconfiguration.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request body
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	URL string `env:"DATABASE_URL" required:"true"`

	// MaxConns is the maximum number of pooled connections
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
}

// ImportConfig holds the pipeline's normalization and validation settings.
// These are configuration, not hidden constants, so the repair rules stay
// inspectable.
type ImportConfig struct {
	// Mode is the default validation profile: strict or permissive
	Mode string `env:"IMPORT_MODE" default:"strict"`

	// DefaultCity is substituted when a row has no city
	DefaultCity string `env:"IMPORT_DEFAULT_CITY" default:"Manaus"`

	// DefaultState is substituted when a row has no state
	DefaultState string `env:"IMPORT_DEFAULT_STATE" default:"AM"`

	// DefaultBirthDate (ISO) is substituted in permissive mode when a row
	// has no birth date
	DefaultBirthDate string `env:"IMPORT_DEFAULT_BIRTH_DATE" default:"2000-01-01"`

	// MaxFileSize is the maximum upload size in bytes (default: 10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// MaxRows caps the number of data rows per batch
	MaxRows int `env:"IMPORT_MAX_ROWS" default:"5000"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Validate checks cross-field constraints the tag loader cannot express.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Import.Mode != "strict" && c.Import.Mode != "permissive" {
		return fmt.Errorf("IMPORT_MODE must be strict or permissive, got %q", c.Import.Mode)
	}
	if _, err := time.Parse("2006-01-02", c.Import.DefaultBirthDate); err != nil {
		return fmt.Errorf("IMPORT_DEFAULT_BIRTH_DATE must be ISO (YYYY-MM-DD): %w", err)
	}
	if c.Import.MaxRows < 1 {
		return fmt.Errorf("IMPORT_MAX_ROWS must be positive")
	}
	return nil
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

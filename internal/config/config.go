// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when one is present), loads them into structured Go types and validates
// that required values are present so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for every block, matching a local development setup.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the DCA_ prefix. Nesting uses a double
	underscore so single underscores can stay inside key names:

	  DCA_SERVER__PORT           -> server.port
	  DCA_SERVER__READ_TIMEOUT   -> server.read_timeout
	  DCA_DATABASE__URI          -> database.uri
*/

const (
	// EnvPrefix is the prefix every configuration variable must carry.
	EnvPrefix = "DCA_"

	// nestingDelimiter separates nested keys inside an env var name.
	nestingDelimiter = "__"
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are stored as seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required,numeric"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`

	// MaxBodyBytes bounds how much of a request body the validating
	// extractor will read before rejecting the request.
	MaxBodyBytes int64 `koanf:"max_body_bytes" validate:"required,min=1"`

	// Greeting is the fixed body served by GET /hello.
	Greeting string `koanf:"greeting" validate:"required"`

	// ExposeValidationErrors switches validation rejections from the fixed
	// plain-text body to an envelope carrying the per-field messages.
	ExposeValidationErrors bool `koanf:"expose_validation_errors"`
}

// DatabaseConfig describes the document datastore the service sits in front of.
//
// The URI scheme selects the driver: mongodb:// and mongodb+srv:// use MongoDB,
// postgres:// and postgresql:// use a PostgreSQL JSONB document table.
type DatabaseConfig struct {
	URI         string `koanf:"uri" validate:"required,uri"`
	Name        string `koanf:"name" validate:"required"`
	PingTimeout int    `koanf:"ping_timeout" validate:"required,min=1"`

	// AutoMigrate applies embedded schema migrations at startup.
	// Only meaningful for the postgres driver.
	AutoMigrate bool `koanf:"auto_migrate"`
}

// Default returns the configuration used when no variable overrides a value.
func Default() *Config {
	return &Config{
		Primary: Primary{
			Env: "development",
		},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			MaxBodyBytes:       2 << 20,
			Greeting:           "Hello dca api!",
		},
		Database: DatabaseConfig{
			URI:         "mongodb://localhost:27017",
			Name:        "dca",
			PingTimeout: 10,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// envKey converts a raw env var name into a koanf key path.
//
// Example:
//
//	DCA_SERVER__MAX_BODY_BYTES -> server.max_body_bytes
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, nestingDelimiter, ".")
}

// Load reads configuration from environment variables, unmarshals it on top
// of Default(), validates it, applies observability defaults, and returns the
// resulting config.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Unmarshal over the defaults: keys absent from the environment keep
	// their default value.
	mainConfig := Default()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Observability is a pointer, so an explicit empty block may still nil it out.
	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment are derived, never configured.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

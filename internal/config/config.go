// Package config defines service configuration and its loading.
//
// Conventions:
//   - New returns defaults; Load layers file, dotenv and environment on top.
//   - All future functions accept context.Context as the first parameter.
//   - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"net"
	"strconv"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Host and Port form the HTTP listen address.
	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"min=1,max=65535"`

	// StoreDriver selects the score store backend.
	StoreDriver string `koanf:"store_driver" validate:"oneof=memory sqlite supabase mongo"`

	// StoreURL is the Supabase project URL or the MongoDB URI.
	StoreURL string `koanf:"store_url" validate:"omitempty,url"`

	// StoreKey is the Supabase API key.
	StoreKey string `koanf:"store_key"`

	// StoreTable names the table or collection holding player rows.
	StoreTable string `koanf:"store_table" validate:"required,max=63"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `koanf:"sqlite_path"`

	// MongoDatabase is the database used by the mongo driver.
	MongoDatabase string `koanf:"mongo_database"`

	// AllowedOrigin is the single CORS origin permitted on /api/*.
	AllowedOrigin string `koanf:"allowed_origin" validate:"required"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Host:          "0.0.0.0",
		Port:          5000,
		StoreDriver:   "memory",
		StoreTable:    "scores",
		SQLitePath:    "scores.db",
		MongoDatabase: "scoreboard",
		AllowedOrigin: "http://localhost:3000",
	}
}

// Addr returns the HTTP listen address, e.g. "0.0.0.0:5000".
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

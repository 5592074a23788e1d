package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix  = "SCOREBOARD_"
	EnvConfig  = "SCOREBOARD_CONFIG"
	EnvDotEnv  = "SCOREBOARD_ENV_FILE"
	defaultEnv = ".env"
)

// legacyEnv maps unprefixed variable names used by earlier deployments to
// config keys. Prefixed variables take precedence.
var legacyEnv = map[string]string{
	"SUPABASE_URL": "store_url",
	"SUPABASE_KEY": "store_key",
	"PORT":         "port",
}

var validate = validator.New()

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file named by SCOREBOARD_CONFIG, if set
//  3. a dotenv file (SCOREBOARD_ENV_FILE or ./.env) merged into the environment
//  4. legacy variables SUPABASE_URL, SUPABASE_KEY, PORT
//  5. SCOREBOARD_* variables
func Load(_ context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	legacy := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		mapped, ok := legacyEnv[key]
		if !ok || value == "" {
			return "", nil
		}
		return mapped, value
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// SCOREBOARD_STORE_DRIVER -> store_driver. Underscores are kept to match
	// the flat koanf tags.
	prefixed := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		if s == "CONFIG" || s == "ENV_FILE" {
			return ""
		}
		return strings.ToLower(s)
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv merges a dotenv file into the process environment without
// overriding variables that are already set. A missing default file is fine.
func loadDotEnv() error {
	path := os.Getenv(EnvDotEnv)
	explicit := path != ""
	if !explicit {
		path = defaultEnv
	}
	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Validate checks field constraints and driver requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.StoreDriver {
	case "supabase":
		if c.StoreURL == "" || c.StoreKey == "" {
			return fmt.Errorf("%w: supabase driver requires store_url and store_key", ErrInvalidConfig)
		}
	case "mongo":
		if c.StoreURL == "" {
			return fmt.Errorf("%w: mongo driver requires store_url", ErrInvalidConfig)
		}
	}
	return nil
}

// Package config reads service settings from environment variables
// (a .env file in the working directory is loaded first, if present).
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DatabaseUrl string `envconfig:"DATABASE_URL" validate:"required"`
	BindAddr    string `envconfig:"BIND_ADDR" default:":8080" validate:"required,hostname_port"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"debug" validate:"oneof=debug info warn error"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
	DebugMode   bool   `envconfig:"DEBUG_MODE"`
	// Run migrations on server start
	Migrate bool `envconfig:"MIGRATE"`
	// Served at /openapi.yaml when set
	OpenApiFile string `envconfig:"OPENAPI_FILE" validate:"omitempty,file"`
}

var validate = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// SlogLevel is only meaningful on a validated config.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelDebug
	}

	return lvl
}

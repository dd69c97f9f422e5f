// Package config loads application configuration from environment
// variables, with optional .env files for local development.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mailroom/mailroom/pkg/logger"
	"github.com/mailroom/mailroom/pkg/mailer"
	resendmailer "github.com/mailroom/mailroom/pkg/mailer/resend"
)

// Config is the full application configuration.
type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// APIKey protects the HTTP API. When empty, authentication is
	// disabled, which is only intended for local development.
	APIKey string `env:"API_KEY"`

	// TemplatesDir overrides the embedded templates with an on-disk
	// directory when set.
	TemplatesDir string `env:"TEMPLATES_DIR"`

	// CompanyProfile points at a YAML file describing the default
	// company identity used when requests omit one.
	CompanyProfile string `env:"COMPANY_PROFILE"`

	Mailer mailer.Config
	Resend resendmailer.Config
	Sentry logger.SentryConfig
}

// Load reads .env (if present) and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

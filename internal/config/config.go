// Package config loads process configuration from an optional YAML file
// overlaid by environment variables.
package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string `mapstructure:"database_url"`

	// HTTP server port for the controller
	HTTPPort int `mapstructure:"http_port"`

	// URL of the controller, used by the scheduler (e.g., "http://localhost:6161")
	ControllerURL string `mapstructure:"controller_url"`

	// Shared secret for /internal endpoints. Empty disables them.
	SystemSecret string `mapstructure:"system_secret"`

	// How often the scheduler triggers a maintenance run
	SchedulerInterval time.Duration `mapstructure:"scheduler_interval"`

	// Upper bound of the scheduler's retry backoff after a failed trigger
	SchedulerMaxBackoff time.Duration `mapstructure:"scheduler_max_backoff"`

	// Assets processed in parallel during a run
	BatchConcurrency int `mapstructure:"batch_concurrency"`

	// Lead time for asset types without one
	DefaultLeadTimeDays int `mapstructure:"default_lead_time_days"`

	// How long an approve or reject without step_no repeats the caller's last decision
	ReplayWindow time.Duration `mapstructure:"replay_window"`

	// Time zone used to derive today's date
	Timezone string `mapstructure:"timezone"`

	// Per-user request rate on mutating endpoints. 0 disables limiting.
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`

	// OTLP gRPC collector address
	OTELEndpoint string `mapstructure:"otel_endpoint"`

	// Log level: debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`
}

var envBindings = map[string]string{
	"database_url":           "DATABASE_URL",
	"http_port":              "PORT",
	"controller_url":         "CONTROLLER_URL",
	"system_secret":          "SYSTEM_SECRET",
	"scheduler_interval":     "SCHEDULER_INTERVAL",
	"scheduler_max_backoff":  "SCHEDULER_MAX_BACKOFF",
	"batch_concurrency":      "BATCH_CONCURRENCY",
	"default_lead_time_days": "DEFAULT_LEAD_TIME_DAYS",
	"replay_window":          "REPLAY_WINDOW",
	"timezone":               "TIMEZONE",
	"rate_limit":             "RATE_LIMIT",
	"rate_limit_burst":       "RATE_LIMIT_BURST",
	"otel_endpoint":          "OTEL_EXPORTER_OTLP_ENDPOINT",
	"log_level":              "LOG_LEVEL",
}

// Load reads configuration. When path is empty, maintplane.yaml in the
// working directory is used if present. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("http_port", 6161)
	v.SetDefault("controller_url", "http://localhost:6161")
	v.SetDefault("system_secret", "")
	v.SetDefault("scheduler_interval", time.Hour)
	v.SetDefault("scheduler_max_backoff", 15*time.Minute)
	v.SetDefault("batch_concurrency", 4)
	v.SetDefault("default_lead_time_days", 10)
	v.SetDefault("replay_window", 10*time.Minute)
	v.SetDefault("timezone", "UTC")
	v.SetDefault("rate_limit", 5)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("otel_endpoint", "localhost:4317")
	v.SetDefault("log_level", "info")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("maintplane")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database_url is required (env: DATABASE_URL)")
	}
	if c.SchedulerInterval <= 0 {
		return fmt.Errorf("scheduler_interval must be positive, got %s", c.SchedulerInterval)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("batch_concurrency must be at least 1, got %d", c.BatchConcurrency)
	}
	if c.DefaultLeadTimeDays < 0 {
		return fmt.Errorf("default_lead_time_days must not be negative, got %d", c.DefaultLeadTimeDays)
	}
	if c.ReplayWindow <= 0 {
		return fmt.Errorf("replay_window must be positive, got %s", c.ReplayWindow)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

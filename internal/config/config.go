// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store backends.
const (
	BackendBigQuery = "bigquery"
	BackendMySQL    = "mysql"
)

var (
	// ErrMissingDSN is returned when the MySQL backend is selected without MYSQL_DSN.
	ErrMissingDSN = errors.New("MYSQL_DSN is required for the mysql backend")
	// ErrMissingProject is returned when the BigQuery backend is selected without GCP_PROJECT.
	ErrMissingProject = errors.New("GCP_PROJECT is required for the bigquery backend")
)

// Config holds every setting the commands need.
type Config struct {
	GCPProject   string
	Dataset      string
	StoreBackend string
	MySQLDSN     string

	Port     string
	LogLevel zerolog.Level

	// BudgetCeiling of zero disables budget alerts.
	BudgetCeiling decimal.Decimal

	// AllowedPackages extends the built-in notification allow-list.
	AllowedPackages []string

	// TagOrigin prefixes stored descriptions with "[SMS] " or "[<app>] ".
	TagOrigin bool

	RecurringInterval time.Duration
	BudgetInterval    time.Duration
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("Load: read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		GCPProject:   os.Getenv("GCP_PROJECT"),
		Dataset:      envOr("BQ_DATASET", "finance"),
		StoreBackend: strings.ToLower(envOr("STORE_BACKEND", BackendBigQuery)),
		MySQLDSN:     os.Getenv("MYSQL_DSN"),
		Port:         envOr("PORT", "8080"),
	}

	var err error
	if cfg.LogLevel, err = logger.ParseLevel(os.Getenv("LOG_LEVEL")); err != nil {
		return nil, fmt.Errorf("FromEnv: LOG_LEVEL: %w", err)
	}

	cfg.BudgetCeiling = decimal.Zero
	if raw := strings.TrimSpace(os.Getenv("BUDGET_CEILING")); raw != "" {
		if cfg.BudgetCeiling, err = decimal.NewFromString(raw); err != nil {
			return nil, fmt.Errorf("FromEnv: BUDGET_CEILING: %w", err)
		}
	}

	for _, pkg := range strings.Split(os.Getenv("ALLOWED_PACKAGES"), ",") {
		if pkg = strings.TrimSpace(pkg); pkg != "" {
			cfg.AllowedPackages = append(cfg.AllowedPackages, pkg)
		}
	}

	if raw := os.Getenv("TAG_ORIGIN"); raw != "" {
		if cfg.TagOrigin, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("FromEnv: TAG_ORIGIN: %w", err)
		}
	}

	if cfg.RecurringInterval, err = durationOr("RECURRING_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.BudgetInterval, err = durationOr("BUDGET_INTERVAL", 12*time.Hour); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case BackendBigQuery, BackendMySQL:
	default:
		return nil, fmt.Errorf("FromEnv: unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

// RequireStore checks the settings needed to open the configured backend.
func (c *Config) RequireStore() error {
	switch c.StoreBackend {
	case BackendMySQL:
		if c.MySQLDSN == "" {
			return ErrMissingDSN
		}
	case BackendBigQuery:
		if c.GCPProject == "" {
			return ErrMissingProject
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("FromEnv: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("FromEnv: %s must be positive, got %s", key, d)
	}
	return d, nil
}

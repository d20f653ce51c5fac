package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/greenhouse-dashboard/internal/greenhouse"
	"github.com/i474232898/greenhouse-dashboard/internal/greenhouse/gateway"
)

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level
	Port     string

	// GatewayURL is fixed; it is not read from the environment.
	GatewayURL string
	// GatewayTimeout of 0 leaves the transport default in place.
	GatewayTimeout    time.Duration
	GatewayMaxRetries int

	// RefreshInterval controls how often the file list is fetched again (0 = never).
	RefreshInterval time.Duration

	// Records cache retention.
	StoreMaxFiles int           // max number of cached daily files (0 = unlimited)
	StoreMaxAge   time.Duration // max age of a cached file (0 = unlimited)

	LabelDensity  int
	DateLayout    string
	SortFilesDesc bool
}

// Load reads configuration from an optional .env file and the environment
// with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{
		GatewayURL: gateway.BaseURL,
		Port:       getenvDefault("PORT", "8080"),
		DateLayout: getenvDefault("DATE_LAYOUT", greenhouse.DefaultDateLayout),
	}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.GatewayTimeout, err = getenvDuration("GATEWAY_TIMEOUT", "0s"); err != nil {
		return nil, err
	}
	if cfg.GatewayMaxRetries, err = getenvInt("GATEWAY_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.GatewayMaxRetries < 0 {
		return nil, fmt.Errorf("GATEWAY_MAX_RETRIES must be >= 0, got %d", cfg.GatewayMaxRetries)
	}

	if cfg.RefreshInterval, err = getenvDuration("LIST_REFRESH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	// A month of daily files.
	if cfg.StoreMaxFiles, err = getenvInt("STORE_MAX_FILES", 31); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "5m"); err != nil {
		return nil, err
	}

	if cfg.LabelDensity, err = getenvInt("LABEL_DENSITY", greenhouse.DefaultLabelDensity); err != nil {
		return nil, err
	}
	if cfg.LabelDensity < 1 {
		return nil, fmt.Errorf("LABEL_DENSITY must be >= 1, got %d", cfg.LabelDensity)
	}

	sortDesc := getenvDefault("SORT_FILES_DESC", "false")
	if cfg.SortFilesDesc, err = strconv.ParseBool(sortDesc); err != nil {
		return nil, fmt.Errorf("invalid SORT_FILES_DESC %q: %w", sortDesc, err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %v", key, d)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

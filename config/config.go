// Package config has the configuration for the downloader.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// defaultUserAgent is the browser string the FDA site has accepted for years
// of bulk pulls.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/101.0.4951.54 Safari/537.36"

// Config holds all application configuration
type Config struct {
	CatalogPath string        // Path to the label changes CSV export
	OutputDir   string        // Where {drug_id}.html artifacts are written
	LogDir      string        // Where run logs are written
	LogLevel    string
	UserAgent   string
	WaitTime    time.Duration // Pause between requests
	HTTPTimeout time.Duration // Per-request timeout
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	waitTime, err := getDurationEnvWithDefault("WAIT_TIME", 200*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid WAIT_TIME: %w", err)
	}

	httpTimeout, err := getDurationEnvWithDefault("HTTP_TIMEOUT", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	cfg := &Config{
		CatalogPath: getEnvWithDefault("CATALOG_PATH", "data/label_changes.csv"),
		OutputDir:   getEnvWithDefault("OUTPUT_DIR", "data/html_download"),
		LogDir:      getEnvWithDefault("LOG_DIR", "logs"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		UserAgent:   getEnvWithDefault("USER_AGENT", defaultUserAgent),
		WaitTime:    waitTime,
		HTTPTimeout: httpTimeout,
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.CatalogPath) == "" {
		return fmt.Errorf("CATALOG_PATH cannot be empty")
	}

	if strings.TrimSpace(cfg.OutputDir) == "" {
		return fmt.Errorf("OUTPUT_DIR cannot be empty")
	}

	if strings.TrimSpace(cfg.LogDir) == "" {
		return fmt.Errorf("LOG_DIR cannot be empty")
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if cfg.UserAgent == "" {
		return fmt.Errorf("USER_AGENT cannot be empty")
	}

	if cfg.WaitTime < 0 {
		return fmt.Errorf("WAIT_TIME must not be negative, got: %s", cfg.WaitTime)
	}

	// A pause above a minute per page makes a ~3000 page run take days;
	// treat it as a misconfiguration.
	if cfg.WaitTime > time.Minute {
		return fmt.Errorf("WAIT_TIME is too large (max 1m), got: %s", cfg.WaitTime)
	}

	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got: %s", cfg.HTTPTimeout)
	}

	return nil
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnvWithDefault gets an environment variable as a duration with a
// default value. Unlike the string helper, a present-but-unparseable value is
// an error rather than a silent fallback, since a mistyped WAIT_TIME would
// otherwise hammer the remote site.
func getDurationEnvWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration (e.g. 200ms): %w", key, err)
	}
	return d, nil
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"CATALOG_PATH",
		"OUTPUT_DIR",
		"LOG_DIR",
		"LOG_LEVEL",
		"USER_AGENT",
		"WAIT_TIME",
		"HTTP_TIMEOUT",
	}
}

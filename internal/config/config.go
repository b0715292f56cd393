// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/zapponejosh/ekadashi-api/internal/calendar"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Authentication
	APIKey string // API key for admin endpoints

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// Observer used when a request names no location
	DefaultLatitude  float64
	DefaultLongitude float64
	DefaultTimezone  string

	// LocationsFile is an optional YAML file of named location presets
	LocationsFile string

	// Request limits
	MaxRangeDays        int // longest date range a single scan may cover
	CompareMaxLocations int // most locations in one compare request
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	// This is a no-op in production where env vars are set directly
	_ = godotenv.Load()

	cfg := &Config{}

	// Server settings
	cfg.Port = getEnvInt("PORT", 8080)
	cfg.Env = getEnv("ENV", EnvDevelopment)

	// Authentication
	cfg.APIKey = getEnv("API_KEY", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	// Default observer (Kyiv)
	cfg.DefaultLatitude = getEnvFloat("DEFAULT_LATITUDE", 50.4501)
	cfg.DefaultLongitude = getEnvFloat("DEFAULT_LONGITUDE", 30.5234)
	cfg.DefaultTimezone = getEnv("DEFAULT_TIMEZONE", "Europe/Kyiv")

	cfg.LocationsFile = getEnv("LOCATIONS_FILE", "")

	// Limits
	cfg.MaxRangeDays = getEnvInt("MAX_RANGE_DAYS", 400)
	cfg.CompareMaxLocations = getEnvInt("COMPARE_MAX_LOCATIONS", 8)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	// Validate port range
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	// Validate environment
	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	// API key is required in production
	if c.Env == EnvProduction && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	// Validate log level
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	// Validate log format
	switch c.LogFormat {
	case "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	// Validate default observer
	if c.DefaultLatitude < -90 || c.DefaultLatitude > 90 {
		errs = append(errs, fmt.Errorf("DEFAULT_LATITUDE must be between -90 and 90, got %g", c.DefaultLatitude))
	}
	if c.DefaultLongitude < -180 || c.DefaultLongitude > 180 {
		errs = append(errs, fmt.Errorf("DEFAULT_LONGITUDE must be between -180 and 180, got %g", c.DefaultLongitude))
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil || c.DefaultTimezone == "" {
		errs = append(errs, fmt.Errorf("DEFAULT_TIMEZONE must be an IANA zone name, got %q", c.DefaultTimezone))
	}

	// Validate limits
	if c.MaxRangeDays < 1 {
		errs = append(errs, fmt.Errorf("MAX_RANGE_DAYS must be positive, got %d", c.MaxRangeDays))
	}
	if c.CompareMaxLocations < 2 {
		errs = append(errs, fmt.Errorf("COMPARE_MAX_LOCATIONS must be at least 2, got %d", c.CompareMaxLocations))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// DefaultLocation returns the observer used when a request names none.
func (c *Config) DefaultLocation() calendar.GeoLocation {
	return calendar.GeoLocation{
		Name:       "default",
		Latitude:   c.DefaultLatitude,
		Longitude:  c.DefaultLongitude,
		TimezoneID: c.DefaultTimezone,
	}
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat reads an environment variable as a float with a default fallback.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

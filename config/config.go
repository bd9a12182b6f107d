package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: identity provider and directory configuration
//   - database.go: Postgres, Redis and entry cache configuration
//   - http.go: HTTP server configuration
//   - services.go: service modes, maintenance and key allocation
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or APP_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Tracking records the caller's subject id with every redirect.
	Tracking bool `env:"TRACKING_ENABLED" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"http,maintenance"`

	Maintenance MaintenanceConfig
	Keys        KeyConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Cache.Sanitize()
	c.Maintenance.Sanitize()
	c.Keys.Sanitize()

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.detectDevMode()
}

// Validate reports configuration that would leave the service unable to authenticate callers.
func (c *AppConfig) Validate() error {
	if _, err := c.GetEnabledServices(); err != nil {
		return err
	}
	if c.Auth.Mode != AuthModeOAuth {
		if !c.IsDev {
			return errors.New("AUTH_MODE=mock is only allowed in development mode")
		}
		return nil
	}
	var missing []string
	if c.Auth.OAuth.ClientID == "" {
		missing = append(missing, "OAUTH_CLIENT_ID")
	}
	if c.Auth.OAuth.TenantID == "" {
		missing = append(missing, "OAUTH_TENANT_ID")
	}
	if c.Auth.OAuth.AppObjectID == "" {
		missing = append(missing, "OAUTH_APP_OBJECT_ID")
	}
	if len(missing) > 0 {
		return errors.New("missing required auth configuration: " + strings.Join(missing, ", "))
	}
	return nil
}

// detectDevMode checks both DEV and APP_ENV environment variables.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		appEnv := strings.ToLower(os.Getenv("APP_ENV"))
		c.IsDev = appEnv == "development" || appEnv == "dev"
	}
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsMaintenanceEnabled returns true if the expired-entry cleanup loop is enabled.
func (c *AppConfig) IsMaintenanceEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeMaintenance]
}

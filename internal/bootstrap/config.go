package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/target/shortener/config"
)

// InitLogger installs a JSON logger on stdout as the process default.
func InitLogger(level slog.Level) *slog.Logger {
	return initLogger(os.Stdout, level)
}

func initLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from the environment, reading .env first when present.
func LoadConfig() (config.AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return ParseConfig()
}

// ParseConfig parses, sanitizes and validates configuration from the process environment.
func ParseConfig() (config.AppConfig, error) {
	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// EnabledServiceNames lists enabled services in a stable order for logging.
func EnabledServiceNames(cfg *config.AppConfig) []string {
	if cfg == nil {
		return []string{}
	}
	services, err := cfg.GetEnabledServices()
	if err != nil {
		return []string{}
	}
	names := make([]string, 0, len(services))
	for svc := range services {
		names = append(names, string(svc))
	}
	sort.Strings(names)
	return names
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeMaintenance runs the expired-entry cleanup loop.
	ServiceModeMaintenance ServiceMode = "maintenance"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeMaintenance,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeMaintenance:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, maintenance)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// MaintenanceConfig contains expired-entry cleanup configuration.
type MaintenanceConfig struct {
	// Interval is the cleanup tick interval.
	Interval time.Duration `env:"MAINTENANCE_INTERVAL" envDefault:"15m"`

	// EntryMaxAge is the age after which non-persistent entries are deleted.
	EntryMaxAge time.Duration `env:"MAINTENANCE_ENTRY_MAX_AGE" envDefault:"720h"` // 30 days

	// BatchSize is the maximum number of entries removed per statement.
	BatchSize int `env:"MAINTENANCE_BATCH_SIZE" envDefault:"500"`
}

// Sanitize applies guardrails to maintenance configuration values.
func (m *MaintenanceConfig) Sanitize() {
	if m.Interval < time.Minute {
		m.Interval = time.Minute
	}
	if m.EntryMaxAge < time.Minute {
		m.EntryMaxAge = time.Minute
	}
	if m.BatchSize < 1 {
		m.BatchSize = 1
	}
	if m.BatchSize > 10000 {
		m.BatchSize = 10000
	}
}

// KeyConfig controls short key generation.
type KeyConfig struct {
	// Candidates is how many keys are checked concurrently per allocation.
	Candidates int `env:"KEYS_CANDIDATES" envDefault:"10"`

	// Length is the length of generated keys.
	Length int `env:"KEYS_LENGTH" envDefault:"7"`

	// SeedMinLength and SeedMaxLength bound the random seed (max exclusive).
	SeedMinLength int `env:"KEYS_SEED_MIN_LENGTH" envDefault:"7"`
	SeedMaxLength int `env:"KEYS_SEED_MAX_LENGTH" envDefault:"32"`

	// InsertAttempts bounds re-allocation after an insert-time key collision.
	InsertAttempts int `env:"KEYS_INSERT_ATTEMPTS" envDefault:"3"`
}

// Key length bounds accepted for any entry key.
const (
	MinKeyLength = 2
	MaxKeyLength = 16
)

// Sanitize keeps generated keys within the accepted key length range.
func (k *KeyConfig) Sanitize() {
	if k.Candidates < 1 {
		k.Candidates = 1
	}
	if k.Length < MinKeyLength {
		k.Length = MinKeyLength
	}
	if k.Length > MaxKeyLength {
		k.Length = MaxKeyLength
	}
	// base58 output is never shorter than its input, so a seed of Length runes suffices.
	if k.SeedMinLength < k.Length {
		k.SeedMinLength = k.Length
	}
	if k.SeedMaxLength <= k.SeedMinLength {
		k.SeedMaxLength = k.SeedMinLength + 1
	}
	if k.InsertAttempts < 1 {
		k.InsertAttempts = 1
	}
}

package config

import (
	"strings"
	"time"
)

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"shortener"`
	Password string `env:"PASSWORD" envDefault:"shortener"`
	Name     string `env:"NAME"     envDefault:"shortener"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// CacheBackend selects where redirect lookups are cached.
type CacheBackend string

const (
	CacheBackendRedis  CacheBackend = "redis"
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendNone   CacheBackend = "none"
)

// CacheConfig controls the entry cache placed in front of Postgres for redirects.
type CacheConfig struct {
	Backend CacheBackend `env:"CACHE_BACKEND" envDefault:"redis"`

	// EntryTTL is how long a resolved entry stays cached.
	EntryTTL time.Duration `env:"CACHE_ENTRY_TTL" envDefault:"10m"`

	// MemorySize is the capacity of the in-process cache (CACHE_BACKEND=memory).
	MemorySize int `env:"CACHE_MEMORY_SIZE" envDefault:"4096"`
}

// Sanitize normalises the backend name and clamps sizes.
func (c *CacheConfig) Sanitize() {
	switch CacheBackend(strings.ToLower(strings.TrimSpace(string(c.Backend)))) {
	case CacheBackendRedis:
		c.Backend = CacheBackendRedis
	case CacheBackendMemory:
		c.Backend = CacheBackendMemory
	default:
		c.Backend = CacheBackendNone
	}
	if c.EntryTTL <= 0 {
		c.EntryTTL = 10 * time.Minute
	}
	if c.MemorySize < 16 {
		c.MemorySize = 16
	}
}

// UsesRedis reports whether a Redis connection is required.
func (c *CacheConfig) UsesRedis() bool {
	return c.Backend == CacheBackendRedis
}

package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/shortener/config"
	"github.com/target/shortener/internal/adapters/lrucache"
	rediscache "github.com/target/shortener/internal/adapters/redis"
	"github.com/target/shortener/internal/core"
	"github.com/target/shortener/internal/data"
	"github.com/target/shortener/internal/lifecycle"
	"github.com/target/shortener/internal/service"
)

// ServiceContainer holds the wired domain services.
type ServiceContainer struct {
	Entries     *service.EntryService
	Keys        *service.KeyAllocator
	Maintenance *service.MaintenanceService

	EntryRepo *data.EntryRepo
	CallRepo  *data.CallRepo
	Cache     core.EntryCache
}

// ServiceDeps contains the infrastructure NewServices wires services onto.
type ServiceDeps struct {
	DB          *sql.DB
	RedisClient redis.UniversalClient // Optional: required only by the redis cache backend
	Config      *config.AppConfig
	Logger      *slog.Logger
	// Trigger receives panics from the maintenance loop.
	Trigger lifecycle.TriggerFunc
}

// NewServices builds repositories, the entry cache and the domain services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.DB == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("database and config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	entryRepo := data.NewEntryRepo(deps.DB)
	callRepo := data.NewCallRepo(deps.DB)

	cache, err := BuildEntryCache(cfg.Cache, deps.RedisClient)
	if err != nil {
		return ServiceContainer{}, err
	}

	keys, err := service.NewKeyAllocator(service.KeyAllocatorOptions{
		Checker: entryRepo,
		Config:  cfg.Keys,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("key allocator: %w", err)
	}

	entries, err := service.NewEntryService(service.EntryServiceOptions{
		Entries:        entryRepo,
		Calls:          callRepo,
		Keys:           keys,
		Cache:          cache,
		InsertAttempts: cfg.Keys.InsertAttempts,
		Tracking:       cfg.Tracking,
		Logger:         logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("entry service: %w", err)
	}

	maintenance, err := service.NewMaintenanceService(service.MaintenanceServiceOptions{
		Repo:    entryRepo,
		Calls:   callRepo,
		Cache:   cache,
		Config:  cfg.Maintenance,
		Logger:  logger,
		OnPanic: deps.Trigger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("maintenance service: %w", err)
	}

	return ServiceContainer{
		Entries:     entries,
		Keys:        keys,
		Maintenance: maintenance,
		EntryRepo:   entryRepo,
		CallRepo:    callRepo,
		Cache:       cache,
	}, nil
}

// BuildEntryCache selects the redirect cache backend. A nil cache disables caching.
//
//nolint:ireturn // the backend is chosen by configuration.
func BuildEntryCache(cfg config.CacheConfig, client redis.UniversalClient) (core.EntryCache, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		if client == nil {
			return nil, errors.New("redis cache backend requires a redis client")
		}
		return rediscache.NewEntryCache(client, cfg.EntryTTL), nil
	case config.CacheBackendMemory:
		return lrucache.NewEntryCache(cfg.MemorySize, cfg.EntryTTL), nil
	case config.CacheBackendNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported cache backend: %q", cfg.Backend)
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/shortener/config"
	"github.com/target/shortener/internal/bootstrap"
)

type connectInfraOptions struct {
	Logger    *slog.Logger
	Config    *config.AppConfig
	SkipDB    bool
	WantRedis bool
}

type infra struct {
	DB    *sql.DB
	Redis redis.UniversalClient
}

// connectInfra opens the connections a command asked for.
func connectInfra(ctx context.Context, opts *connectInfraOptions) (*infra, error) {
	dbCfg := bootstrap.DatabaseConfig{
		DBConfig:    opts.Config.Postgres,
		RedisConfig: opts.Config.Redis,
		Logger:      opts.Logger,
	}
	out := &infra{}

	if !opts.SkipDB {
		db, err := bootstrap.ConnectDB(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		out.DB = db
	}

	if opts.WantRedis {
		client, err := bootstrap.ConnectRedis(ctx, dbCfg)
		if err != nil {
			if closeErr := out.Close(); closeErr != nil {
				err = errors.Join(err, closeErr)
			}
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		out.Redis = client
	}
	return out, nil
}

// services wires domain services. Without a redis connection the cache is disabled.
func (i *infra) services(cfg *config.AppConfig) (bootstrap.ServiceContainer, error) {
	local := *cfg
	if i.Redis == nil && local.Cache.UsesRedis() {
		local.Cache.Backend = config.CacheBackendNone
	}
	return bootstrap.NewServices(&bootstrap.ServiceDeps{
		DB:          i.DB,
		RedisClient: i.Redis,
		Config:      &local,
	})
}

func (i *infra) Close() error {
	var closeErr error
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close db: %w", err))
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close redis: %w", err))
		}
	}
	return closeErr
}

func closeAndLog(logger *slog.Logger, i *infra) {
	if err := i.Close(); err != nil {
		logger.Warn("close connections failed", "error", err)
	}
}

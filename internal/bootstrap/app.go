package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/target/shortener/config"
	"github.com/target/shortener/internal/lifecycle"
)

// AppOptions overrides process hooks, mainly for tests.
type AppOptions struct {
	Exit    func(code int)
	Signals <-chan os.Signal
}

// App is the fully wired process: persistence handles, services, listener and lifecycle.
type App struct {
	Config       *config.AppConfig
	Logger       *slog.Logger
	DB           *sql.DB
	Redis        redis.UniversalClient
	Services     ServiceContainer
	Auth         *AuthComponents
	Orchestrator *lifecycle.Orchestrator
}

// NewApp connects storage, applies migrations when configured and wires every component.
// Persistence handles are registered with the orchestrator in the order they are closed.
func NewApp(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger, opts AppOptions) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	orch := lifecycle.New(lifecycle.Options{
		Logger:          logger,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		CloseDelay:      cfg.HTTP.CloseDelay,
		Exit:            opts.Exit,
		Signals:         opts.Signals,
	})

	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}
	db, err := ConnectDB(ctx, dbCfg)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger, DB: db, Orchestrator: orch}
	orch.RegisterCloser("postgres", db)

	if cfg.Cache.UsesRedis() {
		client, redisErr := ConnectRedis(ctx, dbCfg)
		if redisErr != nil {
			return nil, app.closeOnError(redisErr)
		}
		app.Redis = client
		orch.RegisterCloser("redis", client)
	}

	if cfg.Postgres.RunMigrationsOnStart {
		if migErr := RunMigrations(ctx, db, logger); migErr != nil {
			return nil, app.closeOnError(migErr)
		}
	}

	services, err := NewServices(&ServiceDeps{
		DB:          db,
		RedisClient: app.Redis,
		Config:      cfg,
		Logger:      logger,
		Trigger:     orch.TriggerFunc(),
	})
	if err != nil {
		return nil, app.closeOnError(err)
	}
	app.Services = services

	if cfg.IsHTTPServerEnabled() {
		auth, authErr := BuildAuth(ctx, AuthConfig{Auth: cfg.Auth, Logger: logger})
		if authErr != nil {
			return nil, app.closeOnError(authErr)
		}
		app.Auth = auth
	}

	return app, nil
}

func (a *App) closeOnError(err error) error {
	if a.Redis != nil {
		if cerr := a.Redis.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close redis: %w", cerr))
		}
	}
	if cerr := a.DB.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close database: %w", cerr))
	}
	return err
}

// Run starts the enabled services and blocks until the orchestrator has torn everything down.
func (a *App) Run(ctx context.Context) {
	if a.Config.IsMaintenanceEnabled() {
		a.startMaintenance(ctx)
	}
	if a.Config.IsHTTPServerEnabled() {
		srv := NewHTTPServer(&HTTPServerConfig{
			Config:   a.Config,
			Services: a.Services,
			Auth:     a.Auth,
			Trigger:  a.Orchestrator.TriggerFunc(),
			Logger:   a.Logger,
		})
		a.Logger.InfoContext(ctx, "starting HTTP server", "addr", srv.Addr)
		a.Orchestrator.StartServer(srv)
	}
	a.Orchestrator.Run(ctx)
}

func (a *App) startMaintenance(ctx context.Context) {
	mctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.Orchestrator.SetMaintenanceCancel(cancel)
	go func() {
		if err := a.Services.Maintenance.Run(mctx); err != nil {
			a.Logger.ErrorContext(mctx, "maintenance loop stopped", "error", err)
		}
	}()
}

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/target/shortener/config"
	"github.com/target/shortener/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger(slog.LevelInfo)
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger = bootstrap.InitLogger(cfg.SlogLevel())
	logStartupInfo(ctx, logger, &cfg)

	if !cfg.Postgres.RunMigrationsOnStart {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	app, err := bootstrap.NewApp(ctx, &cfg, logger, bootstrap.AppOptions{})
	if err != nil {
		return err
	}
	// Run returns only after teardown; the orchestrator exits the process itself.
	app.Run(ctx)
	return nil
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting shortener service",
		"db_host", cfg.Postgres.Host,
		"db_port", cfg.Postgres.Port,
		"db_name", cfg.Postgres.Name,
		"auth_mode", cfg.Auth.Mode,
		"cache_backend", cfg.Cache.Backend,
		"tracking", cfg.Tracking,
		"enabled_services", bootstrap.EnabledServiceNames(cfg))
}

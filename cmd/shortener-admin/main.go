package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/target/shortener/config"
	"github.com/target/shortener/internal/bootstrap"
	"github.com/target/shortener/internal/domain/model"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 2 * time.Minute
)

var errUsage = errors.New("usage")

func main() {
	logger := bootstrap.InitLogger(slog.LevelInfo)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, logger, bootstrap.LoadConfig)) //nolint:forbidigo // CLI exit status
}

func run(
	args []string,
	stdout, stderr io.Writer,
	logger *slog.Logger,
	loadConfig func() (config.AppConfig, error),
) int {
	if len(args) < 1 {
		_ = printUsage(stderr)
		return 2
	}

	cmdName := args[0]
	cmd, ok := commands()[cmdName]
	if !ok {
		_ = writef(stderr, "unknown command %q\n\n", cmdName)
		_ = printUsage(stderr)
		return 2
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{Ctx: ctx, Logger: logger, Config: cfg, Out: stdout}
	if runErr := cmd.run(cmdCtx, args[1:]); runErr != nil {
		if errors.Is(runErr, errUsage) || errors.Is(runErr, flag.ErrHelp) {
			return 2
		}
		logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", runErr)
		return 1
	}
	return 0
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"cleanup": {
			name:        "cleanup",
			description: "Run one maintenance pass, deleting expired non-persistent entries",
			run:         runCleanup,
		},
		"show": {
			name:        "show",
			description: "Print a single entry as JSON",
			run:         runShow,
		},
		"stats": {
			name:        "stats",
			description: "Print per-day calls and unique callers for an entry",
			run:         runStats,
		},
		"evict": {
			name:        "evict",
			description: "Drop entries from the redirect cache",
			run:         runEvict,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: shortener-admin <command> [flags]\n\nAvailable commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-12s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

type migrateOptions struct {
	Timeout time.Duration
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum time to wait for migrations")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.Timeout <= 0 {
		return opts, fmt.Errorf("%w: -timeout must be positive", errUsage)
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	infra, err := connectInfra(ctx, &connectInfraOptions{Logger: cmdCtx.Logger, Config: &cmdCtx.Config})
	if err != nil {
		return err
	}
	defer closeAndLog(cmdCtx.Logger, infra)

	return bootstrap.RunMigrations(ctx, infra.DB, cmdCtx.Logger)
}

func runCleanup(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("cleanup", flag.ContinueOnError)
	maxAge := fs.Duration("max-age", cmdCtx.Config.Maintenance.EntryMaxAge, "Delete non-persistent entries older than this")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *maxAge <= 0 {
		return fmt.Errorf("%w: -max-age must be positive", errUsage)
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	cfg := cmdCtx.Config
	cfg.Maintenance.EntryMaxAge = *maxAge
	infra, err := connectInfra(ctx, &connectInfraOptions{
		Logger:    cmdCtx.Logger,
		Config:    &cfg,
		WantRedis: cfg.Cache.UsesRedis(),
	})
	if err != nil {
		return err
	}
	defer closeAndLog(cmdCtx.Logger, infra)

	svc, err := infra.services(&cfg)
	if err != nil {
		return err
	}
	removed, err := svc.Maintenance.RunOnce(ctx)
	if err != nil {
		return err
	}
	return writef(cmdCtx.Out, "removed %d expired entries\n", removed)
}

func parseKeyFlag(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	key := fs.String("key", "", "Entry key (required)")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if !model.ValidKey(*key) {
		return "", fmt.Errorf("%w: -key must be 2 to 16 letters or digits", errUsage)
	}
	return *key, nil
}

func runShow(cmdCtx *commandContext, args []string) error {
	key, err := parseKeyFlag("show", args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	infra, err := connectInfra(ctx, &connectInfraOptions{Logger: cmdCtx.Logger, Config: &cmdCtx.Config})
	if err != nil {
		return err
	}
	defer closeAndLog(cmdCtx.Logger, infra)

	svc, err := infra.services(&cmdCtx.Config)
	if err != nil {
		return err
	}
	entry, err := svc.EntryRepo.FindEntry(ctx, key)
	if err != nil {
		return err
	}
	return renderEntry(cmdCtx.Out, entry, cmdCtx.Config.HTTP.BaseURL)
}

func renderEntry(w io.Writer, entry *model.Entry, baseURL string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entry.View(baseURL))
}

func runStats(cmdCtx *commandContext, args []string) error {
	key, err := parseKeyFlag("stats", args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	infra, err := connectInfra(ctx, &connectInfraOptions{Logger: cmdCtx.Logger, Config: &cmdCtx.Config})
	if err != nil {
		return err
	}
	defer closeAndLog(cmdCtx.Logger, infra)

	svc, err := infra.services(&cmdCtx.Config)
	if err != nil {
		return err
	}
	if _, err := svc.EntryRepo.FindEntry(ctx, key); err != nil {
		return err
	}
	history, err := svc.CallRepo.CallsPerDate(ctx, key)
	if err != nil {
		return err
	}
	callers, err := svc.CallRepo.UniqueCallers(ctx, key)
	if err != nil {
		return err
	}
	return renderStats(cmdCtx.Out, key, history, callers)
}

func renderStats(w io.Writer, key string, history []model.DailyCalls, callers []model.CallerCalls) error {
	if err := writef(w, "Calls per day for %s\n", key); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DATE\tCALLS")
	for _, d := range history {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", d.Date, d.Calls)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if err := writef(w, "\nUnique callers\n"); err != nil {
		return err
	}
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "IP\tUSER AGENT\tCALLS")
	for _, c := range callers {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", c.IP, c.UserAgent, c.Calls)
	}
	return tw.Flush()
}

func runEvict(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("evict", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	keys := fs.Args()
	if len(keys) == 0 {
		return fmt.Errorf("%w: evict <key> [key...]", errUsage)
	}
	if !cmdCtx.Config.Cache.UsesRedis() {
		return writef(cmdCtx.Out, "cache backend %q is process local; nothing to evict\n", cmdCtx.Config.Cache.Backend)
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	infra, err := connectInfra(ctx, &connectInfraOptions{
		Logger:    cmdCtx.Logger,
		Config:    &cmdCtx.Config,
		SkipDB:    true,
		WantRedis: true,
	})
	if err != nil {
		return err
	}
	defer closeAndLog(cmdCtx.Logger, infra)

	cache, err := bootstrap.BuildEntryCache(cmdCtx.Config.Cache, infra.Redis)
	if err != nil {
		return err
	}
	if err := cache.Invalidate(ctx, keys...); err != nil {
		return err
	}
	return writef(cmdCtx.Out, "evicted %d keys\n", len(keys))
}

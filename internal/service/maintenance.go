package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/shortener/config"
	"github.com/target/shortener/internal/core"
)

// MaintenanceServiceOptions groups dependencies for MaintenanceService.
type MaintenanceServiceOptions struct {
	Repo   core.MaintenanceRepository // Required: expired entry queries
	Calls  core.CallRepository        // Required: usage records of expired entries
	Cache  core.EntryCache            // Optional: cached entries to drop
	Config config.MaintenanceConfig   // Required: maintenance configuration
	Logger *slog.Logger               // Optional: structured logger

	// OnPanic is invoked when a cleanup pass panics.
	OnPanic func(reason string, err error)
}

// MaintenanceService removes non-persistent entries older than the configured age.
type MaintenanceService struct {
	repo    core.MaintenanceRepository
	calls   core.CallRepository
	cache   core.EntryCache
	config  config.MaintenanceConfig
	logger  *slog.Logger
	onPanic func(reason string, err error)
}

// NewMaintenanceService constructs a new MaintenanceService.
func NewMaintenanceService(opts MaintenanceServiceOptions) (*MaintenanceService, error) {
	if opts.Repo == nil {
		return nil, errors.New("MaintenanceRepository is required")
	}
	if opts.Calls == nil {
		return nil, errors.New("CallRepository is required")
	}

	cfg := opts.Config
	if cfg.Interval <= 0 {
		return nil, errors.New("maintenance interval must be positive")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("maintenance batch size must be positive")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "maintenance_service")
		logger.Debug("MaintenanceService initialized",
			"interval", cfg.Interval,
			"entry_max_age", cfg.EntryMaxAge,
			"batch_size", cfg.BatchSize,
		)
	}

	return &MaintenanceService{
		repo:    opts.Repo,
		calls:   opts.Calls,
		cache:   opts.Cache,
		config:  cfg,
		logger:  logger,
		onPanic: opts.OnPanic,
	}, nil
}

// Run starts the cleanup loop and runs until the context is cancelled.
// Cleanup failures are logged, never returned. Returns nil on graceful shutdown.
func (s *MaintenanceService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting maintenance service", "interval", s.config.Interval)
	}

	// Add jitter to prevent thundering herd if multiple instances start together
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logCleanupError(err, "initial cleanup")
	}

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "maintenance service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logCleanupError(err, "cleanup")
			}
		}
	}
}

// waitWithJitter adds a random delay up to 10% of the interval.
func (s *MaintenanceService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

// RunOnce performs a single cleanup pass and returns the number of entries removed.
// A panic inside the pass is recovered, reported through OnPanic and returned as an error.
func (s *MaintenanceService) RunOnce(ctx context.Context) (removed int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("maintenance pass panicked: %v", r)
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "maintenance pass panicked", "panic", r)
			}
			if s.onPanic != nil {
				s.onPanic("maintenance panic", err)
			}
		}
	}()

	start := time.Now()
	removed, err = s.purgeExpired(ctx)
	if removed > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "deleted expired entries",
			"count", removed,
			"max_age", s.config.EntryMaxAge,
			"elapsed", time.Since(start),
		)
	}
	if err != nil {
		return removed, fmt.Errorf("purge expired entries: %w", err)
	}
	return removed, nil
}

// purgeExpired deletes expired entries batch by batch: usage records first, then entries,
// then cached copies.
func (s *MaintenanceService) purgeExpired(ctx context.Context) (int64, error) {
	var total int64
	for {
		keys, err := s.repo.FindExpiredKeys(ctx, s.config.EntryMaxAge, s.config.BatchSize)
		if err != nil {
			return total, fmt.Errorf("find expired keys: %w", err)
		}
		if len(keys) == 0 {
			return total, nil
		}

		if _, err := s.calls.DeleteCalls(ctx, keys...); err != nil {
			return total, fmt.Errorf("delete calls: %w", err)
		}
		count, err := s.repo.DeleteEntries(ctx, keys)
		if err != nil {
			return total, fmt.Errorf("delete entries: %w", err)
		}
		total += count

		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, keys...); err != nil && s.logger != nil {
				s.logger.WarnContext(ctx, "entry cache invalidation failed", "count", len(keys), "error", err)
			}
		}

		if len(keys) < s.config.BatchSize {
			return total, nil
		}
		// Check context between batches
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}
}

func (s *MaintenanceService) logCleanupError(err error, label string) {
	if err == nil || s.logger == nil {
		return
	}

	if isContextCancellation(err) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}

	s.logger.Error(label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

package core

import (
	"context"
	"time"

	"github.com/target/shortener/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// KeyChecker reports whether a key is already taken.
type KeyChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// EntryRepository defines the interface for entry data operations.
type EntryRepository interface {
	KeyChecker
	// FindEntry returns the entry or a NotFound AppError.
	FindEntry(ctx context.Context, key string) (*model.Entry, error)
	// InsertEntry stores a new entry; a taken key yields a Conflict AppError.
	InsertEntry(ctx context.Context, entry *model.Entry) (*model.Entry, error)
	UpdateEntry(ctx context.Context, key string, req *model.UpdateEntryRequest) (*model.Entry, error)
	DeleteEntry(ctx context.Context, key string) (bool, error)
	// ListKeys lists keys owned by ownerID, or every key when ownerID is empty.
	ListKeys(ctx context.Context, ownerID string) ([]string, error)
}

// CallRepository defines the interface for usage record operations.
type CallRepository interface {
	AddCall(ctx context.Context, call *model.Call) error
	DeleteCalls(ctx context.Context, keys ...string) (int64, error)
	CallsPerDate(ctx context.Context, key string) ([]model.DailyCalls, error)
	UniqueCallers(ctx context.Context, key string) ([]model.CallerCalls, error)
}

// MaintenanceRepository defines the queries used by expired-entry cleanup.
type MaintenanceRepository interface {
	// FindExpiredKeys returns up to limit keys of non-persistent entries created more than maxAge ago.
	FindExpiredKeys(ctx context.Context, maxAge time.Duration, limit int) ([]string, error)
	// DeleteEntries deletes the given entries and returns the number removed.
	DeleteEntries(ctx context.Context, keys []string) (int64, error)
}

// EntryCache caches entries for redirect lookups.
type EntryCache interface {
	// Get returns the cached entry, or nil when absent.
	Get(ctx context.Context, key string) (*model.Entry, error)
	Set(ctx context.Context, entry *model.Entry) error
	Invalidate(ctx context.Context, keys ...string) error
}

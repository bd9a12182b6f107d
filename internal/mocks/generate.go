// Package mocks provides mock implementations for testing the shortener services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	mockRepo := mocks.NewMockEntryRepository(ctrl)
//	mockRepo.EXPECT().FindEntry(gomock.Any(), "abc123").Return(entry, nil)
package mocks

// Generate mock for EntryRepository interface from internal/core package.
// This creates MockEntryRepository with methods for all EntryRepository interface methods:
// FindEntry, Exists, InsertEntry, UpdateEntry, DeleteEntry, ListKeys
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=entry_repository_mock.go github.com/target/shortener/internal/core EntryRepository

// Generate mock for CallRepository interface from internal/core package.
// This creates MockCallRepository with methods for all CallRepository interface methods:
// AddCall, DeleteCalls, CallsPerDate, UniqueCallers
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=call_repository_mock.go github.com/target/shortener/internal/core CallRepository

// Generate mock for EntryCache interface from internal/core package.
// This creates MockEntryCache with methods for all EntryCache interface methods:
// Get, Set, Invalidate
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=entry_cache_mock.go github.com/target/shortener/internal/core EntryCache

// Generate mock for MaintenanceRepository interface from internal/core package.
// This creates MockMaintenanceRepository with methods for all MaintenanceRepository interface methods:
// FindExpiredKeys, DeleteEntries
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=maintenance_repository_mock.go github.com/target/shortener/internal/core MaintenanceRepository

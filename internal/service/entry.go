package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/target/shortener/internal/core"
	domainauth "github.com/target/shortener/internal/domain/auth"
	"github.com/target/shortener/internal/domain/model"
	apperrors "github.com/target/shortener/internal/errors"
)

// KeyGenerator allocates keys for new entries.
type KeyGenerator interface {
	Allocate(ctx context.Context) (string, error)
}

// EntryServiceOptions groups dependencies for EntryService.
type EntryServiceOptions struct {
	Entries core.EntryRepository // Required: entry storage
	Calls   core.CallRepository  // Required: usage records
	Keys    KeyGenerator         // Required: key allocation
	Cache   core.EntryCache      // Optional: redirect cache

	// InsertAttempts bounds re-allocation after an insert-time key collision.
	InsertAttempts int
	// Tracking records the caller's subject id with every call.
	Tracking bool

	Logger *slog.Logger
}

// EntryService manages short entries and their usage records.
type EntryService struct {
	entries        core.EntryRepository
	calls          core.CallRepository
	keys           KeyGenerator
	cache          core.EntryCache
	insertAttempts int
	tracking       bool
	logger         *slog.Logger
}

// NewEntryService constructs a new EntryService.
func NewEntryService(opts EntryServiceOptions) (*EntryService, error) {
	if opts.Entries == nil {
		return nil, errors.New("EntryRepository is required")
	}
	if opts.Calls == nil {
		return nil, errors.New("CallRepository is required")
	}
	if opts.Keys == nil {
		return nil, errors.New("KeyGenerator is required")
	}
	attempts := opts.InsertAttempts
	if attempts < 1 {
		attempts = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &EntryService{
		entries:        opts.Entries,
		calls:          opts.Calls,
		keys:           opts.Keys,
		cache:          opts.Cache,
		insertAttempts: attempts,
		tracking:       opts.Tracking,
		logger:         logger.With("component", "entry_service"),
	}, nil
}

// Create stores a new entry owned by principal. The request must already be validated.
//
// A caller-supplied key that is already taken is a validation error. Generated keys are
// re-allocated when the insert loses a race for the key; once attempts run out the caller gets
// a Conflict and may retry.
func (s *EntryService) Create(
	ctx context.Context,
	principal *domainauth.Principal,
	req *model.CreateEntryRequest,
) (*model.Entry, error) {
	entry := &model.Entry{
		OwnerID: principal.SubjectID,
		LongURL: req.LongURL,
	}
	if req.Persistent != nil {
		entry.Persistent = *req.Persistent
	}

	if req.Key != "" {
		return s.createWithKey(ctx, entry, req.Key)
	}

	for attempt := 1; attempt <= s.insertAttempts; attempt++ {
		key, err := s.keys.Allocate(ctx)
		if err != nil {
			return nil, err
		}
		entry.Key = key

		created, err := s.entries.InsertEntry(ctx, entry)
		if err == nil {
			s.invalidate(ctx, key)
			return created, nil
		}
		if !apperrors.IsConflict(err) {
			return nil, fmt.Errorf("insert entry: %w", err)
		}
		s.logger.WarnContext(ctx, "allocated key was taken at insert",
			"key", key,
			"attempt", attempt,
		)
	}

	return nil, apperrors.Conflict("unable to reserve a unique key, retry the request")
}

func (s *EntryService) createWithKey(ctx context.Context, entry *model.Entry, key string) (*model.Entry, error) {
	taken, err := s.entries.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check key: %w", err)
	}
	if taken {
		return nil, apperrors.ValidationField("key", "an entry with this key does already exist")
	}

	entry.Key = key
	created, err := s.entries.InsertEntry(ctx, entry)
	if err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("an entry with this key does already exist")
		}
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	// A redirect may have cached a previous entry under this key.
	s.invalidate(ctx, key)
	return created, nil
}

// Get loads an entry, consulting the cache first. Cache failures fall through to storage.
func (s *EntryService) Get(ctx context.Context, key string) (*model.Entry, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "entry cache read failed", "key", key, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	entry, err := s.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.WarnContext(ctx, "entry cache write failed", "key", key, "error", err)
		}
	}
	return entry, nil
}

// Load reads an entry from storage, bypassing the cache. Ownership decisions use it so a
// stale cached owner can never authorize a change.
func (s *EntryService) Load(ctx context.Context, key string) (*model.Entry, error) {
	entry, err := s.entries.FindEntry(ctx, key)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundf("the requested resource was not found: %s", key)
		}
		return nil, fmt.Errorf("find entry: %w", err)
	}
	return entry, nil
}

// CallInput describes one redirect through an entry.
type CallInput struct {
	Principal *domainauth.Principal
	IP        string
	UserAgent string
}

// RecordCall stores a usage record for entry. The subject id is kept only when tracking is on.
func (s *EntryService) RecordCall(ctx context.Context, entry *model.Entry, in CallInput) error {
	call := &model.Call{
		Key:       entry.Key,
		IP:        in.IP,
		UserAgent: in.UserAgent,
	}
	if s.tracking && in.Principal != nil && in.Principal.SubjectID != "" {
		userID := in.Principal.SubjectID
		call.UserID = &userID
	}

	if err := s.calls.AddCall(ctx, call); err != nil {
		return fmt.Errorf("add call: %w", err)
	}
	return nil
}

// Update applies a validated partial update and drops the cached copy.
func (s *EntryService) Update(ctx context.Context, key string, req *model.UpdateEntryRequest) (*model.Entry, error) {
	updated, err := s.entries.UpdateEntry(ctx, key, req)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundf("the requested resource was not found: %s", key)
		}
		return nil, fmt.Errorf("update entry: %w", err)
	}
	s.invalidate(ctx, key)
	return updated, nil
}

// Delete removes an entry together with its usage records.
func (s *EntryService) Delete(ctx context.Context, key string) error {
	if _, err := s.calls.DeleteCalls(ctx, key); err != nil {
		return fmt.Errorf("delete calls: %w", err)
	}
	deleted, err := s.entries.DeleteEntry(ctx, key)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	s.invalidate(ctx, key)
	if !deleted {
		return apperrors.NotFoundf("the requested resource was not found: %s", key)
	}
	return nil
}

// ListKeys lists every key for admins and the principal's own keys otherwise.
func (s *EntryService) ListKeys(ctx context.Context, principal *domainauth.Principal) ([]string, error) {
	owner := principal.SubjectID
	if principal.IsAdmin {
		owner = ""
	}
	keys, err := s.entries.ListKeys(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Stats summarises the usage of key.
func (s *EntryService) Stats(ctx context.Context, key string) (*model.EntryStats, error) {
	var (
		history []model.DailyCalls
		callers []model.CallerCalls
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = s.calls.CallsPerDate(gctx, key)
		if err != nil {
			return fmt.Errorf("calls per date: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		callers, err = s.calls.UniqueCallers(gctx, key)
		if err != nil {
			return fmt.Errorf("unique callers: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return buildStats(key, history, callers), nil
}

func buildStats(key string, history []model.DailyCalls, callers []model.CallerCalls) *model.EntryStats {
	stats := &model.EntryStats{
		Key:                  key,
		UniqueCallers:        len(callers),
		CallsOfUniqueCallers: make([]int, 0, len(callers)),
		History:              history,
	}
	if stats.History == nil {
		stats.History = []model.DailyCalls{}
	}
	sort.Slice(stats.History, func(i, j int) bool { return stats.History[i].Date < stats.History[j].Date })

	for _, day := range stats.History {
		stats.Calls += day.Calls
	}
	for _, c := range callers {
		stats.CallsOfUniqueCallers = append(stats.CallsOfUniqueCallers, c.Calls)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(stats.CallsOfUniqueCallers)))
	return stats
}

func (s *EntryService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "entry cache invalidation failed", "keys", keys, "error", err)
	}
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/shortener/internal/adapters/lrucache"
	domainauth "github.com/target/shortener/internal/domain/auth"
	"github.com/target/shortener/internal/domain/model"
	apperrors "github.com/target/shortener/internal/errors"
	"github.com/target/shortener/internal/mocks"
)

// stubKeys hands out keys in order.
type stubKeys struct {
	keys []string
	err  error
	n    int
}

func (s *stubKeys) Allocate(context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	key := s.keys[s.n%len(s.keys)]
	s.n++
	return key, nil
}

type entryFixture struct {
	entries *mocks.MockEntryRepository
	calls   *mocks.MockCallRepository
	cache   *mocks.MockEntryCache
	keys    *stubKeys
	svc     *EntryService
}

func newEntryFixture(t *testing.T, withCache bool, tracking bool) *entryFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &entryFixture{
		entries: mocks.NewMockEntryRepository(ctrl),
		calls:   mocks.NewMockCallRepository(ctrl),
		keys:    &stubKeys{keys: []string{"k1", "k2", "k3", "k4"}},
	}
	opts := EntryServiceOptions{
		Entries:        f.entries,
		Calls:          f.calls,
		Keys:           f.keys,
		InsertAttempts: 3,
		Tracking:       tracking,
	}
	if withCache {
		f.cache = mocks.NewMockEntryCache(ctrl)
		opts.Cache = f.cache
	}
	svc, err := NewEntryService(opts)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestNewEntryService_Validation(t *testing.T) {
	_, err := NewEntryService(EntryServiceOptions{})
	require.Error(t, err)
}

func TestEntryService_CreateGenerated(t *testing.T) {
	ctx := context.Background()
	owner := &domainauth.Principal{SubjectID: "U1"}
	persistent := true

	t.Run("inserts with allocated key", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		f.entries.EXPECT().InsertEntry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e *model.Entry) (*model.Entry, error) {
				assert.Equal(t, "k1", e.Key)
				assert.Equal(t, "U1", e.OwnerID)
				assert.True(t, e.Persistent)
				return e, nil
			})

		entry, err := f.svc.Create(ctx, owner, &model.CreateEntryRequest{
			LongURL:    "https://example.com",
			Persistent: &persistent,
		})
		require.NoError(t, err)
		assert.Equal(t, "k1", entry.Key)
	})

	t.Run("insert conflict re-allocates", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		gomock.InOrder(
			f.entries.EXPECT().InsertEntry(gomock.Any(), gomock.Any()).Return(nil, apperrors.Conflict("dup")),
			f.entries.EXPECT().InsertEntry(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, e *model.Entry) (*model.Entry, error) {
					return e, nil
				}),
		)

		entry, err := f.svc.Create(ctx, owner, &model.CreateEntryRequest{LongURL: "https://example.com"})
		require.NoError(t, err)
		assert.Equal(t, "k2", entry.Key)
		assert.Equal(t, 2, f.keys.n)
	})

	t.Run("exhausted insert attempts is conflict", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		f.entries.EXPECT().InsertEntry(gomock.Any(), gomock.Any()).
			Return(nil, apperrors.Conflict("dup")).Times(3)

		_, err := f.svc.Create(ctx, owner, &model.CreateEntryRequest{LongURL: "https://example.com"})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		appErr, ok := apperrors.Structured(err)
		require.True(t, ok)
		assert.Equal(t, 409, appErr.HTTPStatus())
	})

	t.Run("allocation exhausted is returned as is", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		f.keys.err = apperrors.AllocationExhausted("none left")

		_, err := f.svc.Create(ctx, owner, &model.CreateEntryRequest{LongURL: "https://example.com"})
		assert.True(t, apperrors.IsAllocationExhausted(err))
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		boom := errors.New("boom")
		f.entries.EXPECT().InsertEntry(gomock.Any(), gomock.Any()).Return(nil, boom)

		_, err := f.svc.Create(ctx, owner, &model.CreateEntryRequest{LongURL: "https://example.com"})
		require.ErrorIs(t, err, boom)
	})
}

func TestEntryService_CreateWithKey(t *testing.T) {
	ctx := context.Background()
	owner := &domainauth.Principal{SubjectID: "U1"}

	t.Run("taken key is a validation error", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		f.entries.EXPECT().Exists(gomock.Any(), "mine").Return(true, nil)

		_, err := f.svc.Create(ctx, owner, &model.CreateEntryRequest{Key: "mine", LongURL: "https://example.com"})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Contains(t, err.Error(), "an entry with this key does already exist")
	})

	t.Run("lost insert race is conflict", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		f.entries.EXPECT().Exists(gomock.Any(), "mine").Return(false, nil)
		f.entries.EXPECT().InsertEntry(gomock.Any(), gomock.Any()).Return(nil, apperrors.Conflict("dup"))

		_, err := f.svc.Create(ctx, owner, &model.CreateEntryRequest{Key: "mine", LongURL: "https://example.com"})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("free key is inserted without allocation", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		f.entries.EXPECT().Exists(gomock.Any(), "mine").Return(false, nil)
		f.entries.EXPECT().InsertEntry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e *model.Entry) (*model.Entry, error) { return e, nil })

		entry, err := f.svc.Create(ctx, owner, &model.CreateEntryRequest{Key: "mine", LongURL: "https://example.com"})
		require.NoError(t, err)
		assert.Equal(t, "mine", entry.Key)
		assert.Equal(t, 0, f.keys.n)
	})
}

func TestEntryService_CreateDropsCachedKey(t *testing.T) {
	ctx := context.Background()
	owner := &domainauth.Principal{SubjectID: "U2"}
	insert := func(_ context.Context, e *model.Entry) (*model.Entry, error) { return e, nil }

	t.Run("caller-supplied key", func(t *testing.T) {
		f := newEntryFixture(t, true, false)
		gomock.InOrder(
			f.entries.EXPECT().Exists(gomock.Any(), "mine").Return(false, nil),
			f.entries.EXPECT().InsertEntry(gomock.Any(), gomock.Any()).DoAndReturn(insert),
			f.cache.EXPECT().Invalidate(gomock.Any(), "mine").Return(nil),
		)

		_, err := f.svc.Create(ctx, owner, &model.CreateEntryRequest{Key: "mine", LongURL: "https://example.com"})
		require.NoError(t, err)
	})

	t.Run("generated key", func(t *testing.T) {
		f := newEntryFixture(t, true, false)
		gomock.InOrder(
			f.entries.EXPECT().InsertEntry(gomock.Any(), gomock.Any()).DoAndReturn(insert),
			f.cache.EXPECT().Invalidate(gomock.Any(), "k1").Return(nil),
		)

		_, err := f.svc.Create(ctx, owner, &model.CreateEntryRequest{LongURL: "https://example.com"})
		require.NoError(t, err)
	})
}

func TestEntryService_LoadSkipsCache(t *testing.T) {
	f := newEntryFixture(t, true, false)
	stored := &model.Entry{Key: "abc", OwnerID: "U2"}
	f.entries.EXPECT().FindEntry(gomock.Any(), "abc").Return(stored, nil)

	entry, err := f.svc.Load(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, stored, entry)

	f.entries.EXPECT().FindEntry(gomock.Any(), "gone").Return(nil, apperrors.NotFound("entry not found"))
	_, err = f.svc.Load(context.Background(), "gone")
	assert.True(t, apperrors.IsNotFound(err))
}

// memEntries is a map-backed EntryRepository.
type memEntries struct {
	mu      sync.Mutex
	entries map[string]model.Entry
}

func (m *memEntries) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok, nil
}

func (m *memEntries) FindEntry(_ context.Context, key string) (*model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, apperrors.NotFound("entry not found")
	}
	return &e, nil
}

func (m *memEntries) InsertEntry(_ context.Context, entry *model.Entry) (*model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.Key]; ok {
		return nil, apperrors.Conflict("duplicate key")
	}
	m.entries[entry.Key] = *entry
	cp := *entry
	return &cp, nil
}

func (m *memEntries) UpdateEntry(_ context.Context, key string, req *model.UpdateEntryRequest) (*model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, apperrors.NotFound("entry not found")
	}
	if req.LongURL != nil {
		e.LongURL = *req.LongURL
	}
	m.entries[key] = e
	return &e, nil
}

func (m *memEntries) DeleteEntry(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	delete(m.entries, key)
	return ok, nil
}

func (m *memEntries) ListKeys(context.Context, string) ([]string, error) { return nil, nil }

func TestEntryService_RecreatedKeyAuthorizesCurrentOwner(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	calls := mocks.NewMockCallRepository(ctrl)
	calls.EXPECT().DeleteCalls(gomock.Any(), gomock.Any()).Return(int64(0), nil).AnyTimes()

	cache := lrucache.NewEntryCache(16, time.Minute)
	svc, err := NewEntryService(EntryServiceOptions{
		Entries: &memEntries{entries: map[string]model.Entry{}},
		Calls:   calls,
		Keys:    &stubKeys{keys: []string{"unused"}},
		Cache:   cache,
	})
	require.NoError(t, err)

	u1 := &domainauth.Principal{SubjectID: "U1"}
	u2 := &domainauth.Principal{SubjectID: "U2"}

	_, err = svc.Create(ctx, u1, &model.CreateEntryRequest{Key: "abc", LongURL: "https://a.example"})
	require.NoError(t, err)
	stale, err := svc.Get(ctx, "abc")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "abc"))
	// A redirect that read storage before the delete writes back after it.
	require.NoError(t, cache.Set(ctx, stale))

	_, err = svc.Create(ctx, u2, &model.CreateEntryRequest{Key: "abc", LongURL: "https://b.example"})
	require.NoError(t, err)

	redirect, err := svc.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", redirect.LongURL)

	// The write-back can also land after the new entry exists; ownership must still come from storage.
	require.NoError(t, cache.Set(ctx, stale))
	loaded, err := svc.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "U2", loaded.OwnerID)
	assert.True(t, apperrors.IsForbidden(Authorize(u1, loaded)))
	assert.NoError(t, Authorize(u2, loaded))
}

func TestEntryService_Get(t *testing.T) {
	ctx := context.Background()
	stored := &model.Entry{Key: "abc", OwnerID: "U1", LongURL: "https://example.com"}

	t.Run("cache hit skips storage", func(t *testing.T) {
		f := newEntryFixture(t, true, false)
		f.cache.EXPECT().Get(gomock.Any(), "abc").Return(stored, nil)

		entry, err := f.svc.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, stored, entry)
	})

	t.Run("cache miss populates cache", func(t *testing.T) {
		f := newEntryFixture(t, true, false)
		f.cache.EXPECT().Get(gomock.Any(), "abc").Return(nil, nil)
		f.entries.EXPECT().FindEntry(gomock.Any(), "abc").Return(stored, nil)
		f.cache.EXPECT().Set(gomock.Any(), stored).Return(nil)

		entry, err := f.svc.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, stored, entry)
	})

	t.Run("cache failure falls back to storage", func(t *testing.T) {
		f := newEntryFixture(t, true, false)
		f.cache.EXPECT().Get(gomock.Any(), "abc").Return(nil, errors.New("redis down"))
		f.entries.EXPECT().FindEntry(gomock.Any(), "abc").Return(stored, nil)
		f.cache.EXPECT().Set(gomock.Any(), stored).Return(errors.New("redis down"))

		entry, err := f.svc.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, stored, entry)
	})

	t.Run("missing entry is not found", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		f.entries.EXPECT().FindEntry(gomock.Any(), "nope").Return(nil, apperrors.NotFound("entry not found"))

		_, err := f.svc.Get(ctx, "nope")
		require.Error(t, err)
		appErr, ok := apperrors.Structured(err)
		require.True(t, ok)
		assert.Equal(t, "the requested resource was not found: nope", appErr.Description)
	})
}

func TestEntryService_RecordCall(t *testing.T) {
	ctx := context.Background()
	entry := &model.Entry{Key: "abc"}
	principal := &domainauth.Principal{SubjectID: "U1"}

	t.Run("tracking disabled omits user", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		f.calls.EXPECT().AddCall(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c *model.Call) error {
				assert.Equal(t, "abc", c.Key)
				assert.Equal(t, "10.0.0.1", c.IP)
				assert.Equal(t, "curl/8", c.UserAgent)
				assert.Nil(t, c.UserID)
				return nil
			})

		require.NoError(t, f.svc.RecordCall(ctx, entry, CallInput{Principal: principal, IP: "10.0.0.1", UserAgent: "curl/8"}))
	})

	t.Run("tracking enabled records user", func(t *testing.T) {
		f := newEntryFixture(t, false, true)
		f.calls.EXPECT().AddCall(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c *model.Call) error {
				require.NotNil(t, c.UserID)
				assert.Equal(t, "U1", *c.UserID)
				return nil
			})

		require.NoError(t, f.svc.RecordCall(ctx, entry, CallInput{Principal: principal}))
	})
}

func TestEntryService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	longURL := "https://example.org"
	req := &model.UpdateEntryRequest{LongURL: &longURL}

	t.Run("update invalidates cache", func(t *testing.T) {
		f := newEntryFixture(t, true, false)
		updated := &model.Entry{Key: "abc", LongURL: longURL}
		f.entries.EXPECT().UpdateEntry(gomock.Any(), "abc", req).Return(updated, nil)
		f.cache.EXPECT().Invalidate(gomock.Any(), "abc").Return(nil)

		got, err := f.svc.Update(ctx, "abc", req)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("delete removes calls then entry", func(t *testing.T) {
		f := newEntryFixture(t, true, false)
		gomock.InOrder(
			f.calls.EXPECT().DeleteCalls(gomock.Any(), "abc").Return(int64(4), nil),
			f.entries.EXPECT().DeleteEntry(gomock.Any(), "abc").Return(true, nil),
			f.cache.EXPECT().Invalidate(gomock.Any(), "abc").Return(nil),
		)

		require.NoError(t, f.svc.Delete(ctx, "abc"))
	})

	t.Run("delete of vanished entry is not found", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		f.calls.EXPECT().DeleteCalls(gomock.Any(), "abc").Return(int64(0), nil)
		f.entries.EXPECT().DeleteEntry(gomock.Any(), "abc").Return(false, nil)

		err := f.svc.Delete(ctx, "abc")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestEntryService_ListKeys(t *testing.T) {
	ctx := context.Background()

	t.Run("admin lists everything", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		f.entries.EXPECT().ListKeys(gomock.Any(), "").Return([]string{"a", "b"}, nil)

		keys, err := f.svc.ListKeys(ctx, &domainauth.Principal{SubjectID: "U1", IsAdmin: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, keys)
	})

	t.Run("user lists own keys", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		f.entries.EXPECT().ListKeys(gomock.Any(), "U1").Return(nil, nil)

		keys, err := f.svc.ListKeys(ctx, &domainauth.Principal{SubjectID: "U1"})
		require.NoError(t, err)
		assert.NotNil(t, keys)
		assert.Empty(t, keys)
	})
}

func TestEntryService_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates history and callers", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		f.calls.EXPECT().CallsPerDate(gomock.Any(), "abc").Return([]model.DailyCalls{
			{Date: "2024-05-02", Calls: 3},
			{Date: "2024-05-01", Calls: 2},
		}, nil)
		f.calls.EXPECT().UniqueCallers(gomock.Any(), "abc").Return([]model.CallerCalls{
			{IP: "1.1.1.1", UserAgent: "a", Calls: 1},
			{IP: "1.1.1.1", UserAgent: "b", Calls: 3},
			{IP: "2.2.2.2", UserAgent: "a", Calls: 1},
		}, nil)

		stats, err := f.svc.Stats(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "abc", stats.Key)
		assert.Equal(t, 5, stats.Calls)
		assert.Equal(t, 3, stats.UniqueCallers)
		assert.Equal(t, []int{3, 1, 1}, stats.CallsOfUniqueCallers)
		assert.Equal(t, "2024-05-01", stats.History[0].Date)
	})

	t.Run("no calls", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		f.calls.EXPECT().CallsPerDate(gomock.Any(), "abc").Return(nil, nil)
		f.calls.EXPECT().UniqueCallers(gomock.Any(), "abc").Return(nil, nil)

		stats, err := f.svc.Stats(ctx, "abc")
		require.NoError(t, err)
		assert.Zero(t, stats.Calls)
		assert.NotNil(t, stats.History)
		assert.NotNil(t, stats.CallsOfUniqueCallers)
	})

	t.Run("query failure", func(t *testing.T) {
		f := newEntryFixture(t, false, false)
		boom := errors.New("boom")
		f.calls.EXPECT().CallsPerDate(gomock.Any(), "abc").Return(nil, boom)
		f.calls.EXPECT().UniqueCallers(gomock.Any(), "abc").Return(nil, nil).AnyTimes()

		_, err := f.svc.Stats(ctx, "abc")
		require.ErrorIs(t, err, boom)
	})
}

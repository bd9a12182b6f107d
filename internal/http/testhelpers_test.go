package httpx

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainauth "github.com/target/shortener/internal/domain/auth"
	"github.com/target/shortener/internal/domain/model"
	apperrors "github.com/target/shortener/internal/errors"
	mockauth "github.com/target/shortener/internal/mocks/auth"
	"github.com/target/shortener/internal/service"
)

const (
	testAppID    = "APP"
	testTenantID = "TEN"
	testBaseURL  = "https://sho.rt"
)

func credentialFor(oid, appid, tid string) string {
	enc := base64.RawURLEncoding.EncodeToString
	return enc([]byte(`{"alg":"none"}`)) + "." +
		enc([]byte(`{"oid":"`+oid+`","appid":"`+appid+`","tid":"`+tid+`"}`)) + ".c2ln"
}

func newTestResolver(t *testing.T, dir *mockauth.StaticDirectory) *service.IdentityResolver {
	t.Helper()
	if dir == nil {
		dir = &mockauth.StaticDirectory{
			Roles:       []domainauth.Role{{ID: "R1", Name: "AdminRole"}},
			Assignments: []domainauth.RoleAssignment{{PrincipalID: "ADMIN", RoleID: "R1"}},
		}
	}
	r, err := service.NewIdentityResolver(service.IdentityResolverOptions{
		Directory:     dir,
		ApplicationID: testAppID,
		TenantID:      testTenantID,
		AppObjectID:   "OBJ",
	})
	require.NoError(t, err)
	return r
}

// triggerRecorder captures lifecycle trigger calls.
type triggerRecorder struct {
	mu      sync.Mutex
	reasons []string
	fired   chan struct{}
	once    sync.Once
}

func newTriggerRecorder() *triggerRecorder {
	return &triggerRecorder{fired: make(chan struct{})}
}

func (tr *triggerRecorder) trigger(reason string, _ error) {
	tr.mu.Lock()
	tr.reasons = append(tr.reasons, reason)
	tr.mu.Unlock()
	tr.once.Do(func() { close(tr.fired) })
}

func (tr *triggerRecorder) waitFired(t *testing.T) {
	t.Helper()
	select {
	case <-tr.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("trigger was not called")
	}
}

func (tr *triggerRecorder) count() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.reasons)
}

// fakeEntries is an in-memory EntryService.
type fakeEntries struct {
	mu      sync.Mutex
	entries map[string]*model.Entry
	calls   []service.CallInput
	loads   int

	// Cached, when set, is what Get serves ahead of entries.
	Cached map[string]*model.Entry

	CreateFunc func(ctx context.Context, p *domainauth.Principal, req *model.CreateEntryRequest) (*model.Entry, error)
	StatsFunc  func(ctx context.Context, key string) (*model.EntryStats, error)
	GetErr     error
}

func newFakeEntries(entries ...*model.Entry) *fakeEntries {
	f := &fakeEntries{entries: map[string]*model.Entry{}}
	for _, e := range entries {
		f.entries[e.Key] = e
	}
	return f
}

func (f *fakeEntries) Create(ctx context.Context, p *domainauth.Principal, req *model.CreateEntryRequest) (*model.Entry, error) {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, p, req)
	}
	key := req.Key
	if key == "" {
		key = "gen1234"
	}
	e := &model.Entry{Key: key, OwnerID: p.SubjectID, LongURL: req.LongURL}
	f.mu.Lock()
	f.entries[key] = e
	f.mu.Unlock()
	return e, nil
}

func (f *fakeEntries) Get(_ context.Context, key string) (*model.Entry, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.Cached[key]; ok {
		cp := *e
		return &cp, nil
	}
	return f.stored(key)
}

func (f *fakeEntries) Load(_ context.Context, key string) (*model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.stored(key)
}

func (f *fakeEntries) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func (f *fakeEntries) stored(key string) (*model.Entry, error) {
	e, ok := f.entries[key]
	if !ok {
		return nil, apperrors.NotFoundf("the requested resource was not found: %s", key)
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEntries) RecordCall(_ context.Context, _ *model.Entry, in service.CallInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, in)
	return nil
}

func (f *fakeEntries) Update(_ context.Context, key string, req *model.UpdateEntryRequest) (*model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.entries[key]
	if req.LongURL != nil {
		e.LongURL = *req.LongURL
	}
	if req.Persistent != nil {
		e.Persistent = *req.Persistent
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEntries) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *fakeEntries) ListKeys(_ context.Context, p *domainauth.Principal) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := []string{}
	for k, e := range f.entries {
		if p.IsAdmin || e.OwnerID == p.SubjectID {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeEntries) Stats(ctx context.Context, key string) (*model.EntryStats, error) {
	if f.StatsFunc != nil {
		return f.StatsFunc(ctx, key)
	}
	return &model.EntryStats{Key: key}, nil
}

func (f *fakeEntries) recordedCalls() []service.CallInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.CallInput(nil), f.calls...)
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

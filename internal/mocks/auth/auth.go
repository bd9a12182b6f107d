package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/target/shortener/internal/domain/auth"
	"github.com/target/shortener/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.DirectoryClient = (*StaticDirectory)(nil)
	_ ports.LoginProvider   = (*MockLoginProvider)(nil)
)

// ErrDirectoryUnavailable is returned by StaticDirectory when Fail is set.
var ErrDirectoryUnavailable = errors.New("directory unavailable")

// StaticDirectory serves a fixed role catalog and assignment list.
type StaticDirectory struct {
	FetchRolesFunc       func(ctx context.Context, appObjectID, credential string) ([]domainauth.Role, error)
	FetchAssignmentsFunc func(ctx context.Context, appObjectID, credential string) ([]domainauth.RoleAssignment, error)

	Roles       []domainauth.Role
	Assignments []domainauth.RoleAssignment
	Fail        bool

	mu          sync.Mutex
	credentials []string
}

func (d *StaticDirectory) FetchRoles(ctx context.Context, appObjectID, credential string) ([]domainauth.Role, error) {
	d.record(credential)
	if d.FetchRolesFunc != nil {
		return d.FetchRolesFunc(ctx, appObjectID, credential)
	}
	if d.Fail {
		return nil, ErrDirectoryUnavailable
	}
	return d.Roles, nil
}

func (d *StaticDirectory) FetchAssignments(
	ctx context.Context,
	appObjectID, credential string,
) ([]domainauth.RoleAssignment, error) {
	d.record(credential)
	if d.FetchAssignmentsFunc != nil {
		return d.FetchAssignmentsFunc(ctx, appObjectID, credential)
	}
	if d.Fail {
		return nil, ErrDirectoryUnavailable
	}
	return d.Assignments, nil
}

// Credentials returns the credentials the directory was called with, in order.
func (d *StaticDirectory) Credentials() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.credentials))
	copy(out, d.credentials)
	return out
}

func (d *StaticDirectory) record(credential string) {
	d.mu.Lock()
	d.credentials = append(d.credentials, credential)
	d.mu.Unlock()
}

// MockLoginProvider simulates the identity provider's code flow.
type MockLoginProvider struct {
	ExchangeFunc func(ctx context.Context, code string) (ports.LoginToken, error)

	AuthURL string
	Token   ports.LoginToken
}

// NewMockLoginProvider creates a MockLoginProvider with sensible defaults.
func NewMockLoginProvider() *MockLoginProvider {
	return &MockLoginProvider{
		AuthURL: "https://mock-idp/authorize",
		Token:   ports.LoginToken{AccessToken: "mock-access-token", ExpiresIn: time.Hour},
	}
}

func (m *MockLoginProvider) AuthCodeURL(state string) string {
	return m.AuthURL + "?state=" + state
}

func (m *MockLoginProvider) Exchange(ctx context.Context, code string) (ports.LoginToken, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	if code == "" {
		return ports.LoginToken{}, errors.New("missing authorization code")
	}
	return m.Token, nil
}

// Package ports defines interfaces (hexagonal ports) for identity-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"time"

	domainauth "github.com/target/shortener/internal/domain/auth"
)

// DirectoryClient queries the external role directory on behalf of a caller.
// Both lookups are made with the caller's own credential and fail on any
// transport or authorization error.
type DirectoryClient interface {
	FetchRoles(ctx context.Context, appObjectID, credential string) ([]domainauth.Role, error)
	FetchAssignments(ctx context.Context, appObjectID, credential string) ([]domainauth.RoleAssignment, error)
}

// LoginProvider runs the authorization-code flow against the identity provider.
type LoginProvider interface {
	// AuthCodeURL returns the provider URL the browser is sent to.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (LoginToken, error)
}

// LoginToken is the credential issued at the end of a login.
type LoginToken struct {
	AccessToken string
	ExpiresIn   time.Duration
}

package devauth

// Package devauth provides a config-driven directory and login provider for local development.

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/target/shortener/internal/domain/auth"
	"github.com/target/shortener/internal/ports"
)

// adminRoleID is the id of the single admin role served by the dev directory.
const adminRoleID = "dev-admin-role"

var (
	_ ports.DirectoryClient = (*Provider)(nil)
	_ ports.LoginProvider   = (*Provider)(nil)
)

// Config controls the dev provider behavior.
type Config struct {
	UserID        string
	ApplicationID string
	TenantID      string
	// AdminRole is the role name the service treats as admin.
	AdminRole string
	// AdminIDs are subject ids assigned to the admin role.
	AdminIDs []string
	// CallbackURL receives the short-circuited login redirect.
	CallbackURL     string
	SessionDuration time.Duration // default 8h when zero
}

// Provider short-circuits the login flow by redirecting straight back to the callback, and mints
// unsigned credentials for the configured user. As a directory it serves a single admin role
// assigned to AdminIDs.
type Provider struct {
	cfg Config
}

// NewProvider constructs a dev provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.ApplicationID == "" || cfg.TenantID == "" {
		return nil, errors.New("dev auth: ApplicationID and TenantID are required")
	}
	if cfg.AdminRole == "" {
		return nil, errors.New("dev auth: AdminRole is required")
	}
	if cfg.CallbackURL == "" {
		cfg.CallbackURL = "/oauth/callback"
	}
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = 8 * time.Hour
	}
	cfg.AdminIDs = append([]string(nil), cfg.AdminIDs...)
	return &Provider{cfg: cfg}, nil
}

// AuthCodeURL returns the local callback URL carrying a fixed code.
func (p *Provider) AuthCodeURL(state string) string {
	return p.cfg.CallbackURL + "?code=dev&state=" + url.QueryEscape(state)
}

// Exchange ignores the code and mints a credential for the configured user.
func (p *Provider) Exchange(_ context.Context, _ string) (ports.LoginToken, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"oid":   p.cfg.UserID,
		"appid": p.cfg.ApplicationID,
		"tid":   p.cfg.TenantID,
		"iat":   now.Unix(),
		"exp":   now.Add(p.cfg.SessionDuration).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		return ports.LoginToken{}, fmt.Errorf("mint dev credential: %w", err)
	}
	return ports.LoginToken{AccessToken: token, ExpiresIn: p.cfg.SessionDuration}, nil
}

// FetchRoles returns the admin role.
func (p *Provider) FetchRoles(_ context.Context, _, credential string) ([]domainauth.Role, error) {
	if credential == "" {
		return nil, errors.New("dev auth: credential is required")
	}
	return []domainauth.Role{{ID: adminRoleID, Name: p.cfg.AdminRole}}, nil
}

// FetchAssignments assigns the admin role to every configured admin id.
func (p *Provider) FetchAssignments(_ context.Context, _, credential string) ([]domainauth.RoleAssignment, error) {
	if credential == "" {
		return nil, errors.New("dev auth: credential is required")
	}
	out := make([]domainauth.RoleAssignment, 0, len(p.cfg.AdminIDs))
	for _, id := range p.cfg.AdminIDs {
		out = append(out, domainauth.RoleAssignment{PrincipalID: id, RoleID: adminRoleID})
	}
	return out, nil
}

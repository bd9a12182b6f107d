package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth authenticates against Entra ID and resolves roles through Microsoft Graph.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses a static directory (for development only).
	AuthModeMock AuthMode = "mock"
)

// DefaultAdminRoleName is the app role that grants access to every entry.
const DefaultAdminRoleName = "AdminRole"

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains the application registration used for login and role lookups.
type OAuthConfig struct {
	// ClientID is the application (client) id; credentials must carry it as appid.
	ClientID string `env:"CLIENT_ID"`
	// TenantID is the directory tenant; credentials must carry it as tid.
	TenantID string `env:"TENANT_ID"`
	// AppObjectID is the service principal object id whose app roles are inspected.
	AppObjectID  string `env:"APP_OBJECT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/oauth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"User.Read"`
	// Authority is the OIDC issuer; "{tenant}" is replaced with TenantID.
	Authority        string        `env:"AUTHORITY"         envDefault:"https://login.microsoftonline.com/{tenant}/v2.0"`
	DirectoryURL     string        `env:"DIRECTORY_URL"     envDefault:"https://graph.microsoft.com/v1.0"`
	DirectoryTimeout time.Duration `env:"DIRECTORY_TIMEOUT" envDefault:"10s"`
	AdminRole        string        `env:"ADMIN_ROLE"        envDefault:"AdminRole"`
}

// IssuerURL returns the authority with the tenant placeholder resolved.
func (o OAuthConfig) IssuerURL() string {
	return strings.ReplaceAll(o.Authority, "{tenant}", o.TenantID)
}

// DevAuthConfig controls the static directory used when AUTH_MODE=mock.
type DevAuthConfig struct {
	// UserID is the subject id of credentials minted by the dev login.
	UserID string `env:"USER_ID" envDefault:"dev-user"`
	// AdminIDs are subject ids assigned to the admin role.
	AdminIDs []string `env:"ADMIN_IDS" envSeparator:";"`
	AppID    string   `env:"APP_ID"    envDefault:"dev-app"`
	TenantID string   `env:"TENANT_ID" envDefault:"dev-tenant"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which directory and login provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize trims identifiers and restores defaults for blank values.
func (a *AuthConfig) Sanitize() {
	a.OAuth.ClientID = strings.TrimSpace(a.OAuth.ClientID)
	a.OAuth.TenantID = strings.TrimSpace(a.OAuth.TenantID)
	a.OAuth.AppObjectID = strings.TrimSpace(a.OAuth.AppObjectID)
	a.OAuth.DirectoryURL = strings.TrimRight(strings.TrimSpace(a.OAuth.DirectoryURL), "/")
	if strings.TrimSpace(a.OAuth.AdminRole) == "" {
		a.OAuth.AdminRole = DefaultAdminRoleName
	}
	if a.OAuth.DirectoryTimeout <= 0 {
		a.OAuth.DirectoryTimeout = 10 * time.Second
	}
}

// ApplicationID returns the application id credentials must be issued for.
func (a *AuthConfig) ApplicationID() string {
	if a.Mode == AuthModeMock {
		return a.DevAuth.AppID
	}
	return a.OAuth.ClientID
}

// Tenant returns the tenant id credentials must be issued by.
func (a *AuthConfig) Tenant() string {
	if a.Mode == AuthModeMock {
		return a.DevAuth.TenantID
	}
	return a.OAuth.TenantID
}

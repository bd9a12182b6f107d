package oidc

// Package oidc provides the OIDC/OAuth login adapter for the shortener.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/target/shortener/internal/ports"
)

// defaultTokenLifetime applies when the token response carries no expiry.
const defaultTokenLifetime = time.Hour

var _ ports.LoginProvider = (*Provider)(nil)

// Provider implements ports.LoginProvider using OIDC discovery and the OAuth2 code flow.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client
	now        func() time.Time
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	// IssuerURL is the OIDC issuer; a trailing discovery path is tolerated.
	IssuerURL  string
	HTTPClient *http.Client // Optional, defaults to a client with a 30s timeout
}

// DiscoveryDocument represents the OIDC discovery document.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// NewProvider discovers the issuer's endpoints and creates a new Provider.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuer := strings.TrimSuffix(config.IssuerURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(gooidc.ClientContext(ctx, httpClient), issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       strings.Fields(config.Scope),
			Endpoint:     op.Endpoint(),
		},
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

// AuthCodeURL returns the authorization endpoint URL for state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange trades the authorization code for an access token.
func (p *Provider) Exchange(ctx context.Context, code string) (ports.LoginToken, error) {
	if code == "" {
		return ports.LoginToken{}, errors.New("authorization code is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return ports.LoginToken{}, fmt.Errorf("exchange code for token: %w", err)
	}

	return ports.LoginToken{
		AccessToken: token.AccessToken,
		ExpiresIn:   p.lifetime(token),
	}, nil
}

func (p *Provider) lifetime(token *oauth2.Token) time.Duration {
	if token.Expiry.IsZero() {
		return defaultTokenLifetime
	}
	remaining := token.Expiry.Sub(p.now()).Round(time.Second)
	if remaining <= 0 {
		return defaultTokenLifetime
	}
	return remaining
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/shortener/config"
	"github.com/target/shortener/internal/adapters/devauth"
	"github.com/target/shortener/internal/adapters/graph"
	"github.com/target/shortener/internal/adapters/oidc"
	"github.com/target/shortener/internal/ports"
	"github.com/target/shortener/internal/service"
)

// AuthConfig contains configuration for building the identity pipeline.
type AuthConfig struct {
	Auth   config.AuthConfig
	Logger *slog.Logger
}

// AuthComponents are the identity pieces shared by the router.
type AuthComponents struct {
	Identity *service.IdentityResolver
	Login    *service.LoginService
}

// BuildAuth wires the directory and login provider for the configured mode.
func BuildAuth(ctx context.Context, cfg AuthConfig) (*AuthComponents, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	directory, provider, err := authProviders(ctx, cfg.Auth, logger)
	if err != nil {
		return nil, err
	}

	identity, err := service.NewIdentityResolver(service.IdentityResolverOptions{
		Directory:     directory,
		ApplicationID: cfg.Auth.ApplicationID(),
		TenantID:      cfg.Auth.Tenant(),
		AppObjectID:   cfg.Auth.OAuth.AppObjectID,
		AdminRole:     cfg.Auth.OAuth.AdminRole,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("identity resolver: %w", err)
	}

	login, err := service.NewLoginService(service.LoginServiceOptions{Provider: provider})
	if err != nil {
		return nil, fmt.Errorf("login service: %w", err)
	}

	return &AuthComponents{Identity: identity, Login: login}, nil
}

//nolint:ireturn // the concrete providers depend on the auth mode.
func authProviders(
	ctx context.Context,
	auth config.AuthConfig,
	logger *slog.Logger,
) (ports.DirectoryClient, ports.LoginProvider, error) {
	switch auth.Mode {
	case config.AuthModeMock:
		logger.WarnContext(ctx, "using static development directory", "user_id", auth.DevAuth.UserID)
		dev, err := devauth.NewProvider(devauth.Config{
			UserID:        auth.DevAuth.UserID,
			ApplicationID: auth.DevAuth.AppID,
			TenantID:      auth.DevAuth.TenantID,
			AdminRole:     auth.OAuth.AdminRole,
			AdminIDs:      auth.DevAuth.AdminIDs,
			CallbackURL:   auth.OAuth.RedirectURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("dev auth provider: %w", err)
		}
		return dev, dev, nil

	case config.AuthModeOAuth, "":
		directory, err := graph.NewDirectory(graph.Options{
			BaseURL: auth.OAuth.DirectoryURL,
			Timeout: auth.OAuth.DirectoryTimeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("graph directory: %w", err)
		}
		provider, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     auth.OAuth.ClientID,
			ClientSecret: auth.OAuth.ClientSecret,
			RedirectURL:  auth.OAuth.RedirectURL,
			Scope:        auth.OAuth.Scope,
			IssuerURL:    auth.OAuth.IssuerURL(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("oidc provider: %w", err)
		}
		return directory, provider, nil
	}
	return nil, nil, errors.New("unsupported auth mode: " + string(auth.Mode))
}

package bootstrap

import (
	"log/slog"
	"net/http"

	"github.com/target/shortener/config"
	httpx "github.com/target/shortener/internal/http"
	"github.com/target/shortener/internal/lifecycle"
)

// HTTPServerConfig contains what the HTTP server is assembled from.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Auth     *AuthComponents
	Trigger  lifecycle.TriggerFunc
	Logger   *slog.Logger
}

// BuildHTTPHandler wires the error funnel and router.
func BuildHTTPHandler(cfg *HTTPServerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	funnel := httpx.NewErrorFunnel(httpx.ErrorFunnelOptions{
		Logger:  logger,
		Trigger: cfg.Trigger,
	})

	opts := httpx.RouterOptions{
		Entries: cfg.Services.Entries,
		Funnel:  funnel,
		BaseURL: appCfg.HTTP.BaseURL,
		Cookies: httpx.CookieConfig{
			Domain: appCfg.HTTP.CookieDomain,
			Secure: appCfg.HTTP.SecureCookies,
		},
		CORSAllowedOrigins: appCfg.HTTP.CORSAllowedOrigins,
		Logger:             logger,
	}
	if appCfg.HTTP.CompressionEnabled {
		opts.CompressionLevel = appCfg.HTTP.CompressionLevel
	}
	if cfg.Auth != nil {
		opts.Identity = cfg.Auth.Identity
		if cfg.Auth.Login != nil {
			opts.Login = cfg.Auth.Login
		}
	}
	return httpx.NewRouter(opts)
}

// NewHTTPServer builds the listener for the configured address.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	addr := ":8080"
	if cfg.Config != nil && cfg.Config.HTTP.Addr != "" {
		addr = cfg.Config.HTTP.Addr
	}
	return httpx.NewServer(addr, BuildHTTPHandler(cfg))
}

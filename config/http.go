package config

import (
	"strings"
	"time"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL prefixes every key to form the short URL returned to callers.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for the credential and anonymous id cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// SecureCookies marks issued cookies Secure.
	SecureCookies bool `env:"HTTP_SECURE_COOKIES" envDefault:"false"`

	// CompressionEnabled enables gzip compression of JSON responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`

	// CORSAllowedOrigins enables CORS for the listed origins; empty disables it.
	CORSAllowedOrigins []string `env:"HTTP_CORS_ALLOWED_ORIGINS" envSeparator:","`

	// ShutdownTimeout bounds the graceful drain of the listener.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// CloseDelay is waited after the listener closes before the process exits.
	CloseDelay time.Duration `env:"HTTP_CLOSE_DELAY" envDefault:"500ms"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	// Clamp compression level to valid gzip range (1-9)
	if h.CompressionLevel < 1 {
		h.CompressionLevel = 1
	}
	if h.CompressionLevel > 9 {
		h.CompressionLevel = 9
	}
	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
	if h.CloseDelay < 0 {
		h.CloseDelay = 0
	}

	origins := h.CORSAllowedOrigins[:0]
	for _, o := range h.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	h.CORSAllowedOrigins = origins
}

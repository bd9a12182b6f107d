package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/target/shortener/internal/domain/model"
)

// RouterOptions holds everything the HTTP router needs.
type RouterOptions struct {
	Identity IdentityService
	Entries  EntryService
	// Login is optional; without it /oauth routes are not mounted.
	Login  LoginService
	Funnel *ErrorFunnel

	BaseURL string
	Cookies CookieConfig

	// CompressionLevel enables gzip when positive.
	CompressionLevel int
	// CORSAllowedOrigins enables CORS when non-empty.
	CORSAllowedOrigins []string

	Logger *slog.Logger
}

// NewRouter assembles the middleware chain and mounts every route.
func NewRouter(opts RouterOptions) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	funnel := opts.Funnel
	if funnel == nil {
		funnel = NewErrorFunnel(ErrorFunnelOptions{Logger: logger})
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Recover(funnel))
	r.Use(Logging(logger))
	r.Use(SecurityHeaders)
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(CORS(opts.CORSAllowedOrigins))
	}
	if opts.CompressionLevel > 0 {
		r.Use(Compression(opts.CompressionLevel))
	}

	r.NotFound(funnel.NotFound)
	r.MethodNotAllowed(funnel.MethodNotAllowed)

	r.Get("/healthz", healthHandler)
	r.Head("/healthz", healthHandler)

	if opts.Login != nil {
		auth := &AuthHandlers{Svc: opts.Login, Cookies: opts.Cookies, Logger: logger}
		plain := NewPipeline(funnel)
		r.Get("/oauth", plain.Then(auth.Login))
		r.Get("/oauth/callback", plain.Then(auth.Callback))
	}

	registerEntryRoutes(r, opts, funnel, logger)
	return r
}

func registerEntryRoutes(r chi.Router, opts RouterOptions, funnel *ErrorFunnel, logger *slog.Logger) {
	st := &Stages{Identity: opts.Identity, Entries: opts.Entries, Cookies: opts.Cookies}
	h := &EntryHandlers{Svc: opts.Entries, BaseURL: opts.BaseURL, Logger: logger}

	authed := NewPipeline(funnel, st.Authenticate, st.Identify)
	owned := authed.With(st.ValidateKey, st.LoadOwnedEntry, st.Authorize)

	r.Get("/", authed.Then(h.List))
	r.Post("/", NewPipeline(funnel,
		st.Authenticate,
		DecodeBody[model.CreateEntryRequest](),
		st.Identify,
	).Then(h.Create))

	r.Get("/{key}", NewPipeline(funnel, st.ValidateKey, st.Identify, st.LoadEntry).Then(h.Redirect))
	r.Put("/{key}", authed.With(
		st.ValidateKey,
		st.LoadOwnedEntry,
		st.Authorize,
		DecodeBody[model.UpdateEntryRequest](),
	).Then(h.Update))
	r.Delete("/{key}", owned.Then(h.Delete))
	r.Get("/{key}/info", owned.Then(h.Info))
	r.Get("/{key}/stats", owned.Then(h.Stats))
}

// NewServer wraps handler in an http.Server with conservative timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

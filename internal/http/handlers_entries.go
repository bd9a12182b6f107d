package httpx

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/target/shortener/internal/domain/model"
	apperrors "github.com/target/shortener/internal/errors"
	"github.com/target/shortener/internal/service"
)

// EntryHandlers serves the entry API and redirects.
type EntryHandlers struct {
	Svc     EntryService
	BaseURL string
	Logger  *slog.Logger
}

func (h *EntryHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// List returns the caller's keys, or every key for admins.
// GET /.
func (h *EntryHandlers) List(w http.ResponseWriter, r *http.Request) error {
	keys, err := h.Svc.ListKeys(r.Context(), principalOf(r))
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusOK, keys)
	return nil
}

// Create stores a new entry owned by the caller.
// POST /.
func (h *EntryHandlers) Create(w http.ResponseWriter, r *http.Request) error {
	req, ok := BodyFromContext[model.CreateEntryRequest](r.Context())
	if !ok {
		return apperrors.Internal("create handler ran without a decoded body")
	}
	entry, err := h.Svc.Create(r.Context(), principalOf(r), req)
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusCreated, entry.View(h.BaseURL))
	return nil
}

// Redirect sends the caller to the long URL and records the visit unless it comes from a crawler.
// GET /{key}.
func (h *EntryHandlers) Redirect(w http.ResponseWriter, r *http.Request) error {
	entry, ok := EntryFromContext(r.Context())
	if !ok {
		return apperrors.Internal("redirect handler ran without an entry")
	}

	if ua := r.UserAgent(); !IsCrawler(ua) {
		err := h.Svc.RecordCall(r.Context(), entry, service.CallInput{
			Principal: principalOf(r),
			IP:        clientIP(r),
			UserAgent: ua,
		})
		if err != nil {
			return err
		}
	} else {
		h.logger().DebugContext(r.Context(), "crawler visit not recorded", "key", entry.Key, "user_agent", ua)
	}

	http.Redirect(w, r, entry.LongURL, http.StatusFound)
	return nil
}

// Update changes the long URL or persistence of an entry.
// PUT /{key}.
func (h *EntryHandlers) Update(w http.ResponseWriter, r *http.Request) error {
	req, ok := BodyFromContext[model.UpdateEntryRequest](r.Context())
	if !ok {
		return apperrors.Internal("update handler ran without a decoded body")
	}
	entry, err := h.Svc.Update(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusOK, entry.View(h.BaseURL))
	return nil
}

// Delete removes an entry and its usage records.
// DELETE /{key}.
func (h *EntryHandlers) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Info returns the loaded entry.
// GET /{key}/info.
func (h *EntryHandlers) Info(w http.ResponseWriter, r *http.Request) error {
	entry, ok := EntryFromContext(r.Context())
	if !ok {
		return apperrors.Internal("info handler ran without an entry")
	}
	WriteJSON(w, http.StatusOK, entry.View(h.BaseURL))
	return nil
}

// Stats returns usage statistics of an entry.
// GET /{key}/stats.
func (h *EntryHandlers) Stats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.Svc.Stats(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusOK, stats)
	return nil
}

// clientIP returns the caller address; RealIP has already applied forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domainauth "github.com/target/shortener/internal/domain/auth"
	"github.com/target/shortener/internal/domain/model"
	apperrors "github.com/target/shortener/internal/errors"
	"github.com/target/shortener/internal/service"
)

// Stages builds the request pipeline stages.
type Stages struct {
	Identity IdentityService
	Entries  EntryService
	Cookies  CookieConfig
}

// Authenticate requires a credential cookie accepted by the identity provider and directory.
func (s *Stages) Authenticate(_ http.ResponseWriter, r *http.Request) (*http.Request, error) {
	principal, err := s.Identity.Authenticate(r.Context(), cookieValue(r, CredentialCookie))
	if err != nil {
		return nil, err
	}
	return r.WithContext(WithPrincipal(r.Context(), principal)), nil
}

// Identify guarantees a subject id and (re)issues the anonymous id cookie. It never fails.
func (s *Stages) Identify(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
	current, _ := PrincipalFromContext(r.Context())
	principal := s.Identity.Identify(current, cookieValue(r, CredentialCookie), cookieValue(r, AnonymousIDCookie))

	s.Cookies.set(w, r, AnonymousIDCookie, principal.SubjectID, service.AnonymousIDMaxAge)
	return r.WithContext(WithPrincipal(r.Context(), principal)), nil
}

// ValidateKey rejects path keys that can never exist.
func (s *Stages) ValidateKey(_ http.ResponseWriter, r *http.Request) (*http.Request, error) {
	if !model.ValidKey(chi.URLParam(r, "key")) {
		return nil, apperrors.NotFound(msgInvalidKey)
	}
	return r, nil
}

// LoadEntry loads the entry named by the path key into the request context.
func (s *Stages) LoadEntry(_ http.ResponseWriter, r *http.Request) (*http.Request, error) {
	entry, err := s.Entries.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		return nil, err
	}
	return r.WithContext(WithEntry(r.Context(), entry)), nil
}

// LoadOwnedEntry loads the entry from storage, skipping the redirect cache, so Authorize
// sees the current owner.
func (s *Stages) LoadOwnedEntry(_ http.ResponseWriter, r *http.Request) (*http.Request, error) {
	entry, err := s.Entries.Load(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		return nil, err
	}
	return r.WithContext(WithEntry(r.Context(), entry)), nil
}

// Authorize allows admins and the entry owner.
func (s *Stages) Authorize(_ http.ResponseWriter, r *http.Request) (*http.Request, error) {
	principal, _ := PrincipalFromContext(r.Context())
	entry, ok := EntryFromContext(r.Context())
	if !ok {
		return nil, apperrors.Internal("authorize stage ran before the entry was loaded")
	}
	if err := service.Authorize(principal, entry); err != nil {
		return nil, err
	}
	return r, nil
}

// validator is implemented by request bodies that check themselves.
type validator interface {
	Validate() error
}

// DecodeBody strictly decodes and validates the JSON body into a T stored in the context.
func DecodeBody[T any, PT interface {
	*T
	validator
}]() Stage {
	return func(_ http.ResponseWriter, r *http.Request) (*http.Request, error) {
		body := PT(new(T))
		if err := DecodeJSON(r, body); err != nil {
			return nil, err
		}
		if err := body.Validate(); err != nil {
			return nil, apperrors.Validation(err.Error())
		}
		return r.WithContext(withBody(r.Context(), (*T)(body))), nil
	}
}

func principalOf(r *http.Request) *domainauth.Principal {
	p, _ := PrincipalFromContext(r.Context())
	return p
}

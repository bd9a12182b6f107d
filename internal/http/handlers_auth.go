package httpx

import (
	"log/slog"
	"net/http"

	apperrors "github.com/target/shortener/internal/errors"
	"github.com/target/shortener/internal/service"
)

// AuthHandlers runs the identity provider login.
type AuthHandlers struct {
	Svc     LoginService
	Cookies CookieConfig
	Logger  *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login redirects to the identity provider.
// GET /oauth.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) error {
	result := h.Svc.BeginLogin()
	h.Cookies.set(w, r, OAuthStateCookie, result.State, oauthStateMaxAge)
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
	return nil
}

// Callback exchanges the authorization code and stores the access token as the credential.
// GET /oauth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	token, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:          q.Get("code"),
		State:         q.Get("state"),
		ExpectedState: cookieValue(r, OAuthStateCookie),
	})
	h.Cookies.clear(w, r, OAuthStateCookie)
	if err != nil {
		h.logger().WarnContext(r.Context(), "oauth callback failed", "error", err)
		return apperrors.Validation(msgOAuthCallback)
	}

	h.Cookies.set(w, r, CredentialCookie, token.AccessToken, token.ExpiresIn)
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

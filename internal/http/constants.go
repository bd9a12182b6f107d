package httpx

import "time"

// Cookie names.
const (
	CredentialCookie  = "aad-token"
	AnonymousIDCookie = "anon-id"
	OAuthStateCookie  = "oauth_state"
)

const (
	// oauthStateMaxAge bounds the window between /oauth and its callback.
	oauthStateMaxAge = 10 * time.Minute

	// maxBodyBytes caps JSON request bodies.
	maxBodyBytes = 1 << 20
)

// Caller-facing messages.
const (
	msgInvalidKey       = "the provided key is invalid"
	msgEndpointNotFound = "the requested endpoint was not found"
	msgOAuthCallback    = "unable to process oauth callback"
	msgInternal         = "internal server error"
)

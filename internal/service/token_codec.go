package service

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/target/shortener/internal/domain/auth"
)

// credentialClaims is the payload of an access token issued by the identity provider.
type credentialClaims struct {
	ObjectID      string `json:"oid"`
	ApplicationID string `json:"appid"`
	TenantID      string `json:"tid"`
	jwt.RegisteredClaims
}

// TokenCodec decodes bearer credentials. It checks structure only; signatures are not verified.
type TokenCodec struct {
	parser *jwt.Parser
}

// NewTokenCodec constructs a TokenCodec.
func NewTokenCodec() *TokenCodec {
	return &TokenCodec{parser: jwt.NewParser()}
}

// Decode extracts the claims of credential. It returns false when the credential does not have
// two or three segments, when the payload segment is not base64url JSON, or when it carries no
// subject id.
func (c *TokenCodec) Decode(credential string) (*domainauth.Claims, bool) {
	segments := strings.Split(strings.TrimSpace(credential), ".")
	if len(segments) != 2 && len(segments) != 3 {
		return nil, false
	}

	payload, err := c.parser.DecodeSegment(segments[1])
	if err != nil {
		return nil, false
	}

	var claims credentialClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, false
	}
	if claims.ObjectID == "" {
		return nil, false
	}

	return &domainauth.Claims{
		SubjectID:     claims.ObjectID,
		ApplicationID: claims.ApplicationID,
		TenantID:      claims.TenantID,
	}, true
}

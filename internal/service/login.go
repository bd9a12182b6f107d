package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/target/shortener/internal/ports"
)

var (
	errMissingCode   = errors.New("authorization code is required")
	errStateMismatch = errors.New("state parameter does not match")
)

// LoginServiceOptions groups dependencies for LoginService.
type LoginServiceOptions struct {
	Provider ports.LoginProvider
}

// LoginService runs the identity provider's authorization-code flow. The resulting access token
// is the credential later decoded by the authenticate stage.
type LoginService struct {
	provider ports.LoginProvider
}

// NewLoginService constructs a new LoginService.
func NewLoginService(opts LoginServiceOptions) (*LoginService, error) {
	if opts.Provider == nil {
		return nil, errors.New("LoginProvider is required")
	}
	return &LoginService{provider: opts.Provider}, nil
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
}

// BeginLogin returns the provider auth URL and the state the callback must echo.
func (s *LoginService) BeginLogin() *BeginLoginResult {
	state := uuid.NewString()
	return &BeginLoginResult{
		AuthURL: s.provider.AuthCodeURL(state),
		State:   state,
	}
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code string
	// State is the value returned by the provider; ExpectedState is the one issued by BeginLogin.
	State         string
	ExpectedState string
}

// CompleteLogin checks the state and exchanges the authorization code for an access token.
func (s *LoginService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*ports.LoginToken, error) {
	if input.Code == "" {
		return nil, errMissingCode
	}
	if input.State == "" || subtle.ConstantTimeCompare([]byte(input.State), []byte(input.ExpectedState)) != 1 {
		return nil, errStateMismatch
	}

	token, err := s.provider.Exchange(ctx, input.Code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if token.AccessToken == "" {
		return nil, errors.New("identity provider returned no access token")
	}
	return &token, nil
}

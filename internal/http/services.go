package httpx

import (
	"context"

	domainauth "github.com/target/shortener/internal/domain/auth"
	"github.com/target/shortener/internal/domain/model"
	"github.com/target/shortener/internal/ports"
	"github.com/target/shortener/internal/service"
)

// IdentityService resolves the principal of a request.
type IdentityService interface {
	Authenticate(ctx context.Context, credential string) (*domainauth.Principal, error)
	Identify(current *domainauth.Principal, credential, anonymousID string) *domainauth.Principal
}

// EntryService manages entries and their usage records.
type EntryService interface {
	Create(ctx context.Context, principal *domainauth.Principal, req *model.CreateEntryRequest) (*model.Entry, error)
	Get(ctx context.Context, key string) (*model.Entry, error)
	Load(ctx context.Context, key string) (*model.Entry, error)
	RecordCall(ctx context.Context, entry *model.Entry, in service.CallInput) error
	Update(ctx context.Context, key string, req *model.UpdateEntryRequest) (*model.Entry, error)
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, principal *domainauth.Principal) ([]string, error)
	Stats(ctx context.Context, key string) (*model.EntryStats, error)
}

// LoginService drives the identity provider login.
type LoginService interface {
	BeginLogin() *service.BeginLoginResult
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*ports.LoginToken, error)
}

var (
	_ IdentityService = (*service.IdentityResolver)(nil)
	_ EntryService    = (*service.EntryService)(nil)
	_ LoginService    = (*service.LoginService)(nil)
)

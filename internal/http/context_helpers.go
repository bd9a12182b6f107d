package httpx

import (
	"context"

	domainauth "github.com/target/shortener/internal/domain/auth"
	"github.com/target/shortener/internal/domain/model"
)

// Unexported context key types avoid collisions across packages.
type (
	principalKey struct{}
	entryKey     struct{}
	bodyKey      struct{}
)

// WithPrincipal returns a child context carrying principal. A nil principal leaves ctx unchanged.
func WithPrincipal(ctx context.Context, principal *domainauth.Principal) context.Context {
	if principal == nil {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext returns the principal placed by the authenticate or identify stage.
func PrincipalFromContext(ctx context.Context) (*domainauth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*domainauth.Principal)
	return p, ok && p != nil
}

// WithEntry returns a child context carrying the loaded entry.
func WithEntry(ctx context.Context, entry *model.Entry) context.Context {
	if entry == nil {
		return ctx
	}
	return context.WithValue(ctx, entryKey{}, entry)
}

// EntryFromContext returns the entry placed by the load stage.
func EntryFromContext(ctx context.Context) (*model.Entry, bool) {
	e, ok := ctx.Value(entryKey{}).(*model.Entry)
	return e, ok && e != nil
}

func withBody(ctx context.Context, body any) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

// BodyFromContext returns the request body decoded by a DecodeBody stage.
func BodyFromContext[T any](ctx context.Context) (*T, bool) {
	b, ok := ctx.Value(bodyKey{}).(*T)
	return b, ok && b != nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/shortener/internal/domain/auth"
	apperrors "github.com/target/shortener/internal/errors"
	"github.com/target/shortener/internal/ports"
)

// AnonymousIDMaxAge is the lifetime of the anonymous id cookie.
const AnonymousIDMaxAge = 10 * 365 * 24 * time.Hour

// IdentityResolverOptions groups dependencies for IdentityResolver.
type IdentityResolverOptions struct {
	Directory ports.DirectoryClient // Required: role directory
	Codec     *TokenCodec           // Optional: defaults to NewTokenCodec()

	ApplicationID string // Required: expected appid claim
	TenantID      string // Required: expected tid claim
	AppObjectID   string // Required: service principal whose roles are read
	AdminRole     string // Optional: defaults to AdminRole

	Logger *slog.Logger
}

// IdentityResolver implements the authenticate and identify pipeline stages.
type IdentityResolver struct {
	directory   ports.DirectoryClient
	codec       *TokenCodec
	appID       string
	tenantID    string
	appObjectID string
	adminRole   string
	logger      *slog.Logger
}

// NewIdentityResolver constructs a new IdentityResolver.
func NewIdentityResolver(opts IdentityResolverOptions) (*IdentityResolver, error) {
	if opts.Directory == nil {
		return nil, errors.New("DirectoryClient is required")
	}
	if opts.ApplicationID == "" || opts.TenantID == "" {
		return nil, errors.New("application and tenant ids are required")
	}
	codec := opts.Codec
	if codec == nil {
		codec = NewTokenCodec()
	}
	adminRole := opts.AdminRole
	if adminRole == "" {
		adminRole = "AdminRole"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &IdentityResolver{
		directory:   opts.Directory,
		codec:       codec,
		appID:       opts.ApplicationID,
		tenantID:    opts.TenantID,
		appObjectID: opts.AppObjectID,
		adminRole:   adminRole,
		logger:      logger.With("component", "identity_resolver"),
	}, nil
}

// Authenticate resolves a verified principal from a bearer credential.
//
// A missing credential is Unauthorized. A credential that does not decode, was issued for another
// application or tenant, or that the directory refuses is Forbidden. A directory without the
// admin role is an Internal configuration fault.
func (r *IdentityResolver) Authenticate(ctx context.Context, credential string) (*domainauth.Principal, error) {
	if credential == "" {
		return nil, apperrors.Unauthorized("no credential provided")
	}

	claims, ok := r.codec.Decode(credential)
	if !ok {
		return nil, apperrors.Forbidden("the provided credential could not be decoded")
	}
	if claims.ApplicationID != r.appID || claims.TenantID != r.tenantID {
		return nil, apperrors.Forbidden("the provided credential was not issued for this application")
	}

	principal := &domainauth.Principal{
		SubjectID:     claims.SubjectID,
		RawCredential: credential,
		Claims:        claims,
		Verified:      true,
	}

	roles, err := r.directory.FetchRoles(ctx, r.appObjectID, credential)
	if err != nil {
		return nil, r.directoryFailure(ctx, "fetch roles", err)
	}
	admin, found := domainauth.FindRole(roles, r.adminRole)
	if !found {
		return nil, apperrors.Internal("app admin role id is null")
	}

	assignments, err := r.directory.FetchAssignments(ctx, r.appObjectID, credential)
	if err != nil {
		return nil, r.directoryFailure(ctx, "fetch role assignments", err)
	}
	principal.IsAdmin = domainauth.HasAssignment(assignments, principal.SubjectID, admin.ID)

	return principal, nil
}

// directoryFailure reports a directory error to the caller as an access denial.
func (r *IdentityResolver) directoryFailure(ctx context.Context, op string, err error) error {
	r.logger.WarnContext(ctx, "directory lookup failed", "operation", op, "error", err)
	return &apperrors.AppError{
		Code:        apperrors.ErrCodeForbidden,
		Message:     "forbidden",
		Description: "unable to verify the provided credential",
		Cause:       err,
	}
}

// Identify guarantees a stable subject id for every request. It never fails.
//
// An authenticated principal is kept as is. Otherwise the subject id is recovered from a
// decodable credential (issuer not checked), then from a well-formed anonymous id, and is freshly
// minted as a last resort. The caller persists the returned SubjectID as the anonymous id.
func (r *IdentityResolver) Identify(current *domainauth.Principal, credential, anonymousID string) *domainauth.Principal {
	if current != nil && current.SubjectID != "" {
		p := *current
		return &p
	}

	if credential != "" {
		if claims, ok := r.codec.Decode(credential); ok {
			return &domainauth.Principal{
				SubjectID:     claims.SubjectID,
				RawCredential: credential,
				Claims:        claims,
			}
		}
	}

	if validAnonymousID(anonymousID) {
		return &domainauth.Principal{SubjectID: anonymousID, Anonymous: true}
	}

	return &domainauth.Principal{SubjectID: uuid.NewString(), Anonymous: true}
}

// validAnonymousID accepts only the hyphenated 36-character uuid form.
func validAnonymousID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

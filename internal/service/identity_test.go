package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/shortener/internal/domain/auth"
	apperrors "github.com/target/shortener/internal/errors"
	mockauth "github.com/target/shortener/internal/mocks/auth"
)

const (
	testAppID    = "APP"
	testTenantID = "TEN"
	testObjectID = "sp-object-id"
)

func newTestResolver(t *testing.T, dir *mockauth.StaticDirectory) *IdentityResolver {
	t.Helper()
	r, err := NewIdentityResolver(IdentityResolverOptions{
		Directory:     dir,
		ApplicationID: testAppID,
		TenantID:      testTenantID,
		AppObjectID:   testObjectID,
		Logger:        slog.Default(),
	})
	require.NoError(t, err)
	return r
}

func credentialFor(oid, appid, tid string) string {
	return unsignedToken(`{"oid":"` + oid + `","appid":"` + appid + `","tid":"` + tid + `"}`)
}

func adminDirectory(assignments ...domainauth.RoleAssignment) *mockauth.StaticDirectory {
	return &mockauth.StaticDirectory{
		Roles: []domainauth.Role{
			{ID: "R0", Name: "Reader"},
			{ID: "R1", Name: "AdminRole"},
		},
		Assignments: assignments,
	}
}

func TestNewIdentityResolver(t *testing.T) {
	_, err := NewIdentityResolver(IdentityResolverOptions{ApplicationID: "a", TenantID: "t"})
	require.Error(t, err)

	_, err = NewIdentityResolver(IdentityResolverOptions{Directory: &mockauth.StaticDirectory{}})
	require.Error(t, err)
}

func TestIdentityResolver_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("no credential is unauthorized", func(t *testing.T) {
		r := newTestResolver(t, adminDirectory())
		_, err := r.Authenticate(ctx, "")
		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("undecodable credential is forbidden", func(t *testing.T) {
		dir := adminDirectory()
		r := newTestResolver(t, dir)
		_, err := r.Authenticate(ctx, "not-a-token")
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
		assert.Empty(t, dir.Credentials(), "directory must not be consulted")
	})

	mismatches := []struct {
		name  string
		appid string
		tid   string
	}{
		{name: "application mismatch", appid: "OTHER", tid: testTenantID},
		{name: "tenant mismatch", appid: testAppID, tid: "OTHER"},
		{name: "both missing", appid: "", tid: ""},
	}
	for _, tt := range mismatches {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t, adminDirectory())
			_, err := r.Authenticate(ctx, credentialFor("U1", tt.appid, tt.tid))
			require.Error(t, err)
			appErr, ok := apperrors.Structured(err)
			require.True(t, ok)
			assert.Equal(t, 403, appErr.HTTPStatus())
		})
	}

	t.Run("admin assignment grants admin", func(t *testing.T) {
		dir := adminDirectory(domainauth.RoleAssignment{PrincipalID: "U1", RoleID: "R1"})
		r := newTestResolver(t, dir)
		cred := credentialFor("U1", testAppID, testTenantID)

		p, err := r.Authenticate(ctx, cred)
		require.NoError(t, err)
		assert.Equal(t, "U1", p.SubjectID)
		assert.True(t, p.IsAdmin)
		assert.True(t, p.Verified)
		assert.Equal(t, cred, p.RawCredential)
		assert.Equal(t, []string{cred, cred}, dir.Credentials(), "directory is called with the caller credential")
	})

	t.Run("assignment toggles admin", func(t *testing.T) {
		dir := adminDirectory(domainauth.RoleAssignment{PrincipalID: "U1", RoleID: "R0"})
		r := newTestResolver(t, dir)
		cred := credentialFor("U1", testAppID, testTenantID)

		p, err := r.Authenticate(ctx, cred)
		require.NoError(t, err)
		assert.False(t, p.IsAdmin)

		dir.Assignments = append(dir.Assignments, domainauth.RoleAssignment{PrincipalID: "U1", RoleID: "R1"})
		p, err = r.Authenticate(ctx, cred)
		require.NoError(t, err)
		assert.True(t, p.IsAdmin)
	})

	t.Run("admin role of another principal does not apply", func(t *testing.T) {
		r := newTestResolver(t, adminDirectory(domainauth.RoleAssignment{PrincipalID: "U2", RoleID: "R1"}))
		p, err := r.Authenticate(ctx, credentialFor("U1", testAppID, testTenantID))
		require.NoError(t, err)
		assert.False(t, p.IsAdmin)
	})

	t.Run("missing admin role is internal", func(t *testing.T) {
		dir := &mockauth.StaticDirectory{Roles: []domainauth.Role{{ID: "R0", Name: "Reader"}}}
		r := newTestResolver(t, dir)
		_, err := r.Authenticate(ctx, credentialFor("U1", testAppID, testTenantID))
		require.Error(t, err)
		assert.True(t, apperrors.IsInternal(err))
		_, structured := apperrors.Structured(err)
		assert.False(t, structured)
	})

	t.Run("role lookup failure is forbidden", func(t *testing.T) {
		r := newTestResolver(t, &mockauth.StaticDirectory{Fail: true})
		_, err := r.Authenticate(ctx, credentialFor("U1", testAppID, testTenantID))
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
		assert.ErrorIs(t, err, mockauth.ErrDirectoryUnavailable)
	})

	t.Run("assignment lookup failure is forbidden", func(t *testing.T) {
		dir := adminDirectory()
		dir.FetchAssignmentsFunc = func(context.Context, string, string) ([]domainauth.RoleAssignment, error) {
			return nil, errors.New("503 service unavailable")
		}
		r := newTestResolver(t, dir)
		_, err := r.Authenticate(ctx, credentialFor("U1", testAppID, testTenantID))
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("custom admin role name", func(t *testing.T) {
		dir := &mockauth.StaticDirectory{
			Roles:       []domainauth.Role{{ID: "X", Name: "Operators"}},
			Assignments: []domainauth.RoleAssignment{{PrincipalID: "U1", RoleID: "X"}},
		}
		r, err := NewIdentityResolver(IdentityResolverOptions{
			Directory:     dir,
			ApplicationID: testAppID,
			TenantID:      testTenantID,
			AdminRole:     "Operators",
		})
		require.NoError(t, err)
		p, err := r.Authenticate(ctx, credentialFor("U1", testAppID, testTenantID))
		require.NoError(t, err)
		assert.True(t, p.IsAdmin)
	})
}

func TestIdentityResolver_Identify(t *testing.T) {
	r := newTestResolver(t, adminDirectory())

	t.Run("authenticated principal is kept", func(t *testing.T) {
		current := &domainauth.Principal{SubjectID: "U1", IsAdmin: true, Verified: true}
		p := r.Identify(current, "ignored", "ignored")
		assert.Equal(t, "U1", p.SubjectID)
		assert.True(t, p.IsAdmin)
		assert.NotSame(t, current, p)
	})

	t.Run("decodable credential of another tenant recovers subject", func(t *testing.T) {
		p := r.Identify(nil, credentialFor("U9", "OTHER", "OTHER"), uuid.NewString())
		assert.Equal(t, "U9", p.SubjectID)
		assert.False(t, p.IsAdmin)
		assert.False(t, p.Anonymous)
		assert.False(t, p.Verified)
	})

	t.Run("existing anonymous id is reused", func(t *testing.T) {
		anon := uuid.NewString()
		p := r.Identify(nil, "garbage", anon)
		assert.Equal(t, anon, p.SubjectID)
		assert.True(t, p.Anonymous)
	})

	t.Run("fresh id is minted without cookies", func(t *testing.T) {
		first := r.Identify(nil, "", "")
		second := r.Identify(nil, "", "")
		_, err := uuid.Parse(first.SubjectID)
		require.NoError(t, err)
		assert.True(t, first.Anonymous)
		assert.NotEqual(t, first.SubjectID, second.SubjectID)

		again := r.Identify(nil, "", first.SubjectID)
		assert.Equal(t, first.SubjectID, again.SubjectID)
	})

	t.Run("malformed anonymous id is replaced", func(t *testing.T) {
		p := r.Identify(nil, "", "not-a-uuid")
		assert.NotEqual(t, "not-a-uuid", p.SubjectID)
	})

	t.Run("non-canonical uuid spellings are replaced", func(t *testing.T) {
		canonical := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
		for _, anon := range []string{
			"urn:uuid:" + canonical,
			"{" + canonical + "}",
			"6ba7b8109dad11d180b400c04fd430c8",
		} {
			p := r.Identify(nil, "", anon)
			assert.NotEqual(t, anon, p.SubjectID, anon)
			assert.Len(t, p.SubjectID, 36, anon)
		}

		p := r.Identify(nil, "", canonical)
		assert.Equal(t, canonical, p.SubjectID)
	})

	t.Run("empty principal is treated as absent", func(t *testing.T) {
		p := r.Identify(&domainauth.Principal{}, "", "")
		assert.NotEmpty(t, p.SubjectID)
	})
}

func TestAnonymousIDMaxAge(t *testing.T) {
	assert.Equal(t, int64(315360000000), AnonymousIDMaxAge.Milliseconds())
	assert.Equal(t, 315360000, int(AnonymousIDMaxAge/time.Second))
}

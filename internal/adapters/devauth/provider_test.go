package devauth

import (
	"context"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/shortener/internal/domain/auth"
)

func newDevProvider(t *testing.T, admins ...string) *Provider {
	t.Helper()
	prov, err := NewProvider(Config{
		UserID:        "dev-user",
		ApplicationID: "dev-app",
		TenantID:      "dev-tenant",
		AdminRole:     "AdminRole",
		AdminIDs:      admins,
	})
	require.NoError(t, err)
	return prov
}

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(Config{})
	require.Error(t, err)

	_, err = NewProvider(Config{UserID: "u", AdminRole: "AdminRole"})
	require.Error(t, err)
}

func TestProvider_AuthCodeURLAndExchange(t *testing.T) {
	prov := newDevProvider(t)

	authURL := prov.AuthCodeURL("s 1")
	assert.True(t, strings.HasPrefix(authURL, "/oauth/callback?code=dev&state="))
	assert.Contains(t, authURL, "s+1")

	tok, err := prov.Exchange(context.Background(), "dev")
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(tok.AccessToken, ".")))

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok.AccessToken, claims)
	require.NoError(t, err)
	assert.Equal(t, "dev-user", claims["oid"])
	assert.Equal(t, "dev-app", claims["appid"])
	assert.Equal(t, "dev-tenant", claims["tid"])
}

func TestProvider_Directory(t *testing.T) {
	prov := newDevProvider(t, "admin-1", "admin-2")
	ctx := context.Background()

	roles, err := prov.FetchRoles(ctx, "any", "cred")
	require.NoError(t, err)
	role, ok := domainauth.FindRole(roles, "AdminRole")
	require.True(t, ok)

	assignments, err := prov.FetchAssignments(ctx, "any", "cred")
	require.NoError(t, err)
	assert.True(t, domainauth.HasAssignment(assignments, "admin-2", role.ID))
	assert.False(t, domainauth.HasAssignment(assignments, "dev-user", role.ID))

	_, err = prov.FetchRoles(ctx, "any", "")
	require.Error(t, err)
}

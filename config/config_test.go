package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "single service - http",
			input:    "http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:     "http and maintenance with whitespace",
			input:    " http , maintenance ",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true, ServiceModeMaintenance: true},
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only separators",
			input:       ",,",
			expectError: true,
		},
		{
			name:        "unknown service",
			input:       "http,scheduler",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServices(tt.input)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAppConfig_EnvDefaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}))
	cfg.Sanitize()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, AuthModeOAuth, cfg.Auth.Mode)
	assert.Equal(t, DefaultAdminRoleName, cfg.Auth.OAuth.AdminRole)
	assert.Equal(t, "https://graph.microsoft.com/v1.0", cfg.Auth.OAuth.DirectoryURL)
	assert.Equal(t, 10, cfg.Keys.Candidates)
	assert.Equal(t, 7, cfg.Keys.Length)
	assert.Equal(t, 7, cfg.Keys.SeedMinLength)
	assert.Equal(t, 32, cfg.Keys.SeedMaxLength)
	assert.Equal(t, 15*time.Minute, cfg.Maintenance.Interval)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.True(t, cfg.IsHTTPServerEnabled())
	assert.True(t, cfg.IsMaintenanceEnabled())
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	var cfg AppConfig
	err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{
		"AUTH_MODE":                 "mock",
		"DEV_AUTH_ADMIN_IDS":        "u1;u2",
		"HTTP_CORS_ALLOWED_ORIGINS": "https://a.example, ,https://b.example",
		"CACHE_BACKEND":             "Memory",
		"SERVICES":                  "maintenance",
		"KEYS_LENGTH":               "40",
	}})
	require.NoError(t, err)
	cfg.Sanitize()

	assert.Equal(t, AuthModeMock, cfg.Auth.Mode)
	assert.Equal(t, []string{"u1", "u2"}, cfg.Auth.DevAuth.AdminIDs)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.False(t, cfg.IsHTTPServerEnabled())
	assert.Equal(t, MaxKeyLength, cfg.Keys.Length)
	assert.Equal(t, MaxKeyLength, cfg.Keys.SeedMinLength)
}

func TestAppConfig_Validate(t *testing.T) {
	t.Run("oauth requires identifiers", func(t *testing.T) {
		cfg := AppConfig{Services: "http", Auth: AuthConfig{Mode: AuthModeOAuth}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OAUTH_CLIENT_ID")
		assert.Contains(t, err.Error(), "OAUTH_APP_OBJECT_ID")
	})

	t.Run("mock outside dev is rejected", func(t *testing.T) {
		cfg := AppConfig{Services: "http", Auth: AuthConfig{Mode: AuthModeMock}}
		require.Error(t, cfg.Validate())
	})

	t.Run("complete oauth config", func(t *testing.T) {
		cfg := AppConfig{Services: "http", Auth: AuthConfig{Mode: AuthModeOAuth, OAuth: OAuthConfig{
			ClientID: "app", TenantID: "ten", AppObjectID: "obj",
		}}}
		require.NoError(t, cfg.Validate())
	})
}

func TestOAuthConfig_IssuerURL(t *testing.T) {
	o := OAuthConfig{Authority: "https://login.microsoftonline.com/{tenant}/v2.0", TenantID: "ten"}
	assert.Equal(t, "https://login.microsoftonline.com/ten/v2.0", o.IssuerURL())
}

func TestKeyConfig_Sanitize(t *testing.T) {
	k := KeyConfig{Candidates: 0, Length: 1, SeedMinLength: 0, SeedMaxLength: 0, InsertAttempts: 0}
	k.Sanitize()
	assert.Equal(t, 1, k.Candidates)
	assert.Equal(t, MinKeyLength, k.Length)
	assert.Equal(t, MinKeyLength, k.SeedMinLength)
	assert.Equal(t, MinKeyLength+1, k.SeedMaxLength)
	assert.Equal(t, 1, k.InsertAttempts)
}

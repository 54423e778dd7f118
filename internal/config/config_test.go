package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "school_newsroom", cfg.Database.Name)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 10, cfg.RateLimit.Limit)
	assert.Empty(t, cfg.Broker.URL)
	assert.Empty(t, cfg.RateLimit.RedisAddr)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "9090")
	t.Setenv("INVITE_TTL", "24h")
	t.Setenv("RATE_LIMIT_REQUESTS", "3")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.InviteTTL)
	assert.Equal(t, 3, cfg.RateLimit.Limit)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns, "unparsable values fall back to the default")
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("RATE_LIMIT_REQUESTS", "0")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "RATE_LIMIT_REQUESTS")
}

func TestLoadDotEnvs_Priority(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_ENV", "test")
	os.Unsetenv("NEWSROOM_TEST_VALUE")
	os.Unsetenv("NEWSROOM_TEST_SHARED")
	t.Cleanup(func() {
		os.Unsetenv("NEWSROOM_TEST_VALUE")
		os.Unsetenv("NEWSROOM_TEST_SHARED")
	})

	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	write(".env", "NEWSROOM_TEST_VALUE=base\nNEWSROOM_TEST_SHARED=shared\n")
	write(".env.test", "NEWSROOM_TEST_VALUE=env\n")
	write(".env.test.local", "NEWSROOM_TEST_VALUE=local\n")

	LoadDotEnvs(dir)

	assert.Equal(t, "local", os.Getenv("NEWSROOM_TEST_VALUE"))
	assert.Equal(t, "shared", os.Getenv("NEWSROOM_TEST_SHARED"))
}

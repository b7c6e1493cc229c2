package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "backoffice-gateway", cfg.App.Name)
	assert.Equal(t, "127.0.0.1:8090", cfg.App.Addr())
	assert.Equal(t, StoreBackendFile, cfg.Store.Backend)
	assert.Equal(t, 30*time.Second, cfg.Session.RenewBuffer())
	assert.Equal(t, 15*time.Second, cfg.Remote.Timeout())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CREDENTIAL_STORE_BACKEND", StoreBackendRedis)
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("SESSION_RENEW_BUFFER_SECONDS", "90")
	t.Setenv("COMMERCE_API_BASE_URL", "https://api.example.com/v1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreBackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, 90*time.Second, cfg.Session.RenewBuffer())
	assert.Equal(t, "https://api.example.com/v1", cfg.Remote.BaseURL)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("CREDENTIAL_STORE_BACKEND", "etcd")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CREDENTIAL_STORE_BACKEND")
}

func TestRenewBufferDisabledWhenNonPositive(t *testing.T) {
	assert.Equal(t, time.Duration(0), SessionConfig{RenewBufferSeconds: 0}.RenewBuffer())
	assert.Equal(t, time.Duration(0), SessionConfig{RenewBufferSeconds: -5}.RenewBuffer())
}

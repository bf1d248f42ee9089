package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FINANCE_AUTH_JWTSECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "data/finance.db", cfg.Database.Path)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins())
	assert.Empty(t, cfg.Storage.Bucket)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FINANCE_AUTH_JWTSECRET", "abc")
	t.Setenv("FINANCE_AUTH_TOKENTTLMINUTES", "5")
	t.Setenv("FINANCE_CORS_ALLOWEDORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("FINANCE_STORAGE_BUCKET", "statements")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.TokenTTL())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
	assert.Equal(t, "statements", cfg.Storage.Bucket)
	assert.Equal(t, 15*time.Minute, cfg.ExportURLTTL())
}

func TestValidate(t *testing.T) {
	var cfg Config
	cfg.Auth.TokenTTLMinutes = 30
	assert.EqualError(t, cfg.Validate(), "auth jwt secret is required")

	cfg.Auth.JWTSecret = "x"
	cfg.Auth.TokenTTLMinutes = 0
	assert.EqualError(t, cfg.Validate(), "auth token ttl must be positive")

	cfg.Auth.TokenTTLMinutes = 1
	cfg.Storage.Bucket = "b"
	assert.EqualError(t, cfg.Validate(), "storage url ttl must be positive")

	cfg.Storage.URLTTLMinutes = 1
	assert.NoError(t, cfg.Validate())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CRUDSTORE_JWT_SECRET", secret)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "crudstore-backend", cfg.JWTIssuer)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.AllowedOrigins())
	assert.True(t, cfg.SeedDemoData)
	assert.Empty(t, cfg.PGDSN)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CRUDSTORE_JWT_SECRET="+secret+"\nCRUDSTORE_HTTP_ADDR=:9999\n"), 0o600))
	t.Setenv("CRUDSTORE_HTTP_ADDR", ":7000")
	t.Cleanup(func() { _ = os.Unsetenv("CRUDSTORE_JWT_SECRET") })

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr, "environment must win over the file")
	assert.Equal(t, secret, cfg.JWTSecret)
}

func TestLoadSecretFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt_secret")
	require.NoError(t, os.WriteFile(path, []byte(secret+"\n"), 0o600))
	t.Setenv("CRUDSTORE_JWT_SECRET", "")
	t.Setenv("CRUDSTORE_JWT_SECRET_FILE", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, secret, cfg.JWTSecret)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("CRUDSTORE_JWT_SECRET", "")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "JWT secret is required")

	t.Setenv("CRUDSTORE_JWT_SECRET", "short")
	_, err = Load("")
	assert.ErrorContains(t, err, "at least 32 bytes")
}

func TestAllowedOrigins(t *testing.T) {
	c := Config{CORSAllowedOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.AllowedOrigins())
}

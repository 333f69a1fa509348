package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DATABASE", "registry.db")
	t.Setenv("S3_BUCKET", "datapackages")
	t.Setenv("JWT_SECRET", "s3cret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "metadata", cfg.KeyPrefix)
	assert.Equal(t, 15*time.Minute, cfg.SignedURLTTL)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "datapackage-registry", cfg.JWTIssuer)
	assert.False(t, cfg.OAuthEnabled())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("SIGNED_URL_TTL", "2m")
	t.Setenv("S3_USE_PATH_STYLE", "true")
	t.Setenv("DB_CONNECTION_LIMIT", "notanumber")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, 2*time.Minute, cfg.SignedURLTTL)
	assert.True(t, cfg.S3UsePathStyle)
	assert.Equal(t, 5, cfg.DBConnectionLimit)
}

func TestLoadRequired(t *testing.T) {
	for _, missing := range []string{"DB_DATABASE", "S3_BUCKET", "JWT_SECRET"} {
		t.Run(missing, func(t *testing.T) {
			setRequired(t)
			t.Setenv(missing, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), missing)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_DATABASE=file.db\nS3_BUCKET=b\nJWT_SECRET=x\nOAUTH_CLIENT_ID=id\nOAUTH_AUTH_URL=https://idp/auth\nOAUTH_TOKEN_URL=https://idp/token\nOAUTH_USERINFO_URL=https://idp/me\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	for _, k := range []string{"DB_DATABASE", "S3_BUCKET", "JWT_SECRET", "OAUTH_CLIENT_ID", "OAUTH_AUTH_URL", "OAUTH_TOKEN_URL", "OAUTH_USERINFO_URL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file.db", cfg.DBDatabase)
	assert.True(t, cfg.OAuthEnabled())
}

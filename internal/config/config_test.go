package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("file values", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		path := writeConfig(t, `
[server]
port = 9000

[database]
host = "db"
name = "reco"

[auth]
jwt_secret = "from-file"
access_ttl = "15m"
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "db", cfg.Database.Host)
		assert.Equal(t, "reco", cfg.Database.Name)
		assert.Equal(t, "5432", cfg.Database.Port)
		assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL.Duration)
		assert.Equal(t, 30*24*time.Hour, cfg.Auth.RefreshTTL.Duration)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := writeConfig(t, "[auth]\njwt_secret = \"from-file\"\n")
		t.Setenv("JWT_SECRET", "from-env")
		t.Setenv("PORT", "7070")
		t.Setenv("ACCESS_TOKEN_TTL", "2h")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
		t.Setenv("INSTAGRAM_APP_ID", "ig-app")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, 2*time.Hour, cfg.Auth.AccessTTL.Duration)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, "ig-app", cfg.Instagram.AppID)
		assert.Equal(t, "@daily", cfg.Jobs.RefreshInstagram)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt_secret")
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("PORT", "eighty")
		_, err := Load("")
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
	})
}

func TestDSN(t *testing.T) {
	d := Default().Database
	assert.Equal(t, "host=localhost user=postgres password=postgres dbname=buyareco port=5432 sslmode=disable", d.DSN())

	d.URL = "postgres://u:p@h/db"
	assert.Equal(t, "postgres://u:p@h/db", d.DSN())
}

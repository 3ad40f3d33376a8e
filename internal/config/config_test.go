package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/room-reviews/internal/config"
)

// chdirTemp runs the test in an empty directory so no stray .env or
// room-reviews.yaml is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("ROOMS_DB_DRIVER", "sqlite3")
	t.Setenv("ROOMS_DB_DSN", "file:test.db")
	t.Setenv("ROOMS_AUTH_JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "room_reviews", cfg.DB.Name)
	assert.Equal(t, "room-reviews", cfg.Auth.Issuer)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Authz.AdminOverride)
	assert.Equal(t, "local", cfg.Upload.Driver)
	assert.Equal(t, "./uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, "/uploads/", cfg.Upload.PublicBaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Overrides(t *testing.T) {
	chdirTemp(t)
	setRequired(t)
	t.Setenv("ROOMS_HTTP_ADDR", ":9090")
	t.Setenv("ROOMS_AUTH_TOKEN_TTL", "1h")
	t.Setenv("ROOMS_AUTHZ_ADMIN_OVERRIDE", "true")
	t.Setenv("ROOMS_UPLOAD_DRIVER", "s3")
	t.Setenv("ROOMS_UPLOAD_S3_BUCKET", "rooms")
	t.Setenv("ROOMS_UPLOAD_MAX_BYTES", "1024")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Authz.AdminOverride)
	assert.Equal(t, "rooms", cfg.Upload.S3.Bucket)
	assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	env := "ROOMS_DB_DRIVER=sqlite3\nROOMS_DB_DSN=file:dotenv.db\nROOMS_AUTH_JWT_SECRET=from-dotenv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	// godotenv sets process variables; register them for cleanup.
	for _, k := range []string{"ROOMS_DB_DRIVER", "ROOMS_DB_DSN", "ROOMS_AUTH_JWT_SECRET"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "file:dotenv.db", cfg.DB.DSN)
	assert.Equal(t, "from-dotenv", cfg.Auth.JWTSecret)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing driver": {"ROOMS_DB_DRIVER": ""},
		"unknown driver": {"ROOMS_DB_DRIVER": "oracle"},
		"missing dsn":    {"ROOMS_DB_DSN": ""},
		"missing secret": {"ROOMS_AUTH_JWT_SECRET": ""},
		"bad ttl":        {"ROOMS_AUTH_TOKEN_TTL": "soon"},
		"negative ttl":   {"ROOMS_AUTH_TOKEN_TTL": "-1h"},
		"s3 no bucket":   {"ROOMS_UPLOAD_DRIVER": "s3"},
		"gridfs on sql":  {"ROOMS_UPLOAD_DRIVER": "gridfs"},
		"zero max bytes": {"ROOMS_UPLOAD_MAX_BYTES": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			chdirTemp(t)
			setRequired(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			require.Error(t, err)
		})
	}
}

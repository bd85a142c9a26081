package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "session_token", cfg.Session.CookieName)
	assert.Equal(t, 24, cfg.JWT.AccessTokenTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadAllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		JWT:         JWTConfig{SecretKey: defaultJWTSecret},
		Storage:     StorageConfig{Driver: "local"},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "a-real-secret"
	assert.Error(t, cfg.Validate(), "database password still missing")

	cfg.Database.Password = "pw"
	assert.NoError(t, cfg.Validate())
}

func TestValidateStorageDriver(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Driver: "ftp"}}
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = "gcs"
	assert.Error(t, cfg.Validate(), "bucket required")

	cfg.GCS.Bucket = "uploads"
	assert.NoError(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Database: "x", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=x sslmode=disable TimeZone=UTC", d.DSN())
}

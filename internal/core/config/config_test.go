package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.App.HTTP.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 1440, cfg.JWT.TTLMin)
	assert.Equal(t, "token", cfg.JWT.CookieName)
	assert.Equal(t, "memory", cfg.Mongo.Driver)
	assert.False(t, cfg.Production())
}

func TestLoadFileAndEnvOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
app:
  env: production
  http:
    port: 8080
mongo:
  uri: mongodb://db:27017
  database: market
cors:
  allowOrigins:
    - https://admin.example.com
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))
	t.Setenv("APP_JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.HTTP.Port)
	assert.True(t, cfg.Production())
	assert.Equal(t, "mongo", cfg.Mongo.Driver)
	assert.Equal(t, "market", cfg.Mongo.Database)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, []string{"https://admin.example.com"}, cfg.CORS.AllowOrigins)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

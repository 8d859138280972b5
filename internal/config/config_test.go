package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}

	assert.Equal(t, 8080, cfg.Server.GetRESTPort())
	assert.Equal(t, "mongo", cfg.Storage.GetBackend())
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.GetURI())
	assert.Equal(t, "casino", cfg.Mongo.GetDatabase())
	assert.Equal(t, "", cfg.Redis.GetAddr())
	assert.Equal(t, "", cfg.Nats.GetURL())
	assert.Equal(t, "", cfg.JWT.GetSecret())
	assert.Equal(t, time.Hour, cfg.JWT.GetExpiration())
	assert.Equal(t, "Comida Basura", cfg.Shop.GetDefaultSkin())
}

func TestEnvFallback(t *testing.T) {
	t.Setenv("CASINO_REST_PORT", "9090")
	t.Setenv("CASINO_STORAGE", "memory")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("JWT_EXPIRATION", "15")

	cfg := &Config{}
	assert.Equal(t, 9090, cfg.Server.GetRESTPort())
	assert.Equal(t, "memory", cfg.Storage.GetBackend())
	assert.Equal(t, "env-secret", cfg.JWT.GetSecret())
	assert.Equal(t, 15*time.Minute, cfg.JWT.GetExpiration())
}

func TestConfigWinsOverEnv(t *testing.T) {
	t.Setenv("CASINO_REST_PORT", "9090")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg := &Config{
		Server: ServerConfig{RESTPort: 7070},
		JWT:    JWTConfig{Secret: "file-secret"},
	}
	assert.Equal(t, 7070, cfg.Server.GetRESTPort())
	assert.Equal(t, "file-secret", cfg.JWT.GetSecret())
}

func TestInvalidEnvValuesIgnored(t *testing.T) {
	t.Setenv("CASINO_REST_PORT", "not-a-port")
	t.Setenv("JWT_EXPIRATION", "-5")

	cfg := &Config{}
	assert.Equal(t, 8080, cfg.Server.GetRESTPort())
	assert.Equal(t, time.Hour, cfg.JWT.GetExpiration())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := []byte(`
server:
  rest_port: 8443
storage:
  backend: maria
maria:
  host: db.internal
  port: 3306
  database: casino
jwt:
  secret: yaml-secret
  expiration_minutes: 30
shop:
  default_skin: Inicial
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8443, cfg.Server.GetRESTPort())
	assert.Equal(t, "maria", cfg.Storage.GetBackend())
	assert.Equal(t, "db.internal", cfg.Maria.Host)
	assert.Equal(t, "yaml-secret", cfg.JWT.GetSecret())
	assert.Equal(t, 30*time.Minute, cfg.JWT.GetExpiration())
	assert.Equal(t, "Inicial", cfg.Shop.GetDefaultSkin())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadEmptyPathReturnsEmptyConfig(t *testing.T) {
	t.Setenv("CASINO_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.GetRESTPort())
}

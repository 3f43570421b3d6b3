package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/racha-stats-service/internal/config"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// clearSecrets makes sure the developer's shell does not leak into a test.
func clearSecrets(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_POSTGRES_USER", "APP_POSTGRES_PASSWORD", "APP_POSTGRES_DB",
		"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"DB_USER", "DB_PASSWORD", "DB_NAME",
		"APP_REDIS_URL", "REDIS_URL", "APP_REDIS_ENABLED",
	} {
		t.Setenv(k, "")
	}
}

const baseYAML = `
app:
  name: racha-stats-service
  version: 0.1.0
  env: test
  port: 18080

logger:
  level: info
  format: json
  output_target: stdout
  time_format: rfc3339

postgres:
  host: 127.0.0.1
  port: 5432
  sslmode: disable
  max_conns: 5
  min_conns: 1
`

func TestConfigLoad_FromYAMLAndEnv(t *testing.T) {
	clearSecrets(t)
	path := writeTempConfig(t, baseYAML)

	// Provide required secrets via ENV using the canonical APP_* names
	t.Setenv("APP_POSTGRES_USER", "testuser")
	t.Setenv("APP_POSTGRES_PASSWORD", "testpass")
	t.Setenv("APP_POSTGRES_DB", "testdb")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 18080, cfg.App.Port)
	assert.Equal(t, "testuser", cfg.Postgres.User)
	assert.Equal(t, "testpass", cfg.Postgres.Password)
	assert.Equal(t, "testdb", cfg.Postgres.DBName)
	assert.Equal(t, "127.0.0.1", cfg.Postgres.Host)
	assert.Equal(t, int32(5), cfg.Postgres.MaxConns)

	// defaults for sections missing from the file
	assert.Equal(t, 15, cfg.App.ShutdownTimeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 300, cfg.Redis.TTL)
	assert.Equal(t, "*/15 * * * *", cfg.Scheduler.WarmCron)
}

func TestConfigLoad_DockerStyleSecrets(t *testing.T) {
	clearSecrets(t)
	path := writeTempConfig(t, baseYAML)
	t.Setenv("POSTGRES_USER", "pg")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("DB_NAME", "rachas")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pg", cfg.Postgres.User)
	assert.Equal(t, "rachas", cfg.Postgres.DBName)
}

func TestConfigLoad_DotEnvNextToConfig(t *testing.T) {
	clearSecrets(t)
	path := writeTempConfig(t, baseYAML)
	env := "APP_POSTGRES_USER=fromfile\nAPP_POSTGRES_PASSWORD=pw\nAPP_POSTGRES_DB=db\n"
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte(env), 0o644))
	t.Cleanup(func() {
		for _, k := range []string{"APP_POSTGRES_USER", "APP_POSTGRES_PASSWORD", "APP_POSTGRES_DB"} {
			_ = os.Unsetenv(k)
		}
	})
	// godotenv does not override variables that already exist, even when empty
	for _, k := range []string{"APP_POSTGRES_USER", "APP_POSTGRES_PASSWORD", "APP_POSTGRES_DB"} {
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.Postgres.User)
}

func TestConfigLoad_MissingRequiredEnvFails(t *testing.T) {
	clearSecrets(t)
	path := writeTempConfig(t, baseYAML)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestConfigLoad_RedisURLRequiredWhenEnabled(t *testing.T) {
	clearSecrets(t)
	path := writeTempConfig(t, baseYAML+`
redis:
  enabled: true
`)
	t.Setenv("APP_POSTGRES_USER", "u")
	t.Setenv("APP_POSTGRES_PASSWORD", "p")
	t.Setenv("APP_POSTGRES_DB", "d")

	_, err := config.Load(path)
	require.Error(t, err)

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestConfigLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

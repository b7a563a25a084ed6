package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "inventory.db", cfg.Database.DSN)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "inventory:changes", cfg.Redis.Channel)
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Seed.Count)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	yaml := "http:\n  addr: \":9090\"\ndatabase:\n  dsn: stock.db\nredis:\n  addr: localhost:6379\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	t.Setenv("INVENTORY_DATABASE_DSN", "override.db")
	t.Setenv("INVENTORY_HTTP_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "override.db", cfg.Database.DSN)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("INVENTORY_SEED_COUNT=3\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("INVENTORY_SEED_COUNT") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Seed.Count)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv("INVENTORY_DATABASE_DRIVER", "mysql")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load("does-not-exist.yaml")
	require.Error(t, err)
}

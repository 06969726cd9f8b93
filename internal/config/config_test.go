package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "APP_PORT", "API_KEY", "API_KEY_HASH",
		"REDIS_ADDR", "REDIS_PASSWORD", "DATABASE_DSN", "TAROT_CSV",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, []string{"data/tarot.csv", "data/tarot_sample.csv"}, cfg.DeckPaths)
	assert.Empty(t, cfg.APIKey)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("API_KEY", "k")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TAROT_CSV", "a.csv, b.csv ,")

	cfg := Load()
	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, []string{"a.csv", "b.csv"}, cfg.DeckPaths)
}

func TestLoadTOMLFileWithEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_port = "7070"
api_key = "from-file"
deck_paths = ["file.csv"]
`), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_KEY", "from-env")

	cfg := Load()
	assert.Equal(t, "7070", cfg.AppPort)
	assert.Equal(t, "from-env", cfg.APIKey, "environment wins over file")
	assert.Equal(t, []string{"file.csv"}, cfg.DeckPaths)
}

func TestLoadUnreadableConfigFileFallsBackToEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("APP_PORT", "9091")

	cfg := Load()
	assert.Equal(t, "9091", cfg.AppPort)
}

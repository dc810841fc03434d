package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 24*time.Hour, cfg.SnapshotStaleness())
	assert.Equal(t, 5*time.Minute, cfg.ResultCacheTTL())
	assert.Equal(t, 10*time.Minute, cfg.DocumentCacheTTL())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_address: \":9000\"\nprompts_table: file-table\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PROMPTS_TABLE", "env-table")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ServerAddress)
	assert.Equal(t, "env-table", cfg.PromptsTable, "environment wins over the file")
}

func TestLoadConfig_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("REDIS_ADDR", "")

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestValidate_RejectsNonPositiveStaleness(t *testing.T) {
	cfg := &Config{Environment: "development", SnapshotStalenessHours: 0}
	assert.Error(t, cfg.Validate())
}

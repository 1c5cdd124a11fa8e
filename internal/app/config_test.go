package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 20*time.Second, cfg.LLMTimeout())
	m := cfg.Mentor()
	assert.Equal(t, 10, m.ContextTurns)
	assert.Equal(t, 40, m.HistoryCap)
	assert.Equal(t, 10, m.MinReplyChars)
	assert.True(t, cfg.SeedOnStart)
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ATLAS_TEST_UNUSED=1\nLLM_MODEL=from-file\nCORS_ALLOW_ORIGINS=https://a.example,https://b.example\n"), 0o600))
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("MENTOR_CONTEXT_TURNS", "6")
	t.Setenv("LLM_MODEL", "from-env")
	t.Cleanup(func() {
		os.Unsetenv("ATLAS_TEST_UNUSED")
		os.Unsetenv("CORS_ALLOW_ORIGINS")
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DB().Driver)
	assert.Equal(t, 6, cfg.Mentor().ContextTurns)
	assert.Equal(t, "from-env", cfg.LLMModel, "process env wins over the file")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
}

func TestConfigValidate(t *testing.T) {
	base := Config{Port: 8080, DBDriver: "sqlite", LLMTimeoutSeconds: 20}
	require.NoError(t, base.Validate())

	bad := base
	bad.DBDriver = "mysql"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Port = 70000
	assert.Error(t, bad.Validate())

	bad = base
	bad.LLMTimeoutSeconds = 0
	assert.Error(t, bad.Validate())
}

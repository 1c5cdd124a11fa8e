package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootHasSubcommands(t *testing.T) {
	root := NewRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["seed"])
	assert.NotNil(t, root.RunE, "bare invocation serves")
}

func TestSeedCommandIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "atlas.db"))
	t.Setenv("LOG_MODE", "test")
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("REDIS_ADDR", "")

	run := func() string {
		root := NewRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs([]string{"seed", "--env-file", filepath.Join(dir, "none.env")})
		require.NoError(t, root.Execute())
		return out.String()
	}

	first := run()
	assert.Contains(t, first, "52 missions")
	assert.Contains(t, first, "skipped=false")

	second := run()
	assert.True(t, strings.Contains(second, "skipped=true"), second)

	root := NewRootCmd()
	root.SetArgs([]string{"migrate", "--env-file", filepath.Join(dir, "none.env")})
	require.NoError(t, root.Execute())
}

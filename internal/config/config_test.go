package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mth/yeti-sub001/internal/codegen"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, codegen.DefaultRuntime(), cfg.Runtime)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "code", cfg.Listing)
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
runtime:
  no_match: my/rt/Fail.noMatch
  tag_class: my/rt/Tagged
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, "my/rt/Fail.noMatch", cfg.Runtime.NoMatch)
	assert.Equal(t, "my/rt/Tagged", cfg.Runtime.TagClass)
	assert.Equal(t, codegen.DefaultRuntime().IsEmpty, cfg.Runtime.IsEmpty)
	assert.Equal(t, "code", cfg.Listing)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"bad yaml", "runtime: [", "decoding yaml"},
		{"bad level", "log_level: loud", `unknown log level "loud"`},
		{"bad listing", "listing: html", `unknown listing mode "html"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "casec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listing: full\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "full", cfg.Listing)

	t.Setenv(EnvConfig, path)
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "full", cfg.Listing)

	t.Setenv(EnvConfig, "")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

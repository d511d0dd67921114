package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "lookout.yml", `version: "1.0"
include_patterns:
  - "*.env"
  - "secrets/**"
debounce_ms: 250
status_poll_ms: 750
logging:
  level: debug
`)

	path, err := FindConfigFile(dir)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.env", "secrets/**"}, cfg.IncludePatterns)
	assert.Equal(t, 250*time.Millisecond, cfg.DebounceDelay())
	assert.Equal(t, 750*time.Millisecond, cfg.StatusPollInterval())

	// Extension sections are preserved for UnmarshalExtension
	var logCfg struct {
		Level string `yaml:"level"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "debug", logCfg.Level)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "lookout.toml", `version = "1.0"
include_patterns = ["*.env"]
debounce_ms = 100

[logging]
level = "warn"
`)

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.env"}, cfg.IncludePatterns)
	assert.Equal(t, 100*time.Millisecond, cfg.DebounceDelay())

	var logCfg struct {
		Level string `yaml:"level"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "warn", logCfg.Level)
}

func TestFindConfigFileWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "lookout.yml", `version: "1.0"`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	path, err := FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "lookout.yml"), path)
}

func TestDebounceClamping(t *testing.T) {
	tests := []struct {
		name string
		ms   int
		want time.Duration
	}{
		{"negative clamps to zero", -50, 0},
		{"zero stays zero", 0, 0},
		{"in range", 500, 500 * time.Millisecond},
		{"above max clamps", 10000, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := tt.ms
			cfg := &Config{DebounceMs: &ms}
			assert.Equal(t, tt.want, cfg.DebounceDelay())
		})
	}
}

func TestLoadFromDirMissingConfig(t *testing.T) {
	// No config anywhere up the tree from a temp dir is unlikely to hold in
	// general, so point at a root-adjacent empty dir and accept either a
	// defaulted config or one found further up.
	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "1.0", cfg.Version)
}

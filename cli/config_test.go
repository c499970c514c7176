package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, ".specgo/cache", c.CacheDir)
	assert.Equal(t, "specdeps.yaml", c.Manifest)
	assert.Equal(t, []string{"**/*"}, c.Patterns)
	assert.Equal(t, 300*time.Millisecond, c.Watch.Debounce)
	assert.NoError(t, c.Validate())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestLoadConfig(t *testing.T) {
	contents := `cache_dir: /tmp/cache
manifest: deps.yaml
patterns:
  - "specs/**/*.spec"
parallelism: 8
bail: true
watch:
  debounce: 1s
  max_batch: 32
`
	path := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cache", c.CacheDir)
	assert.Equal(t, "deps.yaml", c.Manifest)
	assert.Equal(t, []string{"specs/**/*.spec"}, c.Patterns)
	assert.Equal(t, 8, c.Parallelism)
	assert.True(t, c.Bail)
	assert.Equal(t, time.Second, c.Watch.Debounce)
	assert.Equal(t, 32, c.Watch.MaxBatch)
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("parallelism: 2\n"), 0644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Parallelism)
	// untouched fields keep their defaults
	assert.Equal(t, ".specgo/cache", c.CacheDir)
	assert.Equal(t, "specdeps.yaml", c.Manifest)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty cache_dir", func(c *Config) { c.CacheDir = "" }},
		{"empty manifest", func(c *Config) { c.Manifest = "" }},
		{"negative parallelism", func(c *Config) { c.Parallelism = -1 }},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("cache_dir: [broken"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

package cli

// This file contains the project-level configuration loaded from specgo.yaml.

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the name of the project-level config file.
const ConfigFile = "specgo.yaml"

// Config represents the specgo configuration.
type Config struct {
	// CacheDir is the artifact cache directory
	CacheDir string `yaml:"cache_dir"`
	// Manifest is the path of the dependency manifest
	Manifest string `yaml:"manifest"`
	// Patterns are doublestar globs selecting the files relevant to spec
	// selection; changed paths outside these patterns are ignored
	Patterns []string `yaml:"patterns"`
	// Parallelism is the worker count for parallel execution (0 = number of CPUs)
	Parallelism int `yaml:"parallelism"`
	// Bail stops scheduling new specs after the first failure
	Bail bool `yaml:"bail"`
	// Watch configures the file watcher
	Watch WatchConfig `yaml:"watch"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	// Debounce is the quiet window collapsing bursts of file events
	Debounce time.Duration `yaml:"debounce"`
	// MaxBatch flushes early once this many distinct paths changed
	MaxBatch int `yaml:"max_batch"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CacheDir: ".specgo/cache",
		Manifest: "specdeps.yaml",
		Patterns: []string{"**/*"},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
			MaxBatch: 256,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir is required")
	}
	if c.Manifest == "" {
		return fmt.Errorf("manifest is required")
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// LoadConfig loads configuration from a YAML file, falling back to defaults
// when the file does not exist.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

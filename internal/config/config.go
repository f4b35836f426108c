package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the per-workspace configuration file looked up at the
// workspace root.
const ConfigFileName = "fastcontext.yaml"

// Duration wraps time.Duration so YAML values like "2s" or "5m" decode
// directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all configuration for a FastContext engine instance.
type Config struct {
	Search   SearchConfig   `yaml:"search"`
	Index    IndexConfig    `yaml:"index"`
	Executor ExecutorConfig `yaml:"executor"`
	Cache    CacheConfig    `yaml:"cache"`
	Selector SelectorConfig `yaml:"selector"`
}

// SearchConfig holds search behavior configuration.
type SearchConfig struct {
	MaxResults int `yaml:"max_results"` // Per-pattern backend result cap
	ContextPad int `yaml:"context_pad"` // Lines of context folded around each hit
}

// IndexConfig holds indexer configuration.
type IndexConfig struct {
	Includes    []string `yaml:"includes"`
	Excludes    []string `yaml:"excludes"`
	MaxFileSize int64    `yaml:"max_file_size"` // Bytes; larger files are skipped
	Workers     int      `yaml:"workers"`       // Concurrent files during symbol scan
}

// ExecutorConfig holds parallel executor configuration.
type ExecutorConfig struct {
	MaxParallel int      `yaml:"max_parallel"` // Concurrent in-flight tool calls
	TaskTimeout Duration `yaml:"task_timeout"` // Default per-task timeout
}

// CacheConfig holds query cache configuration.
type CacheConfig struct {
	Enabled bool     `yaml:"enabled"`
	Size    int      `yaml:"size"`
	TTL     Duration `yaml:"ttl"`
}

// SelectorConfig holds backend selector configuration. IgnoreDirs seeds the
// directory names skipped by the file-count probe and the native backend
// walk; it is a configurable set, not an exhaustive hardcoded list.
type SelectorConfig struct {
	ProbeCap        int      `yaml:"probe_cap"`        // Walk stops once this many files are seen
	NativeThreshold int      `yaml:"native_threshold"` // Below this estimate the native backend wins
	IgnoreDirs      []string `yaml:"ignore_dirs"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			MaxResults: 100,
			ContextPad: 2,
		},
		Index: IndexConfig{
			Includes:    []string{"**/*"},
			Excludes:    []string{"**/*.min.js", "**/*.lock"},
			MaxFileSize: 1 << 20, // 1MB
			Workers:     4,
		},
		Executor: ExecutorConfig{
			MaxParallel: 4,
			TaskTimeout: Duration(10 * time.Second),
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    256,
			TTL:     Duration(5 * time.Minute),
		},
		Selector: SelectorConfig{
			ProbeCap:        100,
			NativeThreshold: 500,
			IgnoreDirs: []string{
				".git", ".hg", ".svn",
				"node_modules", "vendor",
				"dist", "build", "target",
				"__pycache__", ".venv",
				".idea", ".vscode",
			},
		},
	}
}

// Load loads configuration from a YAML file, returning defaults when the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a workspace root.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, ConfigFileName))
}

// Validate rejects configuration errors and clamps soft limits. A
// non-positive max_parallel is a programmer/configuration error and is the
// one case that surfaces as an error rather than a degraded result.
func (c *Config) Validate() error {
	if c.Executor.MaxParallel < 1 {
		return fmt.Errorf("executor.max_parallel must be >= 1, got %d", c.Executor.MaxParallel)
	}
	if c.Executor.MaxParallel > 8 {
		c.Executor.MaxParallel = 8
	}
	if c.Executor.TaskTimeout <= 0 {
		c.Executor.TaskTimeout = Duration(10 * time.Second)
	}
	if c.Search.MaxResults < 1 {
		c.Search.MaxResults = 100
	}
	if c.Search.ContextPad < 0 {
		c.Search.ContextPad = 0
	}
	if c.Cache.Size < 1 {
		c.Cache.Size = 256
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = Duration(5 * time.Minute)
	}
	if c.Selector.ProbeCap < 1 {
		c.Selector.ProbeCap = 100
	}
	if c.Selector.NativeThreshold < 1 {
		c.Selector.NativeThreshold = 500
	}
	if c.Index.Workers < 1 {
		c.Index.Workers = 4
	}
	if len(c.Index.Includes) == 0 {
		c.Index.Includes = []string{"**/*"}
	}
	return nil
}

// IgnoreSet returns the ignored directory names as a set for O(1) lookups
func (c *Config) IgnoreSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Selector.IgnoreDirs))
	for _, d := range c.Selector.IgnoreDirs {
		set[d] = struct{}{}
	}
	return set
}

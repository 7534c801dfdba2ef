// Package config holds logicmake configuration, loaded from YAML with
// sane defaults for every field.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Resolution ResolutionConfig `yaml:"resolution"`
	Execution  ExecutionConfig  `yaml:"execution"`
	Watch      WatchConfig      `yaml:"watch"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ResolutionConfig bounds the proof search. The core engine performs no
// cycle detection, so the depth guard lives here, outside the core.
type ResolutionConfig struct {
	// MaxDepth caps goal recursion; zero means the built-in default.
	MaxDepth int `yaml:"max_depth"`
	// MaxProofs caps how many proofs `solve --all` enumerates; zero
	// means unbounded.
	MaxProofs int `yaml:"max_proofs"`
}

// ExecutionConfig controls how build commands run. Timeout is a
// time.ParseDuration string such as "30s".
type ExecutionConfig struct {
	Shell   string `yaml:"shell"`
	Timeout string `yaml:"timeout"`
	WorkDir string `yaml:"work_dir"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	// Paths to watch; empty means the working directory.
	Paths []string `yaml:"paths"`
	// Debounce collapses storms of editor events into one rebuild;
	// a time.ParseDuration string such as "500ms".
	Debounce string `yaml:"debounce"`
}

// LoggingConfig mirrors logging.Options.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Resolution: ResolutionConfig{
			MaxDepth: 64,
		},
		Execution: ExecutionConfig{
			Shell:   defaultShell(),
			Timeout: "30s",
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// GetExecutionTimeout returns the shell command timeout as a duration.
func (c *Config) GetExecutionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Execution.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetWatchDebounce returns the watch debounce window as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

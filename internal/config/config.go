package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultAddr             = ":8000"
	DefaultStorageDirName   = "storage"
	DefaultStreamIntervalMS = 700
)

// Environment overrides
const (
	EnvPort       = "PORT"
	EnvStorageDir = "STORAGE_DIR"
)

// Config holds the server configuration. All fields are optional in the
// YAML file; unset values fall back to defaults.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8000"
	Addr string `yaml:"addr"`

	// StorageDir is the internal storage root used as the fallback
	// download location and the base for relative destination hints
	StorageDir string `yaml:"storage_dir"`

	// StreamIntervalMS is the poll interval of the progress feed
	StreamIntervalMS int `yaml:"stream_interval_ms"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Addr:             DefaultAddr,
		StorageDir:       DefaultStorageDirName,
		StreamIntervalMS: DefaultStreamIntervalMS,
	}
}

// Load reads the optional YAML file at path, applies environment
// overrides, and normalizes the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if port := os.Getenv(EnvPort); port != "" {
		cfg.Addr = ":" + port
	}
	if dir := os.Getenv(EnvStorageDir); dir != "" {
		cfg.StorageDir = dir
	}

	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = DefaultStorageDirName
	}
	if cfg.StreamIntervalMS <= 0 {
		cfg.StreamIntervalMS = DefaultStreamIntervalMS
	}

	abs, err := filepath.Abs(cfg.StorageDir)
	if err != nil {
		return cfg, fmt.Errorf("resolve storage dir: %w", err)
	}
	cfg.StorageDir = abs

	return cfg, nil
}

// StreamInterval returns the progress feed poll interval as a duration
func (c Config) StreamInterval() time.Duration {
	return time.Duration(c.StreamIntervalMS) * time.Millisecond
}

// Package config loads the process configuration from a YAML file. Missing
// fields fall back to defaults; the CLI layers flag overrides on top.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Artifact backend names.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config is the full process configuration.
type Config struct {
	// DataDir is the directory scanned for incoming feed files.
	DataDir string `yaml:"data_dir"`

	// DatabasePath is the SQLite database file. ":memory:" is accepted.
	DatabasePath string `yaml:"database_path"`

	// RejectsDir is where reject artifacts are written.
	RejectsDir string `yaml:"rejects_dir"`

	Artifacts   Artifacts   `yaml:"artifacts"`
	TopSpenders TopSpenders `yaml:"top_spenders"`
}

// Artifacts selects and configures the artifact storage backend.
type Artifacts struct {
	// Backend is "local" or "remote".
	Backend string `yaml:"backend"`

	// Path is the base directory of the local backend.
	Path string `yaml:"path"`

	// Endpoint is the object-store URL of the remote backend.
	Endpoint string `yaml:"endpoint"`

	// Prefix keys remote objects under a shared endpoint.
	Prefix string `yaml:"prefix"`
}

// TopSpenders holds the defaults for the trailing-window KPI.
type TopSpenders struct {
	Days  int `yaml:"days"`
	Limit int `yaml:"limit"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DataDir:      "data/incoming",
		DatabasePath: "orderpulse.db",
		RejectsDir:   "rejects",
		Artifacts: Artifacts{
			Backend: BackendLocal,
			Path:    "artifacts",
			Prefix:  "orderpulse",
		},
		TopSpenders: TopSpenders{Days: 30, Limit: 10},
	}
}

// Load reads path and merges it over the defaults. A missing file is not an
// error: the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Artifacts.Backend {
	case BackendLocal, BackendRemote:
	default:
		return fmt.Errorf("unknown artifacts backend %q", c.Artifacts.Backend)
	}
	if c.Artifacts.Backend == BackendRemote && c.Artifacts.Endpoint == "" {
		return fmt.Errorf("remote artifacts backend requires an endpoint")
	}
	if c.TopSpenders.Days <= 0 {
		return fmt.Errorf("top_spenders.days must be positive, got %d", c.TopSpenders.Days)
	}
	if c.TopSpenders.Limit <= 0 {
		return fmt.Errorf("top_spenders.limit must be positive, got %d", c.TopSpenders.Limit)
	}
	return nil
}

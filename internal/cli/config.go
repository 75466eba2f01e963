package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// configFileName is resolved relative to the working directory.
const configFileName = ".eventlint.yaml"

// Config holds project-level scanner settings. Flags override config
// values; config values override the built-in defaults.
type Config struct {
	Frontend       string   `yaml:"frontend"`        // AST dumper command
	SystemType     string   `yaml:"system_type"`     // event system class name
	CollectionType string   `yaml:"collection_type"` // subscriber collection class name
	ProjectRoot    string   `yaml:"project_root"`
	Excludes       []string `yaml:"excludes"`
	Workers        int      `yaml:"workers"`
	Database       string   `yaml:"database"` // scan history database path
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Frontend:       "event-ast-dump",
		SystemType:     "ES::EventSystem",
		CollectionType: "ES::SubscriberCollection",
	}
}

// LoadConfig resolves the effective config: defaults, then .eventlint.yaml
// from dir if present, then EVENTLINT_* environment variables. A .env file
// in the working directory seeds the environment first.
func LoadConfig(dir string) (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays EVENTLINT_* variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("EVENTLINT_FRONTEND"); v != "" {
		cfg.Frontend = v
	}
	if v := os.Getenv("EVENTLINT_SYSTEM_TYPE"); v != "" {
		cfg.SystemType = v
	}
	if v := os.Getenv("EVENTLINT_COLLECTION_TYPE"); v != "" {
		cfg.CollectionType = v
	}
	if v := os.Getenv("EVENTLINT_PROJECT_ROOT"); v != "" {
		cfg.ProjectRoot = v
	}
	if v := os.Getenv("EVENTLINT_DATABASE"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("EVENTLINT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
}

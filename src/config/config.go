// Package config holds the run configuration for a publish. The config is
// built once at the start of a run — file, then flags, then prompts — and
// passed read-only to every pipeline component.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Default config files, tried in order when no --config is given.
var defaultConfigFiles = []string{".chartferry.yml", ".chartferry.toml"}

// Config is the top-level ChartFerry configuration file.
type Config struct {
	Publish PublishConfig `yaml:"publish" toml:"publish"`
}

// Load reads configuration from a YAML or TOML file, chosen by extension.
// If path is empty, the default files are tried; a missing file yields
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		for _, candidate := range defaultConfigFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path == "" {
		return defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults(), nil
		}
		return nil, err
	}

	cfg := defaults()
	switch filepath.Ext(path) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Publish: DefaultPublishConfig(),
	}
}

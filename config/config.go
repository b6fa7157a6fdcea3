// Package config loads the resplan configuration from a YAML or JSON file
// with RESPLAN_ environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/resplan/infra/mqtt"
)

// EnvPrefix marks environment overrides. Nested keys use a double
// underscore: RESPLAN_SOLVER__TIME_LIMIT_SECONDS=5.
const EnvPrefix = "RESPLAN_"

type Config struct {
	Data    DataConfig    `json:"data"`
	Solver  SolverConfig  `json:"solver"`
	Logging LoggingConfig `json:"logging"`
	Output  OutputConfig  `json:"output"`
	Metrics MetricsConfig `json:"metrics"`
	Publish mqtt.Config   `json:"publish"`
}

// Load reads path, applies environment overrides and defaults, and validates
// every section. An empty path loads defaults and the environment only.
// Relative data paths are resolved against the directory of path.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if path != "" {
		cfg.Data.Resolve(filepath.Dir(path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every unset section field.
func (c *Config) SetDefaults() {
	c.Data.SetDefaults()
	c.Solver.SetDefaults()
	c.Logging.SetDefaults()
	c.Output.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return c.Publish.Validate()
}

package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/kilianp07/resplan/core/factory"
	"github.com/kilianp07/resplan/pkg/export"
)

// DataConfig locates the input documents.
type DataConfig struct {
	Projects  string `json:"projects"`
	Resources string `json:"resources"`
	// Holidays is optional.
	Holidays string `json:"holidays"`
}

// SetDefaults applies the conventional file names.
func (c *DataConfig) SetDefaults() {
	if c.Projects == "" {
		c.Projects = "data/projects.json"
	}
	if c.Resources == "" {
		c.Resources = "data/resources.json"
	}
}

// Resolve makes relative paths relative to dir.
func (c *DataConfig) Resolve(dir string) {
	for _, p := range []*string{&c.Projects, &c.Resources, &c.Holidays} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate checks mandatory fields.
func (c DataConfig) Validate() error {
	if c.Projects == "" || c.Resources == "" {
		return fmt.Errorf("projects and resources paths are required")
	}
	return nil
}

// SolverConfig bounds the search.
type SolverConfig struct {
	TimeLimitSeconds float64 `json:"time_limit_seconds"`
	// CallLimit caps SAT calls per solve; zero means unlimited.
	CallLimit      int64 `json:"call_limit"`
	DisableLPBound bool  `json:"disable_lp_bound"`
}

// SetDefaults applies a 30 second time limit.
func (c *SolverConfig) SetDefaults() {
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = 30
	}
}

// TimeLimit returns the time limit as a duration.
func (c SolverConfig) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds * float64(time.Second))
}

// Validate rejects negative limits.
func (c SolverConfig) Validate() error {
	if c.TimeLimitSeconds < 0 {
		return fmt.Errorf("time_limit_seconds must be positive, got %v", c.TimeLimitSeconds)
	}
	if c.CallLimit < 0 {
		return fmt.Errorf("call_limit must not be negative, got %d", c.CallLimit)
	}
	return nil
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `json:"level"`
}

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// SetDefaults applies the info level.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	c.Level = strings.ToLower(c.Level)
}

// Validate checks the level name.
func (c LoggingConfig) Validate() error {
	if !slices.Contains(logLevels, c.Level) {
		return fmt.Errorf("unknown level %s", c.Level)
	}
	return nil
}

// OutputConfig selects the report format and destination. An empty path
// writes to stdout.
type OutputConfig struct {
	Format string `json:"format"`
	Path   string `json:"path"`
}

// SetDefaults applies the text format.
func (c *OutputConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = "text"
	}
	c.Format = strings.ToLower(c.Format)
}

// Validate checks the format name.
func (c OutputConfig) Validate() error {
	if !slices.Contains(export.Formats, c.Format) {
		return fmt.Errorf("unknown format %s (want one of %s)", c.Format, strings.Join(export.Formats, ", "))
	}
	return nil
}

// MetricsConfig lists the metrics sinks, e.g.
//
//	metrics:
//	  sinks:
//	    - type: prometheus
//	      conf: {textfile: /var/lib/node_exporter/resplan.prom}
type MetricsConfig struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// Validate checks that every sink names a type.
func (c MetricsConfig) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("sink %d has no type", i)
		}
	}
	return nil
}

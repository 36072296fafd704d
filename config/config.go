// Package config provides configuration loading and management for shellprep.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/shellprep/csp"
	"github.com/c360studio/shellprep/stream"
)

// Config represents the complete shellprep configuration
type Config struct {
	Build BuildConfig `yaml:"build"`
	CSP   CSPConfig   `yaml:"csp"`
	Watch WatchConfig `yaml:"watch"`
}

// BuildConfig configures one preparation run
type BuildConfig struct {
	// Src is the built-assets directory the pipeline reads
	Src string `yaml:"src"`
	// Dest is where prepared documents are written (empty = in place)
	Dest string `yaml:"dest"`
	// Template is the path to the injection template
	Template string `yaml:"template"`
	// Pattern selects which documents are transformed
	Pattern string `yaml:"pattern"`
}

// CSPConfig configures Content-Security-Policy composition
type CSPConfig struct {
	// Source is the entry document the shell boots from
	Source string `yaml:"source"`
	// ConnectSrc extends the connect-src directive
	ConnectSrc []string `yaml:"connect_src"`
	// DefaultSrc extends the default-src directive
	DefaultSrc []string `yaml:"default_src"`
	// FrameSrc extends the frame-src and child-src directives
	FrameSrc []string `yaml:"frame_src"`
}

// WatchConfig configures the watch loop
type WatchConfig struct {
	// DebounceDelay is how long to wait for more changes before rebuilding
	DebounceDelay string `yaml:"debounce_delay"`
}

// GetDebounceDelay returns the debounce delay as a duration.
func (c *WatchConfig) GetDebounceDelay() time.Duration {
	if c.DebounceDelay == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(c.DebounceDelay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			Src:      "www",
			Dest:     "", // In place
			Template: "injection.html",
			Pattern:  stream.DefaultPattern,
		},
		CSP: CSPConfig{
			Source: csp.DefaultSourceDoc,
		},
		Watch: WatchConfig{
			DebounceDelay: "500ms",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Build.Src == "" {
		return fmt.Errorf("build.src is required")
	}
	if c.Build.Template == "" {
		return fmt.Errorf("build.template is required")
	}
	if c.Build.Pattern == "" {
		return fmt.Errorf("build.pattern is required")
	}
	if c.CSP.Source == "" {
		return fmt.Errorf("csp.source is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Build
	if other.Build.Src != "" {
		c.Build.Src = other.Build.Src
	}
	if other.Build.Dest != "" {
		c.Build.Dest = other.Build.Dest
	}
	if other.Build.Template != "" {
		c.Build.Template = other.Build.Template
	}
	if other.Build.Pattern != "" {
		c.Build.Pattern = other.Build.Pattern
	}

	// CSP
	if other.CSP.Source != "" {
		c.CSP.Source = other.CSP.Source
	}
	if len(other.CSP.ConnectSrc) > 0 {
		c.CSP.ConnectSrc = other.CSP.ConnectSrc
	}
	if len(other.CSP.DefaultSrc) > 0 {
		c.CSP.DefaultSrc = other.CSP.DefaultSrc
	}
	if len(other.CSP.FrameSrc) > 0 {
		c.CSP.FrameSrc = other.CSP.FrameSrc
	}

	// Watch
	if other.Watch.DebounceDelay != "" {
		c.Watch.DebounceDelay = other.Watch.DebounceDelay
	}
}

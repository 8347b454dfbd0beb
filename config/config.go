// Package config provides configuration loading and management for the
// harvester.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opendataio/harvester/source"
)

// Source types the harvester knows how to read.
const (
	SourceTypeDataJSON = "datajson"
	SourceTypeCSW      = "csw"
)

// Config represents the complete harvester configuration
type Config struct {
	Sources []Source           `yaml:"sources"`
	CKAN    CKANConfig         `yaml:"ckan"`
	NATS    NATSConfig         `yaml:"nats"`
	Watch   source.WatchConfig `yaml:"watch"`
}

// Source configures one harvest source
type Source struct {
	// Name identifies the source in logs, metrics and events
	Name string `yaml:"name"`
	// URL is the catalog endpoint, or a local file path
	URL string `yaml:"url"`
	// Type is the source protocol: "datajson" or "csw"
	Type string `yaml:"type"`
	// Schema is the target layout: "default" or "usmetadata"
	Schema string `yaml:"schema"`
	// OwnerOrg is the destination organization id
	OwnerOrg string `yaml:"owner_org"`
	// Validate runs the metadata rules before transforming
	Validate bool `yaml:"validate"`
}

// CKANConfig configures the target catalog connection
type CKANConfig struct {
	// URL is the CKAN instance base URL
	URL string `yaml:"url"`
	// APIKey is sent on every write request
	APIKey string `yaml:"api_key"`
	// Timeout is the maximum time to wait for API responses
	Timeout time.Duration `yaml:"timeout"`
}

// NATSConfig configures the NATS connection for harvest events
type NATSConfig struct {
	// URL is the NATS server URL (empty = events disabled)
	URL string `yaml:"url"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		CKAN: CKANConfig{
			URL:     "http://localhost:5000",
			Timeout: 60 * time.Second,
		},
		NATS: NATSConfig{
			URL: "", // Events disabled
		},
		Watch: source.DefaultWatchConfig(),
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.CKAN.URL == "" {
		return fmt.Errorf("ckan.url is required")
	}
	seen := map[string]bool{}
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d].name is required", i)
		}
		if seen[src.Name] {
			return fmt.Errorf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = true
		if src.URL == "" {
			return fmt.Errorf("source %q: url is required", src.Name)
		}
		switch src.Type {
		case SourceTypeDataJSON, SourceTypeCSW:
		default:
			return fmt.Errorf("source %q: unknown type %q", src.Name, src.Type)
		}
		switch src.Schema {
		case "", "default", "usmetadata":
		default:
			return fmt.Errorf("source %q: unknown schema %q", src.Name, src.Schema)
		}
		if src.OwnerOrg == "" {
			return fmt.Errorf("source %q: owner_org is required", src.Name)
		}
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
	// Ensure parent directory exists
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

	if len(other.Sources) > 0 {
		c.Sources = other.Sources
	}

	// CKAN
	if other.CKAN.URL != "" {
		c.CKAN.URL = other.CKAN.URL
	}
	if other.CKAN.APIKey != "" {
		c.CKAN.APIKey = other.CKAN.APIKey
	}
	if other.CKAN.Timeout != 0 {
		c.CKAN.Timeout = other.CKAN.Timeout
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	// Watch
	if other.Watch.DebounceDelay != "" {
		c.Watch.DebounceDelay = other.Watch.DebounceDelay
	}
	if len(other.Watch.FileExtensions) > 0 {
		c.Watch.FileExtensions = other.Watch.FileExtensions
	}
	if len(other.Watch.ExcludeDirs) > 0 {
		c.Watch.ExcludeDirs = other.Watch.ExcludeDirs
	}
}

// FindSource returns the named source config.
func (c *Config) FindSource(name string) (Source, error) {
	for _, src := range c.Sources {
		if src.Name == name {
			return src, nil
		}
	}
	return Source{}, fmt.Errorf("source %q not found in configuration", name)
}

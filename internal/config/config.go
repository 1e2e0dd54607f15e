// Package config loads and validates the server configuration from a
// YAML file, with environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/quillworks/quill/pkg/database"
)

// Config is the top-level server configuration.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string `yaml:"addr"`

	// LogLevel sets the hclog level (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// BaseURL is the externally visible URL, used when building share
	// links.
	BaseURL string `yaml:"base_url"`

	Database database.Config `yaml:"database"`

	AI       AI       `yaml:"ai"`
	PDF      PDF      `yaml:"pdf"`
	Sessions Sessions `yaml:"sessions"`
	Versions Versions `yaml:"versions"`
	Share    Share    `yaml:"share"`
}

// AI configures the text-generation collaborator.
type AI struct {
	// APIKey falls back to the QUILL_AI_API_KEY environment variable.
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`

	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
}

// PDF configures the rendering collaborator.
type PDF struct {
	// APIKey falls back to the QUILL_PDF_API_KEY environment variable.
	// When empty, PDF export returns a not-configured error.
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Sandbox bool   `yaml:"sandbox"`
}

// Sessions configures draft session behavior.
type Sessions struct {
	TTL time.Duration `yaml:"ttl"`
}

// Versions configures version history retention.
type Versions struct {
	RetentionCap int `yaml:"retention_cap"`
}

// Share configures share link issuance.
type Share struct {
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// NewConfig parses the YAML file at path, applies environment overrides
// and defaults, and validates the result.
func NewConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("QUILL_AI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("QUILL_PDF_API_KEY"); v != "" {
		c.PDF.APIKey = v
	}
	if v := os.Getenv("QUILL_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Sessions.TTL == 0 {
		c.Sessions.TTL = 2 * time.Hour
	}
	if c.Versions.RetentionCap == 0 {
		c.Versions.RetentionCap = 25
	}
	if c.Share.DefaultTTL == 0 {
		c.Share.DefaultTTL = 30 * 24 * time.Hour
	}
}

// validate collects every configuration problem instead of stopping at
// the first one.
func (c *Config) validate() error {
	var result *multierror.Error

	if c.Database.Host == "" {
		result = multierror.Append(result,
			fmt.Errorf("database.host is required"))
	}
	if c.Database.User == "" {
		result = multierror.Append(result,
			fmt.Errorf("database.user is required"))
	}
	if c.Database.DBName == "" {
		result = multierror.Append(result,
			fmt.Errorf("database.dbname is required"))
	}
	if c.Versions.RetentionCap < 1 {
		result = multierror.Append(result,
			fmt.Errorf("versions.retention_cap must be positive"))
	}
	if c.Sessions.TTL < 0 {
		result = multierror.Append(result,
			fmt.Errorf("sessions.ttl must not be negative"))
	}
	if c.Share.DefaultTTL < 0 {
		result = multierror.Append(result,
			fmt.Errorf("share.default_ttl must not be negative"))
	}

	return result.ErrorOrNil()
}

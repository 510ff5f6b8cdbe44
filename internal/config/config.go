package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pankaj-dahiya-devops/guardrail/internal/logging"
	"github.com/pankaj-dahiya-devops/guardrail/internal/rules"
)

// Config is the top-level application configuration.
// It is read from an optional YAML file and then overridden from the
// environment. It never holds AWS credentials; those come from the SDK's
// default chain.
type Config struct {
	Log    LogConfig    `yaml:"log"    json:"log"`
	Server ServerConfig `yaml:"server" json:"server"`
	Policy PolicyConfig `yaml:"policy" json:"policy"`
	AWS    AWSConfig    `yaml:"aws"    json:"aws"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`

	// Format is "json" (default) or "console".
	Format string `yaml:"format" json:"format"`
}

// ServerConfig configures the HTTP transport used by "guardrail serve".
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr" json:"addr"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// PolicyConfig tunes the bucket-policy detector.
type PolicyConfig struct {
	// Match selects how change-event policies are judged: "strict" requires
	// a wildcard principal on an Allow statement, "principal" flags any
	// wildcard principal.
	Match string `yaml:"match" json:"match"`
}

// AWSConfig holds AWS-specific defaults.
type AWSConfig struct {
	// Region is used when the environment and profile name none.
	Region string `yaml:"region" json:"region"`

	// Profile is the shared-config profile. Empty means the default chain.
	Profile string `yaml:"profile" json:"profile"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: logging.FormatJSON},
		Server: ServerConfig{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
		Policy: PolicyConfig{Match: string(rules.MatchStrict)},
	}
}

// MatchMode returns the parsed policy match mode.
func (c *Config) MatchMode() rules.MatchMode {
	mode, err := rules.ParseMatchMode(c.Policy.Match)
	if err != nil {
		return rules.MatchStrict
	}
	return mode
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", logging.FormatJSON, logging.FormatConsole:
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if _, err := rules.ParseMatchMode(c.Policy.Match); err != nil {
		errs = append(errs, fmt.Errorf("policy.match: %w", err))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout: must not be negative"))
	}
	return errors.Join(errs...)
}

// Loader is the interface for reading Config.
type Loader interface {
	// Load reads, parses, and validates the configuration.
	Load() (*Config, error)

	// ConfigPath returns the path of the configuration file consulted.
	ConfigPath() string
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when GUARDRAIL_CONFIG is unset.
const DefaultConfigPath = "/etc/guardrail/config.yaml"

// Environment variables consulted by FileLoader.
const (
	EnvConfigPath  = "GUARDRAIL_CONFIG"
	EnvLogLevel    = "GUARDRAIL_LOG_LEVEL"
	EnvLogFormat   = "GUARDRAIL_LOG_FORMAT"
	EnvHTTPAddr    = "GUARDRAIL_HTTP_ADDR"
	EnvPolicyMatch = "GUARDRAIL_POLICY_MATCH"
	EnvAWSRegion   = "AWS_REGION"
	EnvAWSProfile  = "AWS_PROFILE"
)

// LoadDotEnv loads variables from the given .env files (".env" when none are
// named) without overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FileLoader reads an optional YAML file and applies environment overrides.
type FileLoader struct {
	path   string
	getenv func(string) string
}

// NewFileLoader returns a loader for path. An empty path resolves to
// $GUARDRAIL_CONFIG, then DefaultConfigPath.
func NewFileLoader(path string) *FileLoader {
	return newFileLoader(path, os.Getenv)
}

func newFileLoader(path string, getenv func(string) string) *FileLoader {
	if path == "" {
		path = getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultConfigPath
	}
	return &FileLoader{path: path, getenv: getenv}
}

// ConfigPath returns the file consulted by Load.
func (l *FileLoader) ConfigPath() string { return l.path }

// Load starts from Default, merges the file when it exists, applies the
// environment and validates the result. A missing file is not an error.
func (l *FileLoader) Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(l.path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", l.path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}

	l.applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (l *FileLoader) applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(l.getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.Log.Level, EnvLogLevel)
	set(&cfg.Log.Format, EnvLogFormat)
	set(&cfg.Server.Addr, EnvHTTPAddr)
	set(&cfg.Policy.Match, EnvPolicyMatch)
	set(&cfg.AWS.Region, EnvAWSRegion)
	set(&cfg.AWS.Profile, EnvAWSProfile)
}

// Package config loads the parmap configuration from a YAML file and the
// environment, and turns it into batch options.
//
// Precedence, from lowest to highest: defaults, the configuration file,
// environment variables, command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/batch"
	"github.com/exascience/parmap/logging"
)

// DefaultFile is the configuration file read when no path is given and the
// file exists in the working directory.
const DefaultFile = "parmap.yaml"

// Environment variables overriding the configuration file.
const (
	EnvStrategy  = "PARMAP_STRATEGY"
	EnvWorkers   = "PARMAP_WORKERS"
	EnvLogLevel  = "PARMAP_LOG_LEVEL"
	EnvLogFormat = "PARMAP_LOG_FORMAT"
)

// Config is the parmap configuration. A nil Workers selects the hardware
// parallelism.
type Config struct {
	Strategy     string         `yaml:"strategy"`
	Workers      *int           `yaml:"workers,omitempty"`
	Schedule     string         `yaml:"schedule"`
	Policy       string         `yaml:"policy"`
	Fallback     bool           `yaml:"fallback"`
	PreferVector bool           `yaml:"prefer_vector"`
	Logging      logging.Config `yaml:"logging"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Strategy: parmap.Sequential.String(),
		Schedule: parmap.Static.String(),
		Policy:   parmap.FailFast.String(),
		Logging:  logging.DefaultConfig(),
	}
}

// Load reads the configuration file at path on top of the defaults. If path
// is empty, DefaultFile is read if it exists. Load does not apply the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvStrategy); ok && v != "" {
		c.Strategy = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &parmap.ConfigurationError{Field: "workers", Value: v, Reason: "not an integer"}
		}
		c.Workers = &n
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	return nil
}

// Validate reports the first invalid field as a *parmap.ConfigurationError.
func (c *Config) Validate() error {
	if _, err := parmap.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if c.Workers != nil && *c.Workers <= 0 {
		return &parmap.ConfigurationError{Field: "workers", Value: *c.Workers, Reason: "must be positive"}
	}
	if _, err := parmap.ParseSchedule(c.Schedule); err != nil {
		return err
	}
	if _, err := parmap.ParseErrorPolicy(c.Policy); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		return &parmap.ConfigurationError{Field: "logging.format", Value: c.Logging.Format, Reason: "must be console or json"}
	}
	return nil
}

// Options validates the configuration and returns the corresponding batch
// options.
func (c *Config) Options() ([]batch.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	strategy, _ := parmap.ParseStrategy(c.Strategy)
	schedule, _ := parmap.ParseSchedule(c.Schedule)
	policy, _ := parmap.ParseErrorPolicy(c.Policy)
	opts := []batch.Option{
		batch.WithStrategy(strategy),
		batch.WithSchedule(schedule),
		batch.WithPolicy(policy),
		batch.WithFallback(c.Fallback),
		batch.WithPreferVector(c.PreferVector),
	}
	if c.Workers != nil {
		opts = append(opts, batch.WithWorkers(*c.Workers))
	}
	return opts, nil
}

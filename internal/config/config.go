// Package config loads the rawl CLI configuration.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/prorochestvo/rawl/internal/logger"
)

// Environment variables read by Load.
const (
	EnvDSN      = "RAWL_DSN"
	EnvLogLevel = "RAWL_LOG_LEVEL"
	EnvLogDir   = "RAWL_LOG_DIR"
)

// Config holds the CLI settings. The library itself only needs DSN.
type Config struct {
	DSN      string `yaml:"dsn"`
	LogLevel string `yaml:"log_level"` // debug, info, warn, error (default "info")
	LogDir   string `yaml:"log_dir"`   // daily log files go here; stderr when empty
}

func Default() Config {
	return Config{LogLevel: "info"}
}

// Load applies, in order: defaults, the YAML file at path (skipped when path
// is empty) and the RAWL_* environment variables.
func Load(path string) (Config, error) {
	result := Default()
	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(data, &result); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if v, ok := os.LookupEnv(EnvDSN); ok {
		result.DSN = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		result.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvLogDir); ok {
		result.LogDir = v
	}
	return result, nil
}

func (c Config) Validate() error {
	if len(c.DSN) == 0 {
		return errors.Errorf("no connection string: set --dsn, %s or dsn in the config file", EnvDSN)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

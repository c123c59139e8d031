// Package config layers conversion settings: built-in defaults, then an
// optional YAML file, then IMGCVT_* environment variables. Command-line flags
// are applied last by the cmd package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"imgcvt/internal/converter"
)

// Environment variables read by ApplyEnv.
const (
	EnvOutputDir = "IMGCVT_OUTPUT_DIR"
	EnvPrefix    = "IMGCVT_PREFIX"
	EnvConflict  = "IMGCVT_CONFLICT"
	EnvQuality   = "IMGCVT_QUALITY"
	EnvLossless  = "IMGCVT_LOSSLESS"
	EnvWorkers   = "IMGCVT_WORKERS"
)

// Config is the on-disk shape of the settings file.
type Config struct {
	OutputPath         string                       `yaml:"output_path"`
	FilePrefix         string                       `yaml:"file_prefix"`
	ConflictResolution converter.ConflictResolution `yaml:"conflict_resolution"`
	Quality            int                          `yaml:"quality"`
	Lossless           bool                         `yaml:"lossless"`
	AutoOrient         bool                         `yaml:"auto_orient"`
	Workers            int                          `yaml:"workers"`
}

// Default returns settings matching the desktop app's first run: numbered
// outputs at quality 85 under ~/Pictures/imgcvt, one item at a time.
func Default() Config {
	return Config{
		OutputPath:         defaultOutputPath(),
		ConflictResolution: converter.Numbering,
		Quality:            85,
		Workers:            1,
	}
}

func defaultOutputPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "imgcvt"
	}
	return filepath.Join(home, "Pictures", "imgcvt")
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from IMGCVT_* variables that are set and non-empty.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvOutputDir); v != "" {
		c.OutputPath = v
	}
	if v := getenv(EnvPrefix); v != "" {
		c.FilePrefix = v
	}
	if v := getenv(EnvConflict); v != "" {
		if err := c.ConflictResolution.Set(v); err != nil {
			return fmt.Errorf("%s: %w", EnvConflict, err)
		}
	}
	if v := getenv(EnvQuality); v != "" {
		q, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid quality %q", EnvQuality, v)
		}
		c.Quality = q
	}
	if v := getenv(EnvLossless); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", EnvLossless, v)
		}
		c.Lossless = b
	}
	if v := getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid worker count %q", EnvWorkers, v)
		}
		c.Workers = n
	}
	return nil
}

// Validate checks the conversion settings and the worker count.
func (c Config) Validate() error {
	if err := c.Settings().Validate(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	return nil
}

// Settings returns the per-batch conversion settings.
func (c Config) Settings() converter.Settings {
	return converter.Settings{
		OutputPath:         c.OutputPath,
		FilePrefix:         c.FilePrefix,
		ConflictResolution: c.ConflictResolution,
		Quality:            c.Quality,
		Lossless:           c.Lossless,
		AutoOrient:         c.AutoOrient,
	}
}

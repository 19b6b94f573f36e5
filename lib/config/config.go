// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable Load reads.
const EnvVar = "FREQD_CONFIG"

// Config is the complete freqd configuration.
type Config struct {
	// SysRoot is the sysfs mount point.
	SysRoot string `yaml:"sys_root"`

	// StatPath is the per-core time accounting file.
	StatPath string `yaml:"stat_path"`

	// Cores, when set, is the only domain managed (cpuset syntax or
	// whitespace-separated ids). Domain resolution is skipped.
	Cores string `yaml:"cores"`

	// Daemonize detaches from the controlling terminal at startup.
	Daemonize bool `yaml:"daemonize"`

	// RestoreOnExit saves the frequency and governor found at startup
	// and writes them back on a terminating signal.
	RestoreOnExit bool `yaml:"restore_on_exit"`

	Load    LoadConfig    `yaml:"load"`
	Speed   SpeedConfig   `yaml:"speed"`
	Thermal ThermalConfig `yaml:"thermal"`
	Power   PowerConfig   `yaml:"power"`
	Log     LogConfig     `yaml:"log"`
}

// LoadConfig configures load sampling.
type LoadConfig struct {
	// Interval between load checks.
	Interval time.Duration `yaml:"interval"`

	// FastUp is the idle percentage at or below which a core jumps to
	// the fastest step.
	FastUp uint64 `yaml:"fast_up"`

	// Threshold is the idle percentage separating "go faster" from
	// "go slower".
	Threshold uint64 `yaml:"threshold"`

	NiceIsIdle   bool `yaml:"nice_is_idle"`
	IOWaitIsIdle bool `yaml:"iowait_is_idle"`
}

// SpeedConfig bounds the frequencies freqd will use. Zero is unbounded.
type SpeedConfig struct {
	MinKHz int64 `yaml:"min_khz"`
	MaxKHz int64 `yaml:"max_khz"`
}

// ThermalConfig configures the optional temperature override.
type ThermalConfig struct {
	// File is the temperature file. Empty disables the check.
	File string `yaml:"file"`

	// Max is the reading above which the slowest step is forced, in
	// the file's own unit.
	Max int64 `yaml:"max"`

	Interval time.Duration `yaml:"interval"`
}

// PowerConfig configures the optional power-source override.
type PowerConfig struct {
	// File is the power-source state file. Empty disables the check.
	File string `yaml:"file"`

	Interval time.Duration `yaml:"interval"`

	// MaxOnAC forces the fastest step while on external power.
	MaxOnAC bool `yaml:"max_on_ac"`

	// MinOnBattery forces the slowest step while on battery.
	MinOnBattery bool `yaml:"min_on_battery"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format is auto (colour on a terminal, JSON otherwise), text, or
	// json.
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		SysRoot:  "/sys",
		StatPath: "/proc/stat",
		Load: LoadConfig{
			Interval:     2 * time.Second,
			FastUp:       10,
			Threshold:    25,
			NiceIsIdle:   true,
			IOWaitIsIdle: true,
		},
		Thermal: ThermalConfig{
			Interval: time.Second,
		},
		Power: PowerConfig{
			Interval:     5 * time.Second,
			MinOnBattery: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads the file named by FREQD_CONFIG, or returns Default when
// the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path on top of Default. Unknown
// keys are an error. Files ending in .json or .jsonc are read as JSON
// with comments and trailing commas allowed.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch filepath.Ext(path) {
	case ".json", ".jsonc":
		// Plain JSON is valid YAML.
		data = jsonc.ToJSON(data)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"SYS_ROOT": c.SysRoot,
		"HOME":     os.Getenv("HOME"),
	}

	c.SysRoot = expandVars(c.SysRoot, vars)
	vars["SYS_ROOT"] = c.SysRoot

	c.StatPath = expandVars(c.StatPath, vars)
	c.Thermal.File = expandVars(c.Thermal.File, vars)
	c.Power.File = expandVars(c.Power.File, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, preferring
// vars over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name := parts[1]
		defaultValue := parts[2]

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.SysRoot == "" {
		errs = append(errs, errors.New("sys_root is required"))
	}
	if c.StatPath == "" {
		errs = append(errs, errors.New("stat_path is required"))
	}

	if c.Load.Interval < 100*time.Millisecond {
		errs = append(errs, fmt.Errorf("load.interval must be at least 100ms, got %v", c.Load.Interval))
	}
	if c.Load.Threshold > 100 {
		errs = append(errs, fmt.Errorf("load.threshold must be a percentage, got %d", c.Load.Threshold))
	}
	if c.Load.FastUp > c.Load.Threshold {
		errs = append(errs, fmt.Errorf("load.fast_up (%d) must not exceed load.threshold (%d)", c.Load.FastUp, c.Load.Threshold))
	}

	if c.Speed.MinKHz < 0 || c.Speed.MaxKHz < 0 {
		errs = append(errs, errors.New("speed bounds must not be negative"))
	}
	if c.Speed.MinKHz > 0 && c.Speed.MaxKHz > 0 && c.Speed.MaxKHz <= c.Speed.MinKHz {
		errs = append(errs, fmt.Errorf("speed.max_khz (%d) must exceed speed.min_khz (%d)", c.Speed.MaxKHz, c.Speed.MinKHz))
	}

	if c.Thermal.File != "" && c.Thermal.Max <= 0 {
		errs = append(errs, fmt.Errorf("thermal.max must be positive when thermal.file is set, got %d", c.Thermal.Max))
	}
	if c.Thermal.File != "" && c.Thermal.Interval < 100*time.Millisecond {
		errs = append(errs, fmt.Errorf("thermal.interval must be at least 100ms, got %v", c.Thermal.Interval))
	}
	if c.Power.File != "" && c.Power.Interval < 100*time.Millisecond {
		errs = append(errs, fmt.Errorf("power.interval must be at least 100ms, got %v", c.Power.Interval))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of auto, text, json; got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

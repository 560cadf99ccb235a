package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	fitzones "github.com/lucasjlepore/fitzones"
)

// Environment variables read by ApplyEnv.
const (
	EnvActivitiesDir   = "FITZONES_ACTIVITIES_DIR"
	EnvLogPath         = "FITZONES_LOG_PATH"
	EnvMovingThreshold = "FITZONES_MOVING_THRESHOLD"
	EnvSamplesDir      = "FITZONES_SAMPLES_DIR"
	EnvDBPath          = "FITZONES_DB_PATH"
	EnvMetricsPath     = "FITZONES_METRICS_PATH"
)

// Config is the full run configuration.
type Config struct {
	ActivitiesDir      string             `json:"activities_dir"`
	LogPath            string             `json:"log_path"`
	MovingThresholdMPS float64            `json:"moving_threshold_mps"`
	Zones              fitzones.ZoneTable `json:"zones"`

	// Optional sinks; empty disables them.
	SamplesDir  string `json:"samples_dir,omitempty"`
	DBPath      string `json:"db_path,omitempty"`
	MetricsPath string `json:"metrics_path,omitempty"`
}

// fileConfig is the on-disk shape. The threshold is a pointer so an explicit 0
// is distinguishable from a missing key.
type fileConfig struct {
	ActivitiesDir      string             `json:"activities_dir"`
	LogPath            string             `json:"log_path"`
	MovingThresholdMPS *float64           `json:"moving_threshold_mps"`
	Zones              fitzones.ZoneTable `json:"zones"`
	SamplesDir         string             `json:"samples_dir"`
	DBPath             string             `json:"db_path"`
	MetricsPath        string             `json:"metrics_path"`
}

// ErrNoConfig is returned when an explicitly requested config file doesn't exist.
var ErrNoConfig = errors.New("config file not found")

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ActivitiesDir:      "activity-files",
		LogPath:            "zones-log.csv",
		MovingThresholdMPS: fitzones.DefaultMovingThresholdMPS,
		Zones:              fitzones.DefaultZones(),
	}
}

// Load reads a JSON config file and fills missing values from Default.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNoConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fileCfg fileConfig
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.ActivitiesDir != "" {
		cfg.ActivitiesDir = fileCfg.ActivitiesDir
	}
	if fileCfg.LogPath != "" {
		cfg.LogPath = fileCfg.LogPath
	}
	if fileCfg.MovingThresholdMPS != nil {
		cfg.MovingThresholdMPS = *fileCfg.MovingThresholdMPS
	}
	if len(fileCfg.Zones) > 0 {
		cfg.Zones = fileCfg.Zones
	}
	cfg.SamplesDir = fileCfg.SamplesDir
	cfg.DBPath = fileCfg.DBPath
	cfg.MetricsPath = fileCfg.MetricsPath

	return &cfg, nil
}

// LoadDotEnv loads a .env file into the process environment if one exists.
// Variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg from FITZONES_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvActivitiesDir); v != "" {
		cfg.ActivitiesDir = v
	}
	if v := os.Getenv(EnvLogPath); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv(EnvMovingThreshold); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMovingThreshold, err)
		}
		cfg.MovingThresholdMPS = f
	}
	if v := os.Getenv(EnvSamplesDir); v != "" {
		cfg.SamplesDir = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvMetricsPath); v != "" {
		cfg.MetricsPath = v
	}
	return nil
}

// Flag names read by ApplyFlags.
const (
	FlagActivitiesDir   = "dir"
	FlagLogPath         = "log"
	FlagMovingThreshold = "threshold"
	FlagSamplesDir      = "samples-dir"
	FlagDBPath          = "db"
	FlagMetricsPath     = "metrics"
)

// ApplyFlags overrides cfg with the flags that were explicitly set on fs.
// Flags left at their defaults never replace file or environment values, and
// flags fs does not define are ignored.
func ApplyFlags(cfg *Config, fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case FlagActivitiesDir:
			cfg.ActivitiesDir = v
		case FlagLogPath:
			cfg.LogPath = v
		case FlagMovingThreshold:
			th, perr := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if perr != nil {
				err = fmt.Errorf("parsing -%s: %w", FlagMovingThreshold, perr)
				return
			}
			cfg.MovingThresholdMPS = th
		case FlagSamplesDir:
			cfg.SamplesDir = v
		case FlagDBPath:
			cfg.DBPath = v
		case FlagMetricsPath:
			cfg.MetricsPath = v
		}
	})
	return err
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ActivitiesDir) == "" {
		return fmt.Errorf("activities directory is required")
	}
	if strings.TrimSpace(c.LogPath) == "" {
		return fmt.Errorf("log path is required")
	}
	if c.MovingThresholdMPS < 0 {
		return fmt.Errorf("moving threshold must not be negative, got %v", c.MovingThresholdMPS)
	}
	if err := c.Zones.Validate(); err != nil {
		return fmt.Errorf("zones: %w", err)
	}
	return nil
}

// Analysis returns the per-activity settings.
func (c Config) Analysis() fitzones.Config {
	return fitzones.Config{
		Zones:              c.Zones,
		MovingThresholdMPS: c.MovingThresholdMPS,
	}
}

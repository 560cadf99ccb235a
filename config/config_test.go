package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	fitzones "github.com/lucasjlepore/fitzones"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, "activity-files", cfg.ActivitiesDir)
	require.Equal(t, 2.78, cfg.MovingThresholdMPS)
	require.Len(t, cfg.Zones, 5)
	require.NoError(t, cfg.Validate())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), *cfg)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, ErrNoConfig)
}

func TestLoadKeepsZoneOrderAndAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"moving_threshold_mps": 2.22,
		"zones": [
			{"label": "easy", "low": 100, "high": 140},
			{"label": "aerobic", "low": 120, "high": 150}
		],
		"db_path": "runs.db"
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 2.22, cfg.MovingThresholdMPS)
	require.Equal(t, []string{"easy", "aerobic"}, cfg.Zones.Labels())
	require.Equal(t, "activity-files", cfg.ActivitiesDir)
	require.Equal(t, "zones-log.csv", cfg.LogPath)
	require.Equal(t, "runs.db", cfg.DBPath)
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvActivitiesDir, "/data/fit")
	t.Setenv(EnvMovingThreshold, "2.22")
	t.Setenv(EnvMetricsPath, "/tmp/fitzones.prom")

	cfg := Default()
	require.NoError(t, ApplyEnv(&cfg))

	require.Equal(t, "/data/fit", cfg.ActivitiesDir)
	require.Equal(t, 2.22, cfg.MovingThresholdMPS)
	require.Equal(t, "/tmp/fitzones.prom", cfg.MetricsPath)
	require.Equal(t, "zones-log.csv", cfg.LogPath)
}

func TestApplyEnvBadThreshold(t *testing.T) {
	t.Setenv(EnvMovingThreshold, "fast")
	cfg := Default()
	require.Error(t, ApplyEnv(&cfg))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(EnvLogPath+"=from-dotenv.csv\n"), 0o600))

	t.Setenv(EnvLogPath, "")
	require.NoError(t, os.Unsetenv(EnvLogPath))

	require.NoError(t, LoadDotEnv(envPath))
	cfg := Default()
	require.NoError(t, ApplyEnv(&cfg))
	require.Equal(t, "from-dotenv.csv", cfg.LogPath)

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "no zones", mutate: func(c *Config) { c.Zones = nil }},
		{name: "negative threshold", mutate: func(c *Config) { c.MovingThresholdMPS = -1 }},
		{name: "empty label", mutate: func(c *Config) { c.Zones[0].Label = " " }},
		{name: "duplicate label", mutate: func(c *Config) { c.Zones[1].Label = c.Zones[0].Label }},
		{name: "no log path", mutate: func(c *Config) { c.LogPath = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Zones = append(cfg.Zones, fitzones.Zone{Label: "inverted", Low: 200, High: 100})
	require.NoError(t, cfg.Validate(), "inverted bounds are allowed")
}

func TestLoadExplicitZeroThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"moving_threshold_mps": 0}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.0, cfg.MovingThresholdMPS)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingThresholdKeepsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log_path": "runs.csv"}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, fitzones.DefaultMovingThresholdMPS, cfg.MovingThresholdMPS)
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String(FlagActivitiesDir, "", "")
	fs.String(FlagLogPath, "", "")
	fs.Float64(FlagMovingThreshold, fitzones.DefaultMovingThresholdMPS, "")
	fs.String(FlagDBPath, "", "")
	return fs
}

func TestApplyFlagsKeepsFileValuesForUnsetFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"moving_threshold_mps": 2.22, "db_path": "file.db"}`), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"-dir", "/data/fit"}))
	require.NoError(t, ApplyFlags(cfg, fs))

	require.Equal(t, 2.22, cfg.MovingThresholdMPS)
	require.Equal(t, "file.db", cfg.DBPath)
	require.Equal(t, "/data/fit", cfg.ActivitiesDir)
}

func TestApplyFlagsOverridesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"moving_threshold_mps": 2.22}`), 0o600))
	t.Setenv(EnvDBPath, "env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, ApplyEnv(cfg))
	require.Equal(t, "env.db", cfg.DBPath)

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"-threshold", "0", "-db", "flag.db"}))
	require.NoError(t, ApplyFlags(cfg, fs))

	require.Equal(t, 0.0, cfg.MovingThresholdMPS)
	require.Equal(t, "flag.db", cfg.DBPath)
}

func TestApplyFlagsNegativeThresholdFailsValidation(t *testing.T) {
	cfg := Default()
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"-threshold", "-1"}))
	require.NoError(t, ApplyFlags(&cfg, fs))

	require.Equal(t, -1.0, cfg.MovingThresholdMPS)
	require.Error(t, cfg.Validate())
}

func TestApplyFlagsIgnoresUnknownFlags(t *testing.T) {
	cfg := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Bool("json", false, "")
	require.NoError(t, fs.Parse([]string{"-json"}))
	require.NoError(t, ApplyFlags(&cfg, fs))
	require.Equal(t, Default(), cfg)
}

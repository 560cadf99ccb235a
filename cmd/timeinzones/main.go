package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	fitzones "github.com/lucasjlepore/fitzones"
	"github.com/lucasjlepore/fitzones/config"
	"github.com/lucasjlepore/fitzones/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a JSON config file")
		envFile    = flag.String("env", ".env", "Optional .env file with FITZONES_* variables")
		quiet      = flag.Bool("quiet", false, "Do not print per-activity reports")
	)
	flag.String(config.FlagActivitiesDir, "", "Directory containing .fit activity files")
	flag.String(config.FlagLogPath, "", "CSV log file to append to")
	flag.Float64(config.FlagMovingThreshold, fitzones.DefaultMovingThresholdMPS, "Moving speed threshold in m/s")
	flag.String(config.FlagSamplesDir, "", "Write per-activity sample parquet files here")
	flag.String(config.FlagDBPath, "", "SQLite database for run history")
	flag.String(config.FlagMetricsPath, "", "Write a Prometheus textfile here at the end of the run")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [--config zones.json] [--dir activity-files] [--log zones-log.csv] [--threshold 2.78]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		fatal(err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		fatal(err)
	}

	if err := config.ApplyFlags(cfg, flag.CommandLine); err != nil {
		fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	opts := pipeline.Options{
		ActivitiesDir: cfg.ActivitiesDir,
		LogPath:       cfg.LogPath,
		Analysis:      cfg.Analysis(),
		SamplesDir:    cfg.SamplesDir,
		DBPath:        cfg.DBPath,
		MetricsPath:   cfg.MetricsPath,
		Logger:        log.New(os.Stderr, "timeinzones: ", log.LstdFlags),
	}
	if !*quiet {
		opts.Out = os.Stdout
	}

	result, err := pipeline.Run(opts)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Processed:   %d of %d\n", result.Processed, result.Found)
	fmt.Printf("Log file:    %s\n", cfg.LogPath)
	if result.RunID != "" {
		fmt.Printf("Run ID:      %s\n", result.RunID)
	}
	if len(result.Skipped) > 0 {
		fmt.Printf("Skipped:     %d\n", len(result.Skipped))
	}
	if len(result.Failed) > 0 {
		fmt.Printf("Export errs: %d\n", len(result.Failed))
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "timeinzones failed: %v\n", err)
	os.Exit(1)
}

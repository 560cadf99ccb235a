package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	fitzones "github.com/lucasjlepore/fitzones"
	"github.com/lucasjlepore/fitzones/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a JSON config file with the zone table")
		jsonOut    = flag.Bool("json", false, "Emit the analysis as JSON")
	)
	flag.Float64(config.FlagMovingThreshold, fitzones.DefaultMovingThresholdMPS, "Moving speed threshold in m/s (overrides the config file)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-fit-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := config.ApplyFlags(cfg, flag.CommandLine); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	analysis, err := fitzones.AnalyzeFile(flag.Arg(0), cfg.Analysis())
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			fmt.Fprintf(os.Stderr, "json encode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(fitzones.BuildZoneReport(analysis))
}

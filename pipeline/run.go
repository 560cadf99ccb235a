// Package pipeline runs zone analysis over a directory of activity files and
// writes the per-activity log and optional exports.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	fitzones "github.com/lucasjlepore/fitzones"
	"github.com/lucasjlepore/fitzones/store"
)

// ListActivityFiles returns the .fit files directly inside dir, sorted by name.
// The extension match is case-insensitive.
func ListActivityFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read activities dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".fit") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Run processes every activity file in opts.ActivitiesDir in name order.
// A file that fails to decode is logged and skipped. Export failures are
// logged and recorded in Result.Failed; rows already written stay written.
func Run(opts Options) (*Result, error) {
	if len(opts.Analysis.Zones) == 0 {
		return nil, fitzones.ErrNoZones
	}
	if strings.TrimSpace(opts.LogPath) == "" {
		return nil, errors.New("log path is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "timeinzones: ", log.LstdFlags)
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	files, err := ListActivityFiles(opts.ActivitiesDir)
	if err != nil {
		return nil, err
	}
	res := &Result{Found: len(files)}
	if len(files) == 0 {
		logger.Printf("no .fit files in %s", opts.ActivitiesDir)
		return res, nil
	}

	if opts.SamplesDir != "" {
		if err := os.MkdirAll(opts.SamplesDir, 0o755); err != nil {
			return nil, fmt.Errorf("create samples dir: %w", err)
		}
	}

	var db *store.Store
	if opts.DBPath != "" {
		db, err = store.Open(opts.DBPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		res.RunID, err = db.BeginRun(opts.ActivitiesDir, opts.Analysis.MovingThresholdMPS)
		if err != nil {
			return nil, err
		}
	}

	metrics := newRunMetrics()
	header := LogHeader(opts.Analysis.Zones)

	for _, path := range files {
		name := filepath.Base(path)
		analysis, err := fitzones.AnalyzeFile(path, opts.Analysis)
		if err != nil {
			logger.Printf("skipping %s: %v", name, err)
			res.Skipped = append(res.Skipped, name)
			metrics.skipped.Inc()
			continue
		}
		metrics.recordAnalysis(analysis)
		res.Processed++
		if n := analysis.Result.SkippedIntervals; n > 0 {
			logger.Printf("%s: skipped %d intervals with non-positive duration", name, n)
		}

		fmt.Fprintf(out, "%s\n\n", fitzones.BuildZoneReport(analysis))

		row := NewLogRow(analysis)
		if err := AppendLogRow(opts.LogPath, header, row); err != nil {
			logger.Printf("%s: append log row: %v", name, err)
			res.Failed = append(res.Failed, name)
			metrics.exportFailures.Inc()
			continue
		}
		res.Rows = append(res.Rows, row)

		failed := false
		if opts.SamplesDir != "" {
			target := filepath.Join(opts.SamplesDir, samplesFileName(name))
			if err := writeSamplesParquet(target, analysis.Samples, opts.Analysis); err != nil {
				logger.Printf("%s: write samples parquet: %v", name, err)
				metrics.exportFailures.Inc()
				failed = true
			}
		}
		if db != nil {
			if _, err := db.InsertActivity(activityRow(res.RunID, name, analysis, opts.Analysis.Zones)); err != nil {
				logger.Printf("%s: store activity: %v", name, err)
				metrics.exportFailures.Inc()
				failed = true
			}
		}
		if failed {
			res.Failed = append(res.Failed, name)
		}
	}

	if db != nil {
		if err := db.FinishRun(res.RunID, res.Processed, len(res.Skipped)); err != nil {
			logger.Printf("finish run %s: %v", res.RunID, err)
		}
	}
	if opts.MetricsPath != "" {
		if err := metrics.writeTextfile(opts.MetricsPath); err != nil {
			logger.Printf("write metrics: %v", err)
		}
	}

	logger.Printf("processed %d of %d activities (%d skipped, %d export failures)",
		res.Processed, res.Found, len(res.Skipped), len(res.Failed))
	return res, nil
}

func samplesFileName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".samples.parquet"
}

func activityRow(runID, name string, a *fitzones.Analysis, zones fitzones.ZoneTable) store.ActivityRow {
	row := store.ActivityRow{
		RunID:          runID,
		FileName:       name,
		StartTime:      a.Summary.StartTime,
		ElapsedSeconds: a.Summary.ElapsedSeconds,
		DistanceMeters: a.Summary.DistanceMeters,
		MovingSeconds:  a.Result.MovingSeconds,
		SampleCount:    len(a.Samples),
	}
	for i, z := range zones {
		row.Zones = append(row.Zones, store.ZoneRow{
			Position: i,
			Label:    z.Label,
			Low:      z.Low,
			High:     z.High,
			Seconds:  a.Result.Seconds(z.Label),
		})
	}
	return row
}

package pipeline

import (
	"bytes"
	"encoding/csv"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	fitzones "github.com/lucasjlepore/fitzones"
	"github.com/lucasjlepore/fitzones/fittest"
	"github.com/lucasjlepore/fitzones/store"
)

var runStart = time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)

// steadyRun spends ten moving seconds each in Zone 2, Zone 3 and Zone 5.
func steadyRun() []fittest.Point {
	return []fittest.Point{
		{Offset: 0, HR: 100, SpeedMPS: 3.0},
		{Offset: 10 * time.Second, HR: 130, SpeedMPS: 3.0},
		{Offset: 20 * time.Second, HR: 160, SpeedMPS: 3.0},
		{Offset: 30 * time.Second, HR: 120, SpeedMPS: 3.0},
	}
}

func writeActivities(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, fittest.WriteFile(
		filepath.Join(dir, "2024-06-01.fit"),
		runStart,
		&fittest.Session{Start: runStart, Elapsed: 30 * time.Second, DistanceM: 1000},
		steadyRun(),
	))
	require.NoError(t, fittest.WriteFile(
		filepath.Join(dir, "2024-06-02.FIT"),
		runStart.Add(24*time.Hour),
		nil,
		steadyRun(),
	))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.fit"), []byte("not a fit file"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	return dir
}

func testOptions(t *testing.T, dir string, logs *bytes.Buffer) Options {
	t.Helper()
	return Options{
		ActivitiesDir: dir,
		LogPath:       filepath.Join(t.TempDir(), "zones-log.csv"),
		Analysis:      fitzones.DefaultConfig(),
		Logger:        log.New(logs, "", 0),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestListActivityFiles(t *testing.T) {
	dir := writeActivities(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.fit"), 0o755))

	files, err := ListActivityFiles(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "2024-06-01.fit"),
		filepath.Join(dir, "2024-06-02.FIT"),
		filepath.Join(dir, "bad.fit"),
	}, files)
}

func TestRunWritesLogAndSkipsBadFiles(t *testing.T) {
	dir := writeActivities(t)
	var logs, out bytes.Buffer
	opts := testOptions(t, dir, &logs)
	opts.Out = &out

	res, err := Run(opts)
	require.NoError(t, err)
	require.Equal(t, 3, res.Found)
	require.Equal(t, 2, res.Processed)
	require.Equal(t, []string{"bad.fit"}, res.Skipped)
	require.Empty(t, res.Failed)
	require.Len(t, res.Rows, 2)
	require.Contains(t, logs.String(), "skipping bad.fit")

	require.Contains(t, out.String(), "Time in Zones (moving)")
	require.Contains(t, out.String(), "Start: Unknown")

	rows := readCSV(t, opts.LogPath)
	require.Equal(t, [][]string{
		{"Date", "Distance (km)", "Total Duration", "Zone 1", "Zone 2", "Zone 3", "Zone 4", "Zone 5", "Moving Time"},
		{"2024-06-01", "1.00", "00:00:30", "00:00:00", "00:00:10", "00:00:10", "00:00:00", "00:00:10", "00:00:30"},
		{"Unknown", "0.00", "00:00:00", "00:00:00", "00:00:10", "00:00:10", "00:00:00", "00:00:10", "00:00:30"},
	}, rows)
}

func TestRunAppendsWithoutRepeatingHeader(t *testing.T) {
	dir := writeActivities(t)
	var logs bytes.Buffer
	opts := testOptions(t, dir, &logs)

	_, err := Run(opts)
	require.NoError(t, err)
	_, err = Run(opts)
	require.NoError(t, err)

	rows := readCSV(t, opts.LogPath)
	require.Len(t, rows, 5)
	require.Equal(t, "Date", rows[0][0])
	for _, row := range rows[1:] {
		require.NotEqual(t, "Date", row[0])
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	var logs bytes.Buffer
	opts := testOptions(t, t.TempDir(), &logs)

	res, err := Run(opts)
	require.NoError(t, err)
	require.Zero(t, res.Found)
	require.Zero(t, res.Processed)
	require.Contains(t, logs.String(), "no .fit files")

	_, err = os.Stat(opts.LogPath)
	require.True(t, os.IsNotExist(err))
}

func TestRunMissingDirectory(t *testing.T) {
	var logs bytes.Buffer
	opts := testOptions(t, filepath.Join(t.TempDir(), "missing"), &logs)

	_, err := Run(opts)
	require.Error(t, err)
}

func TestRunRequiresZones(t *testing.T) {
	var logs bytes.Buffer
	opts := testOptions(t, t.TempDir(), &logs)
	opts.Analysis.Zones = nil

	_, err := Run(opts)
	require.ErrorIs(t, err, fitzones.ErrNoZones)
}

func TestRunOptionalSinks(t *testing.T) {
	dir := writeActivities(t)
	var logs bytes.Buffer
	opts := testOptions(t, dir, &logs)
	out := t.TempDir()
	opts.SamplesDir = filepath.Join(out, "samples")
	opts.DBPath = filepath.Join(out, "db", "history.db")
	opts.MetricsPath = filepath.Join(out, "fitzones.prom")

	res, err := Run(opts)
	require.NoError(t, err)
	require.Empty(t, res.Failed)
	require.NotEmpty(t, res.RunID)

	fr, err := local.NewLocalFileReader(filepath.Join(opts.SamplesDir, "2024-06-01.samples.parquet"))
	require.NoError(t, err)
	pr, err := reader.NewParquetReader(fr, new(sampleParquetRow), 1)
	require.NoError(t, err)
	require.EqualValues(t, 4, pr.GetNumRows())
	pr.ReadStop()
	require.NoError(t, fr.Close())
	require.FileExists(t, filepath.Join(opts.SamplesDir, "2024-06-02.samples.parquet"))

	db, err := store.Open(opts.DBPath)
	require.NoError(t, err)
	defer db.Close()
	activities, err := db.ActivitiesForRun(res.RunID)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	require.Equal(t, "2024-06-01.fit", activities[0].FileName)
	require.True(t, activities[0].StartTime.Equal(runStart))
	require.True(t, activities[1].StartTime.IsZero())
	require.Len(t, activities[0].Zones, 5)
	require.InDelta(t, 10.0, activities[0].Zones[1].Seconds, 1e-9)
	require.InDelta(t, 30.0, activities[0].MovingSeconds, 1e-9)

	text, err := os.ReadFile(opts.MetricsPath)
	require.NoError(t, err)
	require.Contains(t, string(text), "fitzones_pipeline_activities_processed_total 2")
	require.Contains(t, string(text), "fitzones_pipeline_activities_skipped_total 1")
	require.Contains(t, string(text), `fitzones_aggregate_zone_seconds_total{zone="Zone 5"} 20`)
}

func TestRunLogsExportFailures(t *testing.T) {
	dir := writeActivities(t)
	var logs bytes.Buffer
	opts := testOptions(t, dir, &logs)
	// A regular file where the samples directory should be.
	blocker := filepath.Join(t.TempDir(), "samples")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	opts.SamplesDir = blocker

	_, err := Run(opts)
	require.Error(t, err)

	opts.SamplesDir = ""
	opts.LogPath = filepath.Join(t.TempDir(), "missing", "zones-log.csv")
	res, err := Run(opts)
	require.NoError(t, err)
	require.Equal(t, 2, res.Processed)
	require.Equal(t, []string{"2024-06-01.fit", "2024-06-02.FIT"}, res.Failed)
	require.Empty(t, res.Rows)
	require.True(t, strings.Contains(logs.String(), "append log row"))
}

func TestRunMetricsRecordAnalysis(t *testing.T) {
	m := newRunMetrics()
	m.recordAnalysis(&fitzones.Analysis{Result: fitzones.Result{
		Zones:            []fitzones.ZoneTime{{Label: "Zone 1", Seconds: 12}, {Label: "Zone 2", Seconds: 3}},
		MovingSeconds:    20,
		SkippedIntervals: 2,
	}})

	require.Equal(t, 1.0, testutil.ToFloat64(m.processed))
	require.Equal(t, 2.0, testutil.ToFloat64(m.skippedIntervals))
	require.Equal(t, 20.0, testutil.ToFloat64(m.movingSeconds))
	require.Equal(t, 12.0, testutil.ToFloat64(m.zoneSeconds.WithLabelValues("Zone 1")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.skipped))
}

func TestLogRowFields(t *testing.T) {
	row := NewLogRow(&fitzones.Analysis{
		Summary: fitzones.Summary{ElapsedSeconds: 3725, DistanceMeters: 10234},
		Result: fitzones.Result{
			Zones:         []fitzones.ZoneTime{{Label: "Easy", Seconds: 59.6}, {Label: "Hard"}},
			MovingSeconds: 3600,
		},
	})
	require.Equal(t, []string{"Unknown", "10.23", "01:02:05", "00:01:00", "00:00:00", "01:00:00"}, row.Fields())
	require.Equal(t, []string{"Date", "Distance (km)", "Total Duration", "Easy", "Hard", "Moving Time"},
		LogHeader(fitzones.ZoneTable{{Label: "Easy", Low: 1, High: 2}, {Label: "Hard", Low: 3, High: 4}}))
}

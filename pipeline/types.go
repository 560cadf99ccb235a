package pipeline

import (
	"io"
	"log"

	fitzones "github.com/lucasjlepore/fitzones"
)

// Options configures one pipeline run over a directory of activity files.
type Options struct {
	ActivitiesDir string
	LogPath       string // CSV log, appended once per activity
	Analysis      fitzones.Config

	SamplesDir  string // parquet sample export, optional
	DBPath      string // SQLite history, optional
	MetricsPath string // Prometheus textfile, optional

	// Out receives the per-activity reports. Nil discards them.
	Out    io.Writer
	Logger *log.Logger
}

// Result summarizes a run.
type Result struct {
	RunID     string   `json:"run_id,omitempty"`
	Found     int      `json:"found"`
	Processed int      `json:"processed"`
	Skipped   []string `json:"skipped,omitempty"`
	// Failed lists activities that were analyzed but not fully exported.
	Failed []string `json:"failed,omitempty"`
	Rows   []LogRow `json:"rows,omitempty"`
}

// LogRow is one line of the persisted CSV log, already formatted.
type LogRow struct {
	Date          string   `json:"date"`
	DistanceKM    string   `json:"distance_km"`
	TotalDuration string   `json:"total_duration"`
	Zones         []string `json:"zones"`
	MovingTime    string   `json:"moving_time"`
}

// Fields returns the row in column order.
func (r LogRow) Fields() []string {
	out := make([]string, 0, len(r.Zones)+4)
	out = append(out, r.Date, r.DistanceKM, r.TotalDuration)
	out = append(out, r.Zones...)
	return append(out, r.MovingTime)
}

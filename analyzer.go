// Package fitzones computes time spent in heart-rate zones while moving from
// FIT activity files.
package fitzones

import (
	"errors"
	"fmt"
)

// ErrNoZones is returned when analysis is requested without a zone table.
var ErrNoZones = errors.New("zone table is empty")

// Config controls zone classification for one activity.
type Config struct {
	Zones              ZoneTable
	MovingThresholdMPS float64
}

// DefaultConfig returns the built-in zones and moving threshold.
func DefaultConfig() Config {
	return Config{
		Zones:              DefaultZones(),
		MovingThresholdMPS: DefaultMovingThresholdMPS,
	}
}

// Analysis is the per-activity output handed to the report and export layer.
type Analysis struct {
	FilePath       string   `json:"file_path"`
	Summary        Summary  `json:"summary"`
	Result         Result   `json:"result"`
	Samples        []Sample `json:"-"`
	RecordCount    int      `json:"record_count"`
	DroppedRecords int      `json:"dropped_records"`
}

// AnalyzeFile decodes a FIT activity file and computes time in zones.
func AnalyzeFile(path string, cfg Config) (*Analysis, error) {
	if len(cfg.Zones) == 0 {
		return nil, ErrNoZones
	}
	activity, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	analysis := AnalyzeActivity(activity, cfg)
	analysis.FilePath = path
	return analysis, nil
}

// AnalyzeActivity runs normalization and aggregation over an already decoded
// activity.
func AnalyzeActivity(activity *Activity, cfg Config) *Analysis {
	if activity == nil {
		activity = &Activity{}
	}
	samples := Normalize(activity.Records)
	return &Analysis{
		Summary:        activity.Summary,
		Result:         Aggregate(samples, cfg.Zones, cfg.MovingThresholdMPS),
		Samples:        samples,
		RecordCount:    len(activity.Records),
		DroppedRecords: len(activity.Records) - len(samples),
	}
}

// String is a short one-line description used in log output.
func (a *Analysis) String() string {
	if a == nil {
		return "<nil analysis>"
	}
	return fmt.Sprintf("%s: %d samples (%d dropped), moving %s",
		a.FilePath, len(a.Samples), a.DroppedRecords, FormatClock(a.Result.MovingSeconds))
}

package fitzones

import "time"

// RawRecord is one decoded per-record message. Every field is optional.
type RawRecord interface {
	Timestamp() (time.Time, bool)
	HeartRate() (int, bool)
	Speed() (float64, bool)
}

// Record is a plain RawRecord; nil fields are missing.
type Record struct {
	Time     *time.Time
	HR       *int
	SpeedMPS *float64
}

func (r Record) Timestamp() (time.Time, bool) {
	if r.Time == nil {
		return time.Time{}, false
	}
	return *r.Time, true
}

func (r Record) HeartRate() (int, bool) {
	if r.HR == nil {
		return 0, false
	}
	return *r.HR, true
}

func (r Record) Speed() (float64, bool) {
	if r.SpeedMPS == nil {
		return 0, false
	}
	return *r.SpeedMPS, true
}

// Sample is one admitted point of the normalized series.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	HeartRate int       `json:"heart_rate_bpm"`
	Speed     float64   `json:"speed_mps"`
}

// Normalize turns decoder output into a strictly time-increasing series.
//
// Records without a timestamp or heart rate are discarded, as is any record whose
// timestamp is not after the last admitted one. A missing speed becomes 0, which
// reads as not moving.
func Normalize(records []RawRecord) []Sample {
	out := make([]Sample, 0, len(records))
	var last time.Time
	for _, rec := range records {
		if rec == nil {
			continue
		}
		ts, ok := rec.Timestamp()
		if !ok {
			continue
		}
		hr, ok := rec.HeartRate()
		if !ok {
			continue
		}
		if len(out) > 0 && !ts.After(last) {
			continue
		}
		speed, ok := rec.Speed()
		if !ok || !isFinite(speed) || speed < 0 {
			speed = 0
		}
		out = append(out, Sample{Timestamp: ts, HeartRate: hr, Speed: speed})
		last = ts
	}
	return out
}

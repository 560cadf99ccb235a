package fitzones

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/tormoder/fit"
)

// Summary holds the session-level totals reported by the device. It is not
// reconciled with the sample series.
type Summary struct {
	Sport          string    `json:"sport,omitempty"`
	StartTime      time.Time `json:"start_time"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	TimerSeconds   float64   `json:"timer_seconds"`
	DistanceMeters float64   `json:"distance_meters"`
}

// HasStartTime reports whether the session carried a usable start time.
func (s Summary) HasStartTime() bool {
	return !s.StartTime.IsZero()
}

// Activity is one decoded activity file.
type Activity struct {
	Summary Summary
	Records []RawRecord
}

// DecodeFile opens and decodes one FIT activity file.
func DecodeFile(path string) (*Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// DecodeBytes decodes an in-memory FIT activity file.
func DecodeBytes(data []byte) (*Activity, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a FIT activity. Missing session data is left zero rather than
// treated as an error.
func Decode(r io.Reader) (*Activity, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	out := &Activity{
		Records: make([]RawRecord, 0, len(activity.Records)),
	}
	if len(activity.Sessions) > 0 && activity.Sessions[0] != nil {
		out.Summary = summaryFromSession(activity.Sessions[0])
	}
	for _, rec := range activity.Records {
		if rec == nil {
			continue
		}
		out.Records = append(out.Records, fitRecord{msg: rec})
	}
	return out, nil
}

func summaryFromSession(s *fit.SessionMsg) Summary {
	return Summary{
		Sport:          fmt.Sprint(s.Sport),
		StartTime:      validTimeOrZero(s.StartTime),
		ElapsedSeconds: safePositive(s.GetTotalElapsedTimeScaled()),
		TimerSeconds:   safePositive(s.GetTotalTimerTimeScaled()),
		DistanceMeters: safePositive(s.GetTotalDistanceScaled()),
	}
}

// fitRecord adapts a FIT record message, mapping invalid sentinels to missing.
type fitRecord struct {
	msg *fit.RecordMsg
}

func (r fitRecord) Timestamp() (time.Time, bool) {
	ts := validTimeOrZero(r.msg.Timestamp)
	return ts, !ts.IsZero()
}

func (r fitRecord) HeartRate() (int, bool) {
	if r.msg.HeartRate == math.MaxUint8 {
		return 0, false
	}
	return int(r.msg.HeartRate), true
}

func (r fitRecord) Speed() (float64, bool) {
	speed := r.msg.GetEnhancedSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	speed = r.msg.GetSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	return 0, false
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}

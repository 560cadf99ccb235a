// Package fittest builds small FIT activity files for tests.
package fittest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/tormoder/fit"
)

// Point is one record message. Negative HR or SpeedMPS leave the field invalid.
type Point struct {
	Offset   time.Duration
	HR       int
	SpeedMPS float64
}

// Session describes the session summary message. The zero Start omits the
// start time field.
type Session struct {
	Start     time.Time
	Elapsed   time.Duration
	Timer     time.Duration
	DistanceM float64
}

// Build encodes an activity file. Record timestamps are base+Offset; a nil
// session leaves the file without a session message.
func Build(base time.Time, session *Session, points []Point) ([]byte, error) {
	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		return nil, fmt.Errorf("new fit file: %w", err)
	}
	activity, err := file.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity accessor: %w", err)
	}

	for _, p := range points {
		rec := fit.NewRecordMsg()
		rec.Timestamp = base.Add(p.Offset)
		if p.HR >= 0 {
			rec.HeartRate = uint8(p.HR)
		}
		if p.SpeedMPS >= 0 {
			rec.Speed = uint16(math.Round(p.SpeedMPS * 1000))
		}
		activity.Records = append(activity.Records, rec)
	}

	if session != nil {
		msg := fit.NewSessionMsg()
		msg.Sport = fit.SportRunning
		if !session.Start.IsZero() {
			msg.StartTime = session.Start
		}
		msg.Timestamp = base.Add(session.Elapsed)
		msg.TotalElapsedTime = uint32(session.Elapsed.Milliseconds())
		timer := session.Timer
		if timer == 0 {
			timer = session.Elapsed
		}
		msg.TotalTimerTime = uint32(timer.Milliseconds())
		msg.TotalDistance = uint32(math.Round(session.DistanceM * 100))
		activity.Sessions = append(activity.Sessions, msg)
	}

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("encode fit: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile builds an activity file and writes it to path.
func WriteFile(path string, base time.Time, session *Session, points []Point) error {
	data, err := Build(base, session, points)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

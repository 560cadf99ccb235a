package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	fitzones "github.com/lucasjlepore/fitzones"
)

// LogHeader returns the CSV header for a zone table.
func LogHeader(zones fitzones.ZoneTable) []string {
	header := []string{"Date", "Distance (km)", "Total Duration"}
	header = append(header, zones.Labels()...)
	return append(header, "Moving Time")
}

// NewLogRow formats an analysis for the CSV log. Zone columns follow the order
// of the result, which is the zone table order.
func NewLogRow(a *fitzones.Analysis) LogRow {
	row := LogRow{
		Date:          fitzones.FormatDate(a.Summary.StartTime),
		DistanceKM:    fitzones.FormatDistanceKM(a.Summary.DistanceMeters),
		TotalDuration: fitzones.FormatClock(a.Summary.ElapsedSeconds),
		Zones:         make([]string, 0, len(a.Result.Zones)),
		MovingTime:    fitzones.FormatClock(a.Result.MovingSeconds),
	}
	for _, z := range a.Result.Zones {
		row.Zones = append(row.Zones, fitzones.FormatClock(z.Seconds))
	}
	return row
}

// AppendLogRow opens path in append mode, writes the header if the file did
// not exist before, then writes row and closes the file.
func AppendLogRow(path string, header []string, row LogRow) (err error) {
	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, os.ErrNotExist)
	if statErr != nil && !isNew {
		return fmt.Errorf("stat log file: %w", statErr)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close log file: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	if err := w.Write(row.Fields()); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

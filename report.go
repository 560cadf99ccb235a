package fitzones

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// UnknownDate is written in place of a missing session start time.
const UnknownDate = "Unknown"

// BuildZoneReport renders a human-readable summary of one analysis.
func BuildZoneReport(a *Analysis) string {
	if a == nil {
		return ""
	}

	var b strings.Builder
	if a.FilePath != "" {
		fmt.Fprintf(&b, "Activity: %s\n", a.FilePath)
	}
	if a.Summary.HasStartTime() {
		fmt.Fprintf(&b, "Start: %s\n", a.Summary.StartTime.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Fprintf(&b, "Start: %s\n", UnknownDate)
	}
	fmt.Fprintf(
		&b,
		"Duration %s | Distance %s km | Moving %s\n",
		FormatClock(a.Summary.ElapsedSeconds),
		FormatDistanceKM(a.Summary.DistanceMeters),
		FormatClock(a.Result.MovingSeconds),
	)

	if len(a.Samples) < 2 {
		b.WriteString("No usable heart-rate telemetry.\n")
	}

	b.WriteString("\nTime in Zones (moving)\n")
	for _, z := range a.Result.Zones {
		fmt.Fprintf(
			&b,
			"- %s: %s (%.1f%%)\n",
			z.Label,
			FormatClock(z.Seconds),
			pct(z.Seconds, a.Result.MovingSeconds),
		)
	}
	if unzoned := a.Result.UnzonedSeconds(); unzoned >= 0.5 {
		fmt.Fprintf(&b, "- outside all zones: %s (%.1f%%)\n", FormatClock(unzoned), pct(unzoned, a.Result.MovingSeconds))
	}

	return strings.TrimSpace(b.String())
}

// FormatClock renders seconds as hh:mm:ss, rounded to whole seconds. Hours are
// not capped.
func FormatClock(seconds float64) string {
	if !isFinite(seconds) || seconds <= 0 {
		return "00:00:00"
	}
	s := int64(math.Round(seconds))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// FormatDistanceKM renders meters as kilometers with two decimals.
func FormatDistanceKM(meters float64) string {
	return fmt.Sprintf("%.2f", safePositive(meters)/1000.0)
}

// FormatDate renders a start time at day precision, or UnknownDate.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return UnknownDate
	}
	return t.UTC().Format("2006-01-02")
}

func pct(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100.0
}

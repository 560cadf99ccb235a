package fitzones

import (
	"fmt"
	"math"
	"strings"
)

// DefaultMovingThresholdMPS is the speed an interval's leading sample must exceed
// to count as moving (10 km/h).
const DefaultMovingThresholdMPS = 2.78

// Zone is a named heart-rate band with inclusive bounds in beats per minute.
type Zone struct {
	Label string `json:"label"`
	Low   int    `json:"low"`
	High  int    `json:"high"`
}

// Contains reports whether hr lies inside [Low, High]. A zone with Low > High
// never matches.
func (z Zone) Contains(hr int) bool {
	return hr >= z.Low && hr <= z.High
}

// ZoneTable is evaluated in order; the first zone containing a heart rate wins.
type ZoneTable []Zone

// DefaultZones returns the five-zone table used when no configuration is given.
func DefaultZones() ZoneTable {
	return ZoneTable{
		{Label: "Zone 1", Low: 79, High: 98},
		{Label: "Zone 2", Low: 99, High: 123},
		{Label: "Zone 3", Low: 124, High: 136},
		{Label: "Zone 4", Low: 137, High: 148},
		{Label: "Zone 5", Low: 149, High: 220},
	}
}

// NewZone builds a zone from numeric bounds such as those decoded from
// JavaScript or JSON numbers. Bounds must be finite whole numbers.
func NewZone(label string, low, high float64) (Zone, error) {
	for _, b := range []struct {
		name string
		v    float64
	}{{"low", low}, {"high", high}} {
		if math.IsNaN(b.v) || math.IsInf(b.v, 0) || b.v != math.Trunc(b.v) {
			return Zone{}, fmt.Errorf("zone %q: %s bound %v is not a whole number", label, b.name, b.v)
		}
		if math.Abs(b.v) > math.MaxInt32 {
			return Zone{}, fmt.Errorf("zone %q: %s bound %v out of range", label, b.name, b.v)
		}
	}
	return Zone{Label: label, Low: int(low), High: int(high)}, nil
}

// Match returns the index of the first zone containing hr, or -1.
func (t ZoneTable) Match(hr int) int {
	for i, z := range t {
		if z.Contains(hr) {
			return i
		}
	}
	return -1
}

// Labels returns the zone labels in table order.
func (t ZoneTable) Labels() []string {
	out := make([]string, 0, len(t))
	for _, z := range t {
		out = append(out, z.Label)
	}
	return out
}

// Validate checks labels only. Inverted bounds are allowed and simply never match.
func (t ZoneTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("zone table is empty")
	}
	seen := make(map[string]struct{}, len(t))
	for i, z := range t {
		label := strings.TrimSpace(z.Label)
		if label == "" {
			return fmt.Errorf("zone %d has an empty label", i+1)
		}
		if _, ok := seen[label]; ok {
			return fmt.Errorf("duplicate zone label %q", label)
		}
		seen[label] = struct{}{}
	}
	return nil
}

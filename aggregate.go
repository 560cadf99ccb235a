package fitzones

// ZoneTime is the moving time attributed to one zone.
type ZoneTime struct {
	Label   string  `json:"label"`
	Seconds float64 `json:"seconds"`
}

// Result is the zone-time aggregate for one activity.
type Result struct {
	Zones            []ZoneTime `json:"zones"`
	MovingSeconds    float64    `json:"moving_seconds"`
	SkippedIntervals int        `json:"skipped_intervals,omitempty"`
}

// Seconds returns the time accumulated for label; unknown labels read as zero.
func (r Result) Seconds(label string) float64 {
	for _, z := range r.Zones {
		if z.Label == label {
			return z.Seconds
		}
	}
	return 0
}

// ZonedSeconds is the sum of all per-zone times. It never exceeds MovingSeconds.
func (r Result) ZonedSeconds() float64 {
	total := 0.0
	for _, z := range r.Zones {
		total += z.Seconds
	}
	return total
}

// UnzonedSeconds is moving time whose heart rate matched no zone.
func (r Result) UnzonedSeconds() float64 {
	d := r.MovingSeconds - r.ZonedSeconds()
	if d < 0 {
		return 0
	}
	return d
}

// Aggregate walks adjacent sample pairs and accumulates moving time per zone.
//
// Each interval is classified by its leading sample: it counts only when that
// sample's speed is strictly above thresholdMPS, and its duration goes to the
// first zone containing that sample's heart rate. Moving intervals that match no
// zone still count toward MovingSeconds. Intervals with a non-positive duration
// are skipped and counted in SkippedIntervals.
func Aggregate(samples []Sample, zones ZoneTable, thresholdMPS float64) Result {
	res := Result{Zones: make([]ZoneTime, len(zones))}
	for i, z := range zones {
		res.Zones[i].Label = z.Label
	}
	if len(samples) < 2 {
		return res
	}

	for i := 1; i < len(samples); i++ {
		lead := samples[i-1]
		duration := samples[i].Timestamp.Sub(lead.Timestamp).Seconds()
		if duration <= 0 || !isFinite(duration) {
			res.SkippedIntervals++
			continue
		}
		if !(lead.Speed > thresholdMPS) {
			continue
		}
		res.MovingSeconds += duration
		if idx := zones.Match(lead.HeartRate); idx >= 0 {
			res.Zones[idx].Seconds += duration
		}
	}
	return res
}

// ClassifySamples labels each sample with the zone and moving state its outgoing
// interval would receive. The last sample starts no interval and is never moving.
func ClassifySamples(samples []Sample, zones ZoneTable, thresholdMPS float64) (moving []bool, labels []string) {
	moving = make([]bool, len(samples))
	labels = make([]string, len(samples))
	for i, s := range samples {
		if idx := zones.Match(s.HeartRate); idx >= 0 {
			labels[i] = zones[idx].Label
		}
		if i == len(samples)-1 {
			continue
		}
		moving[i] = s.Speed > thresholdMPS && samples[i+1].Timestamp.After(s.Timestamp)
	}
	return moving, labels
}

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	fitzones "github.com/lucasjlepore/fitzones"
)

const metricsNamespace = "fitzones"

// runMetrics is registered on a private registry so each run starts from zero.
type runMetrics struct {
	registry *prometheus.Registry

	processed        prometheus.Counter
	skipped          prometheus.Counter
	exportFailures   prometheus.Counter
	skippedIntervals prometheus.Counter
	movingSeconds    prometheus.Counter
	zoneSeconds      *prometheus.CounterVec
}

func newRunMetrics() *runMetrics {
	m := &runMetrics{
		registry: prometheus.NewRegistry(),
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "activities_processed_total",
			Help:      "Number of activity files analyzed successfully.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "activities_skipped_total",
			Help:      "Number of activity files skipped because they could not be decoded.",
		}),
		exportFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "export_failures_total",
			Help:      "Number of per-activity export steps that failed.",
		}),
		skippedIntervals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "aggregate",
			Name:      "intervals_skipped_total",
			Help:      "Number of sample intervals skipped for a non-positive duration.",
		}),
		movingSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "aggregate",
			Name:      "moving_seconds_total",
			Help:      "Total moving time across analyzed activities.",
		}),
		zoneSeconds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "aggregate",
			Name:      "zone_seconds_total",
			Help:      "Moving time attributed to each heart-rate zone.",
		}, []string{"zone"}),
	}
	m.registry.MustRegister(
		m.processed,
		m.skipped,
		m.exportFailures,
		m.skippedIntervals,
		m.movingSeconds,
		m.zoneSeconds,
	)
	return m
}

func (m *runMetrics) recordAnalysis(a *fitzones.Analysis) {
	m.processed.Inc()
	m.skippedIntervals.Add(float64(a.Result.SkippedIntervals))
	m.movingSeconds.Add(a.Result.MovingSeconds)
	for _, z := range a.Result.Zones {
		m.zoneSeconds.WithLabelValues(z.Label).Add(z.Seconds)
	}
}

func (m *runMetrics) writeTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

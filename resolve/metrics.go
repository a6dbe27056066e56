package resolve

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of snapshot publication and resolution.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SnapshotsPublished prometheus.Counter
	SnapshotVersion    prometheus.Gauge
	Instruments        *prometheus.GaugeVec // labels: state=active|inactive
	Aliases            prometheus.Gauge
	BuildDuration      prometheus.Histogram
	Resolutions        *prometheus.CounterVec // labels: match_type of the best match, or none
}

// NewMetrics creates the metrics and registers them with 'reg', if not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "instrument_snapshots_published_total",
			Help: "Total catalog snapshots published",
		}),
		SnapshotVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "instrument_snapshot_version",
			Help: "Version of the current catalog snapshot",
		}),
		Instruments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "instrument_catalog_instruments",
			Help: "Instruments in the current snapshot (by state)",
		}, []string{"state"}),
		Aliases: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "instrument_catalog_aliases",
			Help: "Broker aliases in the current snapshot",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "instrument_snapshot_build_duration_seconds",
			Help:    "Time spent building a snapshot",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "instrument_resolutions_total",
			Help: "Total resolutions (by match type of the best match)",
		}, []string{"match_type"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.SnapshotsPublished,
			m.SnapshotVersion,
			m.Instruments,
			m.Aliases,
			m.BuildDuration,
			m.Resolutions,
		)
	}
	return m
}

func (m *Metrics) observePublish(s *Snapshot) {
	if m == nil {
		return
	}
	m.SnapshotsPublished.Inc()
	m.SnapshotVersion.Set(float64(s.Version))
	m.Instruments.WithLabelValues("active").Set(float64(s.Index.Len()))
	m.Instruments.WithLabelValues("inactive").Set(float64(s.Catalog.Len() - s.Index.Len()))
	m.Aliases.Set(float64(s.Mapper.Len()))
	m.BuildDuration.Observe(s.Duration.Seconds())
}

func (m *Metrics) observeResolve(matches []Match) {
	if m == nil {
		return
	}
	label := "none"
	if len(matches) > 0 {
		label = matches[0].Type.String()
	}
	m.Resolutions.WithLabelValues(label).Inc()
}

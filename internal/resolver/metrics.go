package resolver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains resolution pipeline metrics.
type Metrics struct {
	registerer prometheus.Registerer

	// resolutionsTotal counts resolutions by outcome.
	resolutionsTotal *prometheus.CounterVec

	// resolutionDuration measures end-to-end resolution duration.
	resolutionDuration *prometheus.HistogramVec

	// stageDuration measures per-stage duration.
	stageDuration *prometheus.HistogramVec

	// candidatesInitial observes the candidate set size before filtering.
	candidatesInitial prometheus.Histogram

	// candidatesFiltered observes the candidate set size after filtering.
	candidatesFiltered prometheus.Histogram

	// filterDrops counts candidates dropped per filter.
	filterDrops *prometheus.CounterVec

	// chainRebuilds counts recomputations of the filter chain ordering.
	chainRebuilds prometheus.Counter

	// filterCount tracks the number of registered filters.
	filterCount prometheus.Gauge
}

// NewMetrics creates new resolution metrics.
// Metrics are registered with prometheus.DefaultRegisterer so they are
// automatically exposed on the default /metrics endpoint.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates a new Metrics instance with a custom
// registerer. This is useful for registering metrics with the server's
// own registry so they appear on its /metrics endpoint.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "avrouter"
	}

	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		registerer: registerer,
	}

	m.resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Total number of route resolutions",
		},
		[]string{"outcome"},
	)

	m.resolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolution_duration_seconds",
			Help:      "End-to-end route resolution duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"outcome"},
	)

	m.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "stage_duration_seconds",
			Help:      "Per-stage resolution duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"stage"},
	)

	m.candidatesInitial = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "candidates_initial",
			Help:      "Candidate set size before filtering",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	m.candidatesFiltered = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "candidates_filtered",
			Help:      "Candidate set size after filtering",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	m.filterDrops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "filter_dropped_total",
			Help:      "Total number of candidates dropped per filter",
		},
		[]string{"filter"},
	)

	m.chainRebuilds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "chain_rebuilds_total",
			Help:      "Total number of filter chain order recomputations",
		},
	)

	m.filterCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "filter_count",
			Help:      "Number of registered filters",
		},
	)

	// Register all metrics with the provided registerer, ignoring duplicates.
	collectors := []prometheus.Collector{
		m.resolutionsTotal,
		m.resolutionDuration,
		m.stageDuration,
		m.candidatesInitial,
		m.candidatesFiltered,
		m.filterDrops,
		m.chainRebuilds,
		m.filterCount,
	}
	for _, c := range collectors {
		_ = registerer.Register(c)
	}

	return m
}

// Init pre-initializes common label combinations with zero values so
// that metrics appear in /metrics output immediately after startup.
// Prometheus *Vec types only emit metric lines after WithLabelValues()
// is called at least once. This method is idempotent and safe to call
// multiple times.
func (m *Metrics) Init() {
	if m == nil {
		return
	}
	outcomes := []string{
		"matched", "no_route", "ambiguous", "unknown_route",
		"provider_unavailable", "provider_error", "filter_error",
		"matcher_error", "lookup_error",
	}
	for _, outcome := range outcomes {
		m.resolutionsTotal.WithLabelValues(outcome)
		m.resolutionDuration.WithLabelValues(outcome)
	}
	for _, stage := range []string{"provider", "filters", "matcher", "lookup"} {
		m.stageDuration.WithLabelValues(stage)
	}
}

// RecordResolution records a completed resolution.
func (m *Metrics) RecordResolution(outcome string, duration time.Duration) {
	if m == nil || m.resolutionsTotal == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(outcome).Inc()
	m.resolutionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordStage records a pipeline stage duration.
func (m *Metrics) RecordStage(stage string, duration time.Duration) {
	if m == nil || m.stageDuration == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordCandidates records the candidate set sizes around filtering.
func (m *Metrics) RecordCandidates(initial, filtered int) {
	if m == nil || m.candidatesInitial == nil {
		return
	}
	m.candidatesInitial.Observe(float64(initial))
	m.candidatesFiltered.Observe(float64(filtered))
}

// RecordFilterDrop records candidates dropped by a filter pass.
func (m *Metrics) RecordFilterDrop(filter string, dropped int) {
	if m == nil || m.filterDrops == nil {
		return
	}
	if dropped < 0 {
		dropped = 0
	}
	m.filterDrops.WithLabelValues(filter).Add(float64(dropped))
}

// RecordChainRebuild records a filter chain order recomputation.
func (m *Metrics) RecordChainRebuild() {
	if m == nil || m.chainRebuilds == nil {
		return
	}
	m.chainRebuilds.Inc()
}

// SetFilterCount sets the registered filter gauge.
func (m *Metrics) SetFilterCount(count int) {
	if m == nil || m.filterCount == nil {
		return
	}
	m.filterCount.Set(float64(count))
}

package matcher

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks the shared compiled-regex cache.
type CacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	size      prometheus.Gauge
}

// NewCacheMetrics creates cache metrics on the default registerer.
func NewCacheMetrics(namespace string) *CacheMetrics {
	return NewCacheMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewCacheMetricsWithRegisterer creates cache metrics registered with a
// custom registerer, typically the server's own registry.
func NewCacheMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *CacheMetrics {
	if namespace == "" {
		namespace = "avrouter"
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &CacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matcher",
			Name:      "regex_cache_hits_total",
			Help:      "Total number of compiled-regex cache hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matcher",
			Name:      "regex_cache_misses_total",
			Help:      "Total number of compiled-regex cache misses",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matcher",
			Name:      "regex_cache_evictions_total",
			Help:      "Total number of compiled-regex cache evictions",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "matcher",
			Name:      "regex_cache_size",
			Help:      "Current number of entries in the compiled-regex cache",
		}),
	}

	for _, c := range []prometheus.Collector{m.hits, m.misses, m.evictions, m.size} {
		_ = registerer.Register(c)
	}

	return m
}

// RecordHit records a cache hit.
func (m *CacheMetrics) RecordHit() {
	if m == nil || m.hits == nil {
		return
	}
	m.hits.Inc()
}

// RecordMiss records a cache miss.
func (m *CacheMetrics) RecordMiss() {
	if m == nil || m.misses == nil {
		return
	}
	m.misses.Inc()
}

// RecordEviction records an eviction.
func (m *CacheMetrics) RecordEviction() {
	if m == nil || m.evictions == nil {
		return
	}
	m.evictions.Inc()
}

// SetSize sets the current cache size.
func (m *CacheMetrics) SetSize(n int) {
	if m == nil || m.size == nil {
		return
	}
	m.size.Set(float64(n))
}

var (
	cacheMetricsMu sync.RWMutex
	cacheMetrics   *CacheMetrics
)

// SetCacheMetrics installs the metrics instance the regex cache reports
// to. The cache is package-shared, so its metrics are too; without an
// installed instance nothing is recorded.
func SetCacheMetrics(m *CacheMetrics) {
	cacheMetricsMu.Lock()
	cacheMetrics = m
	cacheMetricsMu.Unlock()
}

func currentCacheMetrics() *CacheMetrics {
	cacheMetricsMu.RLock()
	defer cacheMetricsMu.RUnlock()
	return cacheMetrics
}

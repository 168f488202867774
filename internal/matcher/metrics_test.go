package matcher

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheMetrics_Records(t *testing.T) {
	t.Parallel()

	m := NewCacheMetricsWithRegisterer("test", prometheus.NewRegistry())

	m.RecordHit()
	m.RecordMiss()
	m.RecordMiss()
	m.RecordEviction()
	m.SetSize(7)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.hits))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.misses))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.evictions))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.size))
}

func TestCacheMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *CacheMetrics
	assert.NotPanics(t, func() {
		m.RecordHit()
		m.RecordMiss()
		m.RecordEviction()
		m.SetSize(1)
	})
}

func TestCacheMetrics_CacheReportsToInstalledInstance(t *testing.T) {
	m := NewCacheMetricsWithRegisterer("test", prometheus.NewRegistry())
	SetCacheMetrics(m)
	t.Cleanup(func() { SetCacheMetrics(nil) })

	pattern := "^/cache-metrics-install/[0-9]+$"
	_, err := compileCached(pattern)
	require.NoError(t, err)
	_, err = compileCached(pattern)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, testutil.ToFloat64(m.misses), float64(1))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.hits), float64(1))
}

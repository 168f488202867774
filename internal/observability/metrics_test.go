package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherNames(t *testing.T, m *Metrics) map[string]*dto.MetricFamily {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		byName[f.GetName()] = f
	}
	return byName
}

func TestMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	m := NewMetrics("testns")
	m.RecordRequest("blog_show", http.MethodGet, http.StatusOK, 5*time.Millisecond, 128)
	m.RecordRequest("", http.MethodGet, http.StatusNotFound, time.Millisecond, 32)

	families := gatherNames(t, m)

	requests, ok := families["testns_http_requests_total"]
	require.True(t, ok)
	require.Len(t, requests.GetMetric(), 2)

	routes := make(map[string]bool)
	for _, metric := range requests.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "route" {
				routes[label.GetValue()] = true
			}
		}
	}
	assert.True(t, routes["blog_show"])
	assert.True(t, routes[UnmatchedRoute])
}

func TestMetrics_InFlight(t *testing.T) {
	t.Parallel()

	m := NewMetrics("testns")
	m.IncInFlight()
	m.IncInFlight()
	m.DecInFlight()

	families := gatherNames(t, m)
	inFlight, ok := families["testns_http_requests_in_flight"]
	require.True(t, ok)
	assert.Equal(t, float64(1), inFlight.GetMetric()[0].GetGauge().GetValue())
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := NewMetrics("testns")
	m.SetBuildInfo("1.2.3", "go1.25")
	m.RecordRequest("blog_show", http.MethodGet, http.StatusOK, time.Millisecond, 64)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "testns_http_requests_total")
	assert.Contains(t, body, "testns_build_info")
	assert.Contains(t, body, "go_goroutines")
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordRequest("r", http.MethodGet, http.StatusOK, time.Millisecond, 1)
	m.IncInFlight()
	m.DecInFlight()
	m.SetBuildInfo("v", "go")
}

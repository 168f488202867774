package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

func requestsTotal(t *testing.T, m *observability.Metrics) []*dto.Metric {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() == "avrouter_http_requests_total" {
			return mf.GetMetric()
		}
	}
	return nil
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestMetrics_RecordsResolvedRoute(t *testing.T) {
	t.Parallel()

	m := observability.NewMetrics("avrouter")

	handler := Metrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		util.RouteTagFromContext(r.Context()).Set("orders-api")
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders", nil))

	metrics := requestsTotal(t, m)
	require.Len(t, metrics, 1)
	assert.Equal(t, "orders-api", labelValue(metrics[0], "route"))
	assert.Equal(t, http.MethodGet, labelValue(metrics[0], "method"))
	assert.Equal(t, "200", labelValue(metrics[0], "status"))
	assert.Equal(t, float64(1), metrics[0].GetCounter().GetValue())
}

func TestMetrics_UnresolvedRouteUsesUnmatchedLabel(t *testing.T) {
	t.Parallel()

	m := observability.NewMetrics("avrouter")

	handler := Metrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	metrics := requestsTotal(t, m)
	require.Len(t, metrics, 1)
	assert.Equal(t, observability.UnmatchedRoute, labelValue(metrics[0], "route"))
	assert.Equal(t, "404", labelValue(metrics[0], "status"))
}

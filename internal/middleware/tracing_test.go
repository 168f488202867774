package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

func TestTracing_DisabledTracerPassesThrough(t *testing.T) {
	t.Parallel()

	tracer, err := observability.NewTracer(observability.TracerConfig{Enabled: false})
	require.NoError(t, err)

	var spanCtx trace.SpanContext
	handler := Tracing(tracer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spanCtx = trace.SpanContextFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, spanCtx.IsValid())
}

func TestTracing_InstallsRouteTag(t *testing.T) {
	t.Parallel()

	tracer, err := observability.NewTracer(observability.TracerConfig{Enabled: false})
	require.NoError(t, err)

	var tag *util.RouteTag
	handler := Tracing(tracer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag = util.RouteTagFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, tag)
}

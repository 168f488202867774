package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avrouter/internal/filter"
	"github.com/vyrodovalexey/avrouter/internal/matcher"
	"github.com/vyrodovalexey/avrouter/internal/provider"
	"github.com/vyrodovalexey/avrouter/internal/resolver"
	"github.com/vyrodovalexey/avrouter/internal/route"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

func newTestMux(t *testing.T, routes []*route.Route, opts ...MuxOption) *Mux {
	t.Helper()

	mem := provider.NewMemoryProvider()
	require.NoError(t, mem.Load(routes))

	res := resolver.New(mem, matcher.NewPathFinalMatcher(),
		resolver.WithFilter(filter.NewMethodFilter(), filter.PriorityMethod),
		resolver.WithFilter(filter.NewHostFilter(), filter.PriorityHost),
	)

	return NewMux(res, opts...)
}

func TestMux_DispatchesByRouteName(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, []*route.Route{
		{Name: "users-api", Path: "/api/users/{id}", Methods: []string{http.MethodGet}},
	})

	var gotID, gotRoute string
	mux.HandleFunc("users-api", func(w http.ResponseWriter, r *http.Request) {
		gotID = util.PathParamsFromContext(r.Context())["id"]
		gotRoute = util.RouteFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/42", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", gotID)
	assert.Equal(t, "users-api", gotRoute)
}

func TestMux_DispatchesByHandlerAttribute(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, []*route.Route{
		{
			Name:     "orders-v2",
			Path:     "/api/orders",
			Defaults: map[string]any{"handler": "orders"},
		},
	})

	called := false
	mux.HandleFunc("orders", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestMux_AttributesInContext(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, []*route.Route{
		{
			Name:     "tenanted",
			Path:     "/t/{tenant}/dash",
			Defaults: map[string]any{"tier": "gold"},
		},
	})

	var attrs map[string]any
	mux.HandleFunc("tenanted", func(w http.ResponseWriter, r *http.Request) {
		attrs = util.RouteAttributesFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/t/acme/dash", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, attrs)
	assert.Equal(t, "acme", attrs["tenant"])
	assert.Equal(t, "gold", attrs["tier"])
	assert.Equal(t, "tenanted", attrs[resolver.AttrName])
}

func TestMux_FillsRouteTag(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, []*route.Route{
		{Name: "tagged", Path: "/tagged"},
	})
	mux.HandleFunc("tagged", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/tagged", nil)
	ctx, tag := util.ContextWithRouteTag(req.Context())
	req = req.WithContext(ctx)

	mux.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "tagged", tag.Get())
}

func TestMux_NoRouteIs404(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, []*route.Route{
		{Name: "only", Path: "/only", Methods: []string{http.MethodGet}},
	})

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "unknown path", method: http.MethodGet, path: "/other"},
		{name: "filtered out by method", method: http.MethodDelete, path: "/only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.JSONEq(t, `{"error":"no route matched"}`, rec.Body.String())
		})
	}
}

func TestMux_CustomNotFoundHandler(t *testing.T) {
	t.Parallel()

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	mux := newTestMux(t, nil, WithNotFoundHandler(notFound))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMux_DefaultHandler(t *testing.T) {
	t.Parallel()

	called := false
	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	mux := newTestMux(t, []*route.Route{
		{Name: "unregistered", Path: "/anything"},
	}, WithDefaultHandler(fallback))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestMux_MissingHandlerIs500(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, []*route.Route{
		{Name: "orphan", Path: "/orphan"},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orphan", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"no handler for route"}`, rec.Body.String())
}

type failingProvider struct {
	err error
}

func (p *failingProvider) CandidatesFor(ctx context.Context, req *http.Request) ([]*route.Route, error) {
	return nil, p.err
}

func (p *failingProvider) RouteByName(ctx context.Context, name string) (*route.Route, error) {
	return nil, p.err
}

func TestMux_ProviderUnavailableIs503(t *testing.T) {
	t.Parallel()

	failing := &failingProvider{err: util.NewProviderError("redis", "connection refused")}
	res := resolver.New(failing, matcher.NewPathFinalMatcher())
	mux := NewMux(res)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/any", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMux_AmbiguousMatchIs500(t *testing.T) {
	t.Parallel()

	mem := provider.NewMemoryProvider()
	require.NoError(t, mem.Load([]*route.Route{
		{Name: "a", Path: "/dup", Priority: 10},
		{Name: "b", Path: "/dup", Priority: 10},
	}))

	res := resolver.New(mem, matcher.NewPathFinalMatcher(matcher.WithStrictAmbiguity()))
	mux := NewMux(res)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dup", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"ambiguous route match"}`, rec.Body.String())
}

func TestNewMux_NilResolverPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewMux(nil) })
}

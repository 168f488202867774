package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/resolver"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// HandlerAttr is the route attribute naming the handler to dispatch to.
// Routes set it through their defaults; routes without it dispatch by
// route name.
const HandlerAttr = "handler"

// Mux dispatches requests through the resolution engine. The resolved
// attributes select a registered handler, and the attributes and path
// parameters travel to it in the request context.
type Mux struct {
	resolver *resolver.Resolver
	logger   observability.Logger

	mu           sync.RWMutex
	handlers     map[string]http.Handler
	defaultHndlr http.Handler
	notFound     http.Handler
}

// MuxOption is a functional option for the mux.
type MuxOption func(*Mux)

// WithMuxLogger sets the logger.
func WithMuxLogger(logger observability.Logger) MuxOption {
	return func(m *Mux) {
		m.logger = logger
	}
}

// WithDefaultHandler sets the handler used when a resolved route has no
// registered handler of its own.
func WithDefaultHandler(handler http.Handler) MuxOption {
	return func(m *Mux) {
		m.defaultHndlr = handler
	}
}

// WithNotFoundHandler overrides the handler for requests that resolve
// to no route.
func WithNotFoundHandler(handler http.Handler) MuxOption {
	return func(m *Mux) {
		m.notFound = handler
	}
}

// NewMux creates a mux around a resolver.
func NewMux(res *resolver.Resolver, opts ...MuxOption) *Mux {
	if res == nil {
		panic("server: resolver must not be nil")
	}

	m := &Mux{
		resolver: res,
		logger:   observability.NopLogger(),
		handlers: make(map[string]http.Handler),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Handle registers a handler under a name. Registering the same name
// again replaces the previous handler.
func (m *Mux) Handle(name string, handler http.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[name] = handler
}

// HandleFunc registers a handler function under a name.
func (m *Mux) HandleFunc(name string, handler func(http.ResponseWriter, *http.Request)) {
	m.Handle(name, http.HandlerFunc(handler))
}

// ServeHTTP implements http.Handler.
func (m *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attrs, err := m.resolver.Resolve(ctx, r)
	if err != nil {
		m.handleError(w, r, err)
		return
	}

	name := attrs.Name()
	util.RouteTagFromContext(ctx).Set(name)

	handler := m.handlerFor(attrs)
	if handler == nil {
		m.logger.Error("no handler registered for resolved route",
			observability.String("route", name),
			observability.String("path", r.URL.Path),
		)
		writeError(w, http.StatusInternalServerError, "no handler for route")
		return
	}

	ctx = util.ContextWithRoute(ctx, name)
	ctx = util.ContextWithRouteAttributes(ctx, attrs)
	ctx = util.ContextWithPathParams(ctx, attrs.StringParams())

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// handlerFor looks up the handler for resolved attributes: the handler
// attribute wins, then the route name, then the default handler.
func (m *Mux) handlerFor(attrs resolver.Attributes) http.Handler {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if name := attrs.String(HandlerAttr); name != "" {
		if h, ok := m.handlers[name]; ok {
			return h
		}
	}

	if h, ok := m.handlers[attrs.Name()]; ok {
		return h
	}

	return m.defaultHndlr
}

func (m *Mux) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case util.IsNoRoute(err) || util.IsNotFound(err):
		m.logger.Debug("no route for request",
			observability.String("method", r.Method),
			observability.String("path", r.URL.Path),
		)

		m.mu.RLock()
		notFound := m.notFound
		m.mu.RUnlock()
		if notFound != nil {
			notFound.ServeHTTP(w, r)
			return
		}
		writeError(w, http.StatusNotFound, "no route matched")

	case util.IsProviderUnavailable(err):
		m.logger.Error("route provider unavailable",
			observability.String("path", r.URL.Path),
			observability.Error(err),
		)
		writeError(w, http.StatusServiceUnavailable, "route provider unavailable")

	case util.IsAmbiguousMatch(err):
		m.logger.Error("ambiguous route match",
			observability.String("method", r.Method),
			observability.String("path", r.URL.Path),
			observability.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "ambiguous route match")

	default:
		m.logger.Error("route resolution failed",
			observability.String("method", r.Method),
			observability.String("path", r.URL.Path),
			observability.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "route resolution failed")
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

package util

import (
	"context"
	"sync"
	"time"
)

// Context keys.
type ctxKey string

const (
	ctxKeyRequestID  ctxKey = "request_id"
	ctxKeyStartTime  ctxKey = "start_time"
	ctxKeyRoute      ctxKey = "route"
	ctxKeyRouteTag   ctxKey = "route_tag"
	ctxKeyPathParams ctxKey = "path_params"
	ctxKeyAttributes ctxKey = "route_attributes"
)

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// ContextWithStartTime adds a start time to the context.
func ContextWithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ctxKeyStartTime, t)
}

// StartTimeFromContext extracts the start time from context.
func StartTimeFromContext(ctx context.Context) time.Time {
	if v, ok := ctx.Value(ctxKeyStartTime).(time.Time); ok {
		return v
	}
	return time.Time{}
}

// ContextWithRoute adds a resolved route name to the context.
func ContextWithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, ctxKeyRoute, route)
}

// RouteFromContext extracts the resolved route name from context.
func RouteFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRoute).(string); ok {
		return v
	}
	return ""
}

// RouteTag is a mutable route name carrier. Outer middleware installs
// one before the mux runs; the mux fills it in once the route is
// resolved, making the name visible to logging and metrics on the way
// back out. Context values alone cannot do this because a context set
// deeper in the chain never reaches the outer handlers.
type RouteTag struct {
	mu   sync.Mutex
	name string
}

// Set records the resolved route name.
func (t *RouteTag) Set(name string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.name = name
}

// Get returns the recorded route name, or "" when unresolved.
func (t *RouteTag) Get() string {
	if t == nil {
		return ""
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// ContextWithRouteTag installs a route tag, reusing an existing one so
// stacked middleware shares a single carrier.
func ContextWithRouteTag(ctx context.Context) (context.Context, *RouteTag) {
	if tag := RouteTagFromContext(ctx); tag != nil {
		return ctx, tag
	}
	tag := &RouteTag{}
	return context.WithValue(ctx, ctxKeyRouteTag, tag), tag
}

// RouteTagFromContext returns the installed route tag, or nil.
func RouteTagFromContext(ctx context.Context) *RouteTag {
	if v, ok := ctx.Value(ctxKeyRouteTag).(*RouteTag); ok {
		return v
	}
	return nil
}

// ContextWithPathParams adds extracted path parameters to the context.
func ContextWithPathParams(ctx context.Context, params map[string]string) context.Context {
	return context.WithValue(ctx, ctxKeyPathParams, params)
}

// PathParamsFromContext extracts path parameters from context.
func PathParamsFromContext(ctx context.Context) map[string]string {
	if v, ok := ctx.Value(ctxKeyPathParams).(map[string]string); ok {
		return v
	}
	return nil
}

// ContextWithRouteAttributes adds the full resolved attribute map to the
// context.
func ContextWithRouteAttributes(ctx context.Context, attrs map[string]any) context.Context {
	return context.WithValue(ctx, ctxKeyAttributes, attrs)
}

// RouteAttributesFromContext extracts the resolved attribute map from
// context.
func RouteAttributesFromContext(ctx context.Context) map[string]any {
	if v, ok := ctx.Value(ctxKeyAttributes).(map[string]any); ok {
		return v
	}
	return nil
}

// NewTimeoutContext creates a context with a timeout.
// Returns the context and a cancel function that should be deferred.
func NewTimeoutContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

// ElapsedTime returns the elapsed time since the start time in context.
func ElapsedTime(ctx context.Context) time.Duration {
	startTime := StartTimeFromContext(ctx)
	if startTime.IsZero() {
		return 0
	}
	return time.Since(startTime)
}

// Package middleware provides HTTP middleware for the route resolution
// server.
//
// # Middleware Components
//
//   - Request ID: unique request identifier injection
//   - Logging: structured request/response logging
//   - Recovery: panic recovery with stack trace logging
//   - Metrics: per-route Prometheus request metrics
//   - Rate Limiting: token bucket limiter, global or per client
//   - Tracing: OpenTelemetry span per request
//
// # Usage
//
// Middleware functions follow the standard Go pattern and are composed
// with Chain, outermost first:
//
//	handler := middleware.Chain(mux,
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	    middleware.Recovery(logger),
//	)
package middleware

// Package util provides utility functions and types for the
// route resolution engine.
//
// This package contains shared utilities used across the resolver
// including context helpers, error types, HTTP utilities, and
// validation functions.
//
// # Context Helpers
//
// Context utilities for request-scoped data:
//
//	ctx = util.ContextWithRequestID(ctx, "req-123")
//	requestID := util.RequestIDFromContext(ctx)
//
// # Error Types
//
// Structured error types for consistent error handling:
//
//   - NoRouteError: resolution produced no match
//   - UnknownRouteError: lookup of an unregistered route name
//   - AmbiguousMatchError: tie between equally ranked routes
//   - Common sentinel errors: ErrNoRoute, ErrNotFound, etc.
//
// # HTTP Utilities
//
// Response writer wrappers for status code capture:
//
//	w := util.NewStatusCapturingResponseWriter(responseWriter)
//	handler.ServeHTTP(w, r)
//	statusCode := w.StatusCode
//
// # Validation
//
// Input validation helpers for headers, methods, and patterns:
//
//	err := util.ValidateHeaderName("X-Custom-Header")
//	err := util.ValidateHTTPMethod("GET")
package util

package middleware

import "net/http"

// Common header and body constants.
const (
	HeaderContentType = "Content-Type"
	HeaderRetryAfter  = "Retry-After"
	ContentTypeJSON   = "application/json"

	ErrRateLimitExceeded = `{"error":"rate limit exceeded"}`
	ErrInternalServer    = `{"error":"internal server error"}`
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware around a handler. The first middleware is
// the outermost: Chain(h, a, b) serves a(b(h)).
func Chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

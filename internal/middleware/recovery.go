package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// Recovery returns a middleware that recovers from handler panics,
// logs the stack, and answers with a JSON 500.
func Recovery(logger observability.Logger) Middleware {
	return RecoveryWithCounter(logger, nil)
}

// RecoveryWithCounter is Recovery with an optional panic counter.
func RecoveryWithCounter(logger observability.Logger, panics prometheus.Counter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						observability.String("method", r.Method),
						observability.String("path", r.URL.Path),
						observability.Any("error", err),
						observability.String("stack", string(debug.Stack())),
					)

					if panics != nil {
						panics.Inc()
					}

					w.Header().Set(HeaderContentType, ContentTypeJSON)
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = io.WriteString(w, ErrInternalServer)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

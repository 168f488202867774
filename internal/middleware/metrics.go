package middleware

import (
	"net/http"
	"time"

	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// Metrics returns a middleware recording per-request metrics. The
// route label comes from the route tag the mux fills in; unresolved
// requests share the bounded "unmatched" label.
func Metrics(metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx, tag := util.ContextWithRouteTag(r.Context())
			r = r.WithContext(ctx)

			metrics.IncInFlight()
			defer metrics.DecInFlight()

			rw := util.NewStatusCapturingResponseWriter(w)
			next.ServeHTTP(rw, r)

			metrics.RecordRequest(
				tag.Get(),
				r.Method,
				rw.StatusCode,
				time.Since(start),
				int(rw.BytesWritten),
			)
		})
	}
}

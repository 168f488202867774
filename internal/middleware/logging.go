package middleware

import (
	"net/http"
	"time"

	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// Logging returns a middleware that logs each request with its
// resolved route, status, size and duration.
func Logging(logger observability.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx, tag := util.ContextWithRouteTag(r.Context())
			r = r.WithContext(ctx)

			rw := util.NewStatusCapturingResponseWriter(w)
			next.ServeHTTP(rw, r)

			fields := []observability.Field{
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.Int("status", rw.StatusCode),
				observability.Int64("size", rw.BytesWritten),
				observability.Duration("duration", time.Since(start)),
				observability.String("client_ip", getClientIP(r)),
			}
			if requestID := util.RequestIDFromContext(r.Context()); requestID != "" {
				fields = append(fields, observability.String("request_id", requestID))
			}
			if routeName := tag.Get(); routeName != "" {
				fields = append(fields, observability.String("route", routeName))
			}

			switch {
			case rw.StatusCode >= http.StatusInternalServerError:
				logger.Error("request completed", fields...)
			case rw.StatusCode >= http.StatusBadRequest:
				logger.Warn("request completed", fields...)
			default:
				logger.Info("request completed", fields...)
			}
		})
	}
}

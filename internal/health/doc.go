// Package health provides health check and readiness probe endpoints
// for the route resolution service.
//
// This package implements Kubernetes-compatible liveness and readiness
// endpoints with extensible check registration and detailed status
// reporting.
//
// # Features
//
//   - Liveness probe endpoint (/healthz)
//   - Readiness probe endpoint (/readyz)
//   - Extensible readiness check registration
//   - Concurrent check execution with a shared timeout
//   - Built-in checks for route providers, Redis, circuit breakers,
//     TCP and HTTP dependencies
//   - Per-check Prometheus status and duration metrics
//
// # Usage
//
// Create a health checker and register checks:
//
//	checker := health.NewChecker(version,
//	    health.WithLogger(logger),
//	    health.WithRegisterer(metrics.Registerer()),
//	)
//	checker.RegisterCheck("provider", health.ProviderCheck(redisProvider))
//
//	mux := http.NewServeMux()
//	checker.RegisterRoutes(mux)
package health

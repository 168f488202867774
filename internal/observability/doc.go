// Package observability provides logging, metrics, and tracing for the
// route resolution engine.
//
// # Features
//
//   - Structured logging on zap behind a small Logger interface
//   - Prometheus metrics on a private registry with an HTTP handler
//   - OpenTelemetry tracing with an OTLP gRPC exporter
//
// # Usage
//
//	logger, err := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	})
//	metrics := observability.NewMetrics("avrouter")
//	http.Handle("/metrics", metrics.Handler())
package observability

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// Status represents the health status.
type Status string

const (
	// StatusHealthy indicates the service is healthy.
	StatusHealthy Status = "healthy"
	// StatusUnhealthy indicates the service is unhealthy.
	StatusUnhealthy Status = "unhealthy"
	// StatusDegraded indicates the service is degraded but operational.
	StatusDegraded Status = "degraded"
)

// DefaultCheckTimeout bounds a single readiness probe run.
const DefaultCheckTimeout = 5 * time.Second

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadinessResponse represents the readiness check response.
type ReadinessResponse struct {
	Status    Status           `json:"status"`
	Checks    map[string]Check `json:"checks,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Check represents an individual health check result.
type Check struct {
	Status   Status `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// CheckFunc performs a single readiness check.
type CheckFunc func(ctx context.Context) Check

// Checker provides health and readiness checking functionality.
type Checker struct {
	version      string
	startTime    time.Time
	checkTimeout time.Duration
	logger       observability.Logger

	checkStatus   *prometheus.GaugeVec
	checkDuration *prometheus.HistogramVec

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// Option is a functional option for the checker.
type Option func(*Checker)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithCheckTimeout bounds the total time a readiness probe may spend
// running checks.
func WithCheckTimeout(timeout time.Duration) Option {
	return func(c *Checker) {
		c.checkTimeout = timeout
	}
}

// WithRegisterer registers per-check status and duration metrics on the
// given registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Checker) {
		c.checkStatus = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "avrouter",
				Subsystem: "health",
				Name:      "check_status",
				Help:      "Health check status (1 healthy, 0 unhealthy)",
			},
			[]string{"check"},
		)
		c.checkDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "avrouter",
				Subsystem: "health",
				Name:      "check_duration_seconds",
				Help:      "Health check duration in seconds",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
			},
			[]string{"check"},
		)
		reg.MustRegister(c.checkStatus, c.checkDuration)
	}
}

// NewChecker creates a new health checker.
func NewChecker(version string, opts ...Option) *Checker {
	c := &Checker{
		version:      version,
		startTime:    time.Now(),
		checkTimeout: DefaultCheckTimeout,
		logger:       observability.NopLogger(),
		checks:       make(map[string]CheckFunc),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RegisterCheck registers a readiness check under a name. Registering
// the same name again replaces the previous check.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// UnregisterCheck removes a readiness check.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// Health returns the liveness status. It never runs dependency checks:
// a live process is healthy even when a dependency is down.
func (c *Checker) Health() HealthResponse {
	return HealthResponse{
		Status:    StatusHealthy,
		Version:   c.version,
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	}
}

// Readiness runs all registered checks concurrently and aggregates the
// worst observed status.
func (c *Checker) Readiness(ctx context.Context) ReadinessResponse {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	response := ReadinessResponse{
		Status:    StatusHealthy,
		Checks:    make(map[string]Check, len(checks)),
		Timestamp: time.Now().UTC(),
	}

	if len(checks) == 0 {
		return response
	}

	ctx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, fn := range checks {
		wg.Add(1)
		go func(name string, fn CheckFunc) {
			defer wg.Done()

			start := time.Now()
			check := fn(ctx)
			elapsed := time.Since(start)
			check.Duration = elapsed.Round(time.Microsecond).String()

			c.record(name, check.Status, elapsed)
			if check.Status != StatusHealthy {
				c.logger.Warn("readiness check failed",
					observability.String("check", name),
					observability.String("status", string(check.Status)),
					observability.String("message", check.Message),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			response.Checks[name] = check
			if check.Status == StatusUnhealthy {
				response.Status = StatusUnhealthy
			} else if check.Status == StatusDegraded && response.Status != StatusUnhealthy {
				response.Status = StatusDegraded
			}
		}(name, fn)
	}

	wg.Wait()
	return response
}

func (c *Checker) record(name string, status Status, elapsed time.Duration) {
	if c.checkStatus == nil {
		return
	}

	value := 0.0
	if status == StatusHealthy {
		value = 1.0
	}
	c.checkStatus.WithLabelValues(name).Set(value)
	c.checkDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// HealthHandler returns an HTTP handler for the liveness endpoint.
func (c *Checker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Health())
	}
}

// ReadinessHandler returns an HTTP handler for the readiness endpoint.
// It answers 503 when any check reports unhealthy.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := c.Readiness(r.Context())

		statusCode := http.StatusOK
		if response.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		writeJSON(w, statusCode, response)
	}
}

// RegisterRoutes registers the probe endpoints on a mux.
func (c *Checker) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", c.HealthHandler())
	mux.HandleFunc("/readyz", c.ReadinessHandler())
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

package config

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/avrouter/internal/route"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates the service configuration, accumulating every
// problem instead of stopping at the first.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// ValidateConfig validates a configuration.
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	return v.Validate(cfg)
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = make(ValidationErrors, 0)

	if cfg == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	v.validateServer(&cfg.Server)
	v.validateMetrics(&cfg.Metrics)
	v.validateLogging(&cfg.Logging)
	v.validateTracing(&cfg.Tracing)
	v.validateRateLimit(&cfg.RateLimit)
	v.validateProvider(&cfg.Provider)
	v.validateFilters(cfg.Filters)
	v.validateRoutes(cfg.Routes)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) validateServer(server *ServerConfig) {
	if server.ListenAddr == "" {
		v.addError("server.listenAddr", "listen address is required")
	} else if err := util.ValidateListenAddr(server.ListenAddr); err != nil {
		v.addError("server.listenAddr", err.Error())
	}

	if server.ShutdownTimeout < 0 {
		v.addError("server.shutdownTimeout", "must not be negative")
	}
}

func (v *Validator) validateMetrics(metrics *MetricsConfig) {
	if !metrics.Enabled {
		return
	}

	if metrics.ListenAddr == "" {
		v.addError("metrics.listenAddr", "listen address is required when metrics are enabled")
	} else if err := util.ValidateListenAddr(metrics.ListenAddr); err != nil {
		v.addError("metrics.listenAddr", err.Error())
	}

	if metrics.Path != "" && !strings.HasPrefix(metrics.Path, "/") {
		v.addError("metrics.path", "path must start with /")
	}
}

func (v *Validator) validateLogging(logging *LoggingConfig) {
	switch logging.Level {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		v.addError("logging.level", fmt.Sprintf("unknown level %q", logging.Level))
	}

	switch logging.Format {
	case "", "json", "console":
	default:
		v.addError("logging.format", fmt.Sprintf("unknown format %q", logging.Format))
	}

	switch logging.Output {
	case "", "stdout", "stderr":
	default:
		v.addError("logging.output", fmt.Sprintf("unknown output %q", logging.Output))
	}
}

func (v *Validator) validateTracing(tracing *TracingConfig) {
	if !tracing.Enabled {
		return
	}

	if tracing.ServiceName == "" {
		v.addError("tracing.serviceName", "service name is required when tracing is enabled")
	}
	if tracing.OTLPEndpoint == "" {
		v.addError("tracing.otlpEndpoint", "OTLP endpoint is required when tracing is enabled")
	}
	if tracing.SamplingRate < 0 || tracing.SamplingRate > 1 {
		v.addError("tracing.samplingRate", "sampling rate must be between 0 and 1")
	}
}

func (v *Validator) validateRateLimit(rl *RateLimitConfig) {
	if !rl.Enabled {
		return
	}

	if rl.RPS <= 0 {
		v.addError("rateLimit.rps", "rps must be positive when rate limiting is enabled")
	}
	if rl.Burst < rl.RPS {
		v.addError("rateLimit.burst", "burst must be at least rps")
	}
	if rl.PerClient && rl.ClientTTL <= 0 {
		v.addError("rateLimit.clientTTL", "client TTL must be positive for per-client limiting")
	}
}

func (v *Validator) validateProvider(provider *ProviderConfig) {
	switch provider.Type {
	case ProviderMemory:
	case ProviderRedis:
		if provider.Redis.Addr == "" {
			v.addError("provider.redis.addr", "address is required for the redis provider")
		}
		if provider.Redis.DB < 0 {
			v.addError("provider.redis.db", "db must not be negative")
		}
		if provider.Redis.PoolSize < 0 {
			v.addError("provider.redis.poolSize", "pool size must not be negative")
		}
	case "":
		v.addError("provider.type", "provider type is required")
	default:
		v.addError("provider.type", fmt.Sprintf("unknown provider type %q", provider.Type))
	}

	if provider.Breaker.Enabled && provider.Breaker.Threshold == 0 {
		v.addError("provider.breaker.threshold", "threshold must be positive when the breaker is enabled")
	}
}

func (v *Validator) validateFilters(filters []FilterConfig) {
	known := make(map[string]bool, len(FilterNames))
	for _, name := range FilterNames {
		known[name] = true
	}

	seen := make(map[string]bool, len(filters))
	for i, f := range filters {
		path := fmt.Sprintf("filters[%d]", i)

		if !known[f.Name] {
			v.addError(path+".name", fmt.Sprintf("unknown filter %q", f.Name))
			continue
		}
		if seen[f.Name] {
			v.addError(path+".name", fmt.Sprintf("duplicate filter %q", f.Name))
		}
		seen[f.Name] = true
	}
}

func (v *Validator) validateRoutes(routes []route.Route) {
	seen := make(map[string]bool, len(routes))

	for i, r := range routes {
		path := fmt.Sprintf("routes[%d]", i)

		if err := r.Validate(); err != nil {
			v.addError(path, err.Error())
			continue
		}

		if seen[r.Name] {
			v.addError(path+".name", fmt.Sprintf("duplicate route name %q", r.Name))
		}
		seen[r.Name] = true
	}
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{
		Path:    path,
		Message: message,
	})
}

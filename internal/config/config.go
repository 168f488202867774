package config

import (
	"time"

	"github.com/vyrodovalexey/avrouter/internal/route"
)

// Provider type names accepted in the configuration.
const (
	ProviderMemory = "memory"
	ProviderRedis  = "redis"
)

// Config is the top-level service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Tracing   TracingConfig   `yaml:"tracing" json:"tracing"`
	RateLimit RateLimitConfig `yaml:"rateLimit" json:"rateLimit"`
	Provider  ProviderConfig  `yaml:"provider" json:"provider"`
	Filters   []FilterConfig  `yaml:"filters" json:"filters"`
	Matcher   MatcherConfig   `yaml:"matcher" json:"matcher"`
	Routes    []route.Route   `yaml:"routes" json:"routes"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	ListenAddr      string   `yaml:"listenAddr" json:"listenAddr"`
	ReadTimeout     Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout" json:"writeTimeout"`
	IdleTimeout     Duration `yaml:"idleTimeout" json:"idleTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`
}

// MetricsConfig holds the metrics endpoint settings. The metrics
// listener is separate from the serving listener so probes and scrapes
// never compete with traffic.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	ListenAddr string `yaml:"listenAddr" json:"listenAddr"`
	Path       string `yaml:"path" json:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// TracingConfig holds OpenTelemetry tracing settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	ServiceName  string  `yaml:"serviceName" json:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint" json:"otlpEndpoint"`
	SamplingRate float64 `yaml:"samplingRate" json:"samplingRate"`
}

// RateLimitConfig holds request rate limiting settings.
type RateLimitConfig struct {
	Enabled   bool     `yaml:"enabled" json:"enabled"`
	RPS       int      `yaml:"rps" json:"rps"`
	Burst     int      `yaml:"burst" json:"burst"`
	PerClient bool     `yaml:"perClient" json:"perClient"`
	ClientTTL Duration `yaml:"clientTTL" json:"clientTTL"`
}

// ProviderConfig selects and configures the route provider.
type ProviderConfig struct {
	Type    string        `yaml:"type" json:"type"`
	Redis   RedisConfig   `yaml:"redis" json:"redis"`
	Breaker BreakerConfig `yaml:"breaker" json:"breaker"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr         string   `yaml:"addr" json:"addr"`
	Password     string   `yaml:"password" json:"password"`
	DB           int      `yaml:"db" json:"db"`
	KeyPrefix    string   `yaml:"keyPrefix" json:"keyPrefix"`
	DialTimeout  Duration `yaml:"dialTimeout" json:"dialTimeout"`
	ReadTimeout  Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout Duration `yaml:"writeTimeout" json:"writeTimeout"`
	PoolSize     int      `yaml:"poolSize" json:"poolSize"`
}

// BreakerConfig holds circuit breaker settings for the route provider.
type BreakerConfig struct {
	Enabled   bool     `yaml:"enabled" json:"enabled"`
	Threshold uint32   `yaml:"threshold" json:"threshold"`
	Timeout   Duration `yaml:"timeout" json:"timeout"`
}

// Built-in filter names accepted in the filters section.
var FilterNames = []string{"method", "host", "scheme", "header", "condition"}

// FilterConfig overrides the chain priority of a built-in filter.
// Filters not listed keep their default priority.
type FilterConfig struct {
	Name     string `yaml:"name" json:"name"`
	Priority int    `yaml:"priority" json:"priority"`
}

// MatcherConfig holds final matcher settings.
type MatcherConfig struct {
	StrictAmbiguity bool `yaml:"strictAmbiguity" json:"strictAmbiguity"`
}

// DefaultConfig returns a configuration with sensible defaults. Loading
// a file overlays it, so absent fields keep these values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			IdleTimeout:     Duration(120 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: ":9090",
			Path:       "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Tracing: TracingConfig{
			ServiceName:  "avrouter",
			SamplingRate: 1.0,
		},
		RateLimit: RateLimitConfig{
			RPS:       100,
			Burst:     200,
			ClientTTL: Duration(10 * time.Minute),
		},
		Provider: ProviderConfig{
			Type: ProviderMemory,
			Redis: RedisConfig{
				Addr:         "localhost:6379",
				KeyPrefix:    "avrouter:",
				DialTimeout:  Duration(5 * time.Second),
				ReadTimeout:  Duration(3 * time.Second),
				WriteTimeout: Duration(3 * time.Second),
				PoolSize:     10,
			},
			Breaker: BreakerConfig{
				Threshold: 5,
				Timeout:   Duration(30 * time.Second),
			},
		},
	}
}

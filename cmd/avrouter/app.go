package main

import (
	"encoding/json"
	"net/http"
	"runtime"

	"github.com/redis/go-redis/v9"

	"github.com/vyrodovalexey/avrouter/internal/config"
	"github.com/vyrodovalexey/avrouter/internal/filter"
	"github.com/vyrodovalexey/avrouter/internal/health"
	"github.com/vyrodovalexey/avrouter/internal/matcher"
	"github.com/vyrodovalexey/avrouter/internal/middleware"
	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/provider"
	"github.com/vyrodovalexey/avrouter/internal/resolver"
	"github.com/vyrodovalexey/avrouter/internal/route"
	"github.com/vyrodovalexey/avrouter/internal/server"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// application holds all application components.
type application struct {
	server        *server.Server
	metricsServer *server.Server
	mux           *server.Mux
	handler       http.Handler
	resolver      *resolver.Resolver
	memProvider   *provider.MemoryProvider
	redisClient   *redis.Client
	rateLimiter   *middleware.RateLimiter
	healthChecker *health.Checker
	metrics       *observability.Metrics
	tracer        *observability.Tracer
	config        *config.Config
}

// initApplication initializes all application components.
func initApplication(cfg *config.Config, logger observability.Logger) *application {
	metrics := observability.NewMetrics("avrouter")
	metrics.SetBuildInfo(version, runtime.Version())

	tracer := initTracer(cfg, logger)

	healthChecker := health.NewChecker(version,
		health.WithLogger(logger),
		health.WithRegisterer(metrics.Registerer()),
	)

	app := &application{
		healthChecker: healthChecker,
		metrics:       metrics,
		tracer:        tracer,
		config:        cfg,
	}

	routeProvider := buildProvider(app, cfg, logger)
	app.resolver = buildResolver(routeProvider, cfg, logger, metrics)

	app.mux = server.NewMux(app.resolver,
		server.WithMuxLogger(logger),
		server.WithDefaultHandler(resolutionHandler()),
	)

	app.handler = buildMiddlewareChain(app.mux, app, cfg, logger)
	app.server = server.NewServer(cfg.Server, app.handler, logger)

	if cfg.Metrics.Enabled {
		probes := http.NewServeMux()
		healthChecker.RegisterRoutes(probes)
		app.metricsServer = server.MetricsServer(cfg.Metrics, metrics, probes, logger)
	}

	return app
}

// initTracer initializes the tracer.
func initTracer(cfg *config.Config, logger observability.Logger) *observability.Tracer {
	tracer, err := observability.NewTracer(observability.TracerConfig{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.Fatal("failed to initialize tracer", observability.Error(err))
	}

	return tracer
}

// buildProvider constructs the configured route provider, wrapping it
// in a circuit breaker when enabled.
func buildProvider(app *application, cfg *config.Config, logger observability.Logger) resolver.Provider {
	switch cfg.Provider.Type {
	case config.ProviderRedis:
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Provider.Redis.Addr,
			Password:     cfg.Provider.Redis.Password,
			DB:           cfg.Provider.Redis.DB,
			DialTimeout:  cfg.Provider.Redis.DialTimeout.Duration(),
			ReadTimeout:  cfg.Provider.Redis.ReadTimeout.Duration(),
			WriteTimeout: cfg.Provider.Redis.WriteTimeout.Duration(),
			PoolSize:     cfg.Provider.Redis.PoolSize,
		})
		app.redisClient = client

		redisProvider := provider.NewRedisProvider(client,
			provider.WithRedisLogger(logger),
			provider.WithKeyPrefix(cfg.Provider.Redis.KeyPrefix),
		)
		app.healthChecker.RegisterCheck("provider", health.ProviderCheck(redisProvider))

		if !cfg.Provider.Breaker.Enabled {
			return redisProvider
		}

		breaker := provider.NewBreakerProvider(redisProvider,
			provider.WithBreakerLogger(logger),
			provider.WithBreakerThreshold(cfg.Provider.Breaker.Threshold),
			provider.WithBreakerTimeout(cfg.Provider.Breaker.Timeout.Duration()),
		)
		app.healthChecker.RegisterCheck("breaker", health.BreakerCheck(breaker))
		return breaker

	default:
		mem := provider.NewMemoryProvider(provider.WithMemoryLogger(logger))
		if err := mem.Load(routePointers(cfg.Routes)); err != nil {
			logger.Fatal("failed to load routes", observability.Error(err))
		}
		app.memProvider = mem
		return mem
	}
}

// buildResolver assembles the resolution engine with the full filter
// chain.
func buildResolver(p resolver.Provider, cfg *config.Config, logger observability.Logger, metrics *observability.Metrics) *resolver.Resolver {
	matcher.SetCacheMetrics(matcher.NewCacheMetricsWithRegisterer("avrouter", metrics.Registerer()))

	var matcherOpts []matcher.Option
	matcherOpts = append(matcherOpts, matcher.WithLogger(logger))
	if cfg.Matcher.StrictAmbiguity {
		matcherOpts = append(matcherOpts, matcher.WithStrictAmbiguity())
	}

	conditionFilter, err := filter.NewConditionFilter(filter.WithConditionLogger(logger))
	if err != nil {
		logger.Fatal("failed to initialize condition filter", observability.Error(err))
	}

	priorities := filterPriorities(cfg.Filters)

	return resolver.New(p, matcher.NewPathFinalMatcher(matcherOpts...),
		resolver.WithLogger(logger),
		resolver.WithMetrics(resolver.NewMetricsWithRegisterer("avrouter", metrics.Registerer())),
		resolver.WithFilter(filter.NewMethodFilter(), priorities["method"]),
		resolver.WithFilter(filter.NewHostFilter(), priorities["host"]),
		resolver.WithFilter(filter.NewSchemeFilter(), priorities["scheme"]),
		resolver.WithFilter(filter.NewHeaderFilter(), priorities["header"]),
		resolver.WithFilter(conditionFilter, priorities["condition"]),
	)
}

// filterPriorities maps filter names to chain priorities, applying any
// configured overrides on top of the package defaults.
func filterPriorities(overrides []config.FilterConfig) map[string]int {
	priorities := map[string]int{
		"method":    filter.PriorityMethod,
		"host":      filter.PriorityHost,
		"scheme":    filter.PriorityScheme,
		"header":    filter.PriorityHeader,
		"condition": filter.PriorityCondition,
	}
	for _, f := range overrides {
		priorities[f.Name] = f.Priority
	}
	return priorities
}

// buildMiddlewareChain wires the outer middleware around the mux.
func buildMiddlewareChain(handler http.Handler, app *application, cfg *config.Config, logger observability.Logger) http.Handler {
	h := handler

	if cfg.RateLimit.Enabled {
		app.rateLimiter = middleware.NewRateLimiter(
			cfg.RateLimit.RPS,
			cfg.RateLimit.Burst,
			cfg.RateLimit.PerClient,
			middleware.WithRateLimiterLogger(logger),
			middleware.WithClientTTL(cfg.RateLimit.ClientTTL.Duration()),
		)
		if cfg.RateLimit.PerClient {
			app.rateLimiter.StartAutoCleanup()
		}
		h = middleware.RateLimit(app.rateLimiter)(h)
	}

	h = middleware.Metrics(app.metrics)(h)
	if cfg.Tracing.Enabled {
		h = middleware.Tracing(app.tracer)(h)
	}
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID()(h)
	h = middleware.Recovery(logger)(h)

	return h
}

// resolutionHandler answers with the resolved route and its attributes.
// Routes that name a real handler bypass it; everything else gets the
// resolution result itself, which is the service's core product.
func resolutionHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"route":  util.RouteFromContext(r.Context()),
			"params": util.PathParamsFromContext(r.Context()),
		}
		if attrs := util.RouteAttributesFromContext(r.Context()); attrs != nil {
			filtered := make(map[string]any, len(attrs))
			for k, v := range attrs {
				if k == resolver.AttrRoute {
					continue
				}
				filtered[k] = v
			}
			body["attributes"] = filtered
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	})
}

func routePointers(routes []route.Route) []*route.Route {
	out := make([]*route.Route, len(routes))
	for i := range routes {
		out[i] = &routes[i]
	}
	return out
}

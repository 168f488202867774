package resolver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/route"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// Resolver is the pipeline controller. It is stateless per call; the
// only shared mutable state is the filter registry and the provider and
// final matcher slots, all internally synchronized.
type Resolver struct {
	mu       sync.RWMutex
	provider Provider
	final    FinalMatcher

	filters *filterRegistry

	logger  observability.Logger
	metrics *Metrics
}

// Option is a functional option for configuring the resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *Metrics) Option {
	return func(r *Resolver) {
		r.metrics = metrics
	}
}

// WithFilter registers a filter at construction time. Higher priority
// filters run earlier; equal priorities run in registration order.
func WithFilter(f Filter, priority int) Option {
	return func(r *Resolver) {
		r.filters.add(f, priority)
	}
}

// New creates a resolver around the given provider and final matcher.
// A nil provider or final matcher is a programming error and panics,
// matching the fail-fast registration behavior of net/http.
func New(provider Provider, final FinalMatcher, opts ...Option) *Resolver {
	if provider == nil {
		panic("resolver: nil provider")
	}
	if final == nil {
		panic("resolver: nil final matcher")
	}

	r := &Resolver{
		provider: provider,
		final:    final,
		filters:  newFilterRegistry(),
		logger:   observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.metrics != nil {
		r.filters.onRebuild = r.metrics.RecordChainRebuild
		r.metrics.SetFilterCount(r.filters.size())
	}

	return r
}

// SetProvider replaces the provider. The change takes effect on the
// next Resolve call; in-flight resolutions keep the provider they
// started with.
func (r *Resolver) SetProvider(provider Provider) {
	if provider == nil {
		panic("resolver: nil provider")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.provider = provider
}

// SetFinalMatcher replaces the final matcher. The change takes effect
// on the next Resolve call.
func (r *Resolver) SetFinalMatcher(final FinalMatcher) {
	if final == nil {
		panic("resolver: nil final matcher")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.final = final
}

// AddFilter registers a filter at the given priority and invalidates
// the memoized chain ordering.
func (r *Resolver) AddFilter(f Filter, priority int) {
	if f == nil {
		panic("resolver: nil filter")
	}

	r.filters.add(f, priority)

	if r.metrics != nil {
		r.metrics.SetFilterCount(r.filters.size())
	}
}

// FilterCount returns the number of registered filters.
func (r *Resolver) FilterCount() int {
	return r.filters.size()
}

// Resolve runs the pipeline for a single request: candidate retrieval,
// the ordered filter chain, final matching, and reserved attribute
// post-processing. The first failing stage terminates resolution; there
// are no retries and no fallbacks.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (Attributes, error) {
	start := time.Now()

	r.mu.RLock()
	provider := r.provider
	final := r.final
	r.mu.RUnlock()

	candidates, err := r.retrieve(ctx, provider, req)
	if err != nil {
		r.observe(outcomeFor(err, "provider_error"), start)
		return nil, err
	}

	initial := len(candidates)

	candidates, err = r.applyFilters(ctx, candidates, req)
	if err != nil {
		r.observe(outcomeFor(err, "filter_error"), start)
		return nil, err
	}

	r.metrics.RecordCandidates(initial, len(candidates))

	attrs, err := r.match(ctx, final, candidates, req)
	if err != nil {
		r.observe(outcomeFor(err, "matcher_error"), start)
		return nil, err
	}

	attrs, err = r.normalize(ctx, provider, attrs)
	if err != nil {
		r.observe(outcomeFor(err, "lookup_error"), start)
		return nil, err
	}

	r.observe("matched", start)
	r.logger.Debug("route resolved",
		observability.String("method", req.Method),
		observability.String("path", req.URL.Path),
		observability.String("route", attrs.Name()),
		observability.Int("candidates", initial),
	)

	return attrs, nil
}

// retrieve asks the provider for candidates. An empty set is terminal:
// filters and the final matcher are never invoked for it.
func (r *Resolver) retrieve(ctx context.Context, provider Provider, req *http.Request) ([]*route.Route, error) {
	stageStart := time.Now()

	candidates, err := provider.CandidatesFor(ctx, req)
	r.metrics.RecordStage("provider", time.Since(stageStart))
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		r.logger.Debug("no candidate routes",
			observability.String("method", req.Method),
			observability.String("path", req.URL.Path),
		)
		return nil, util.NewNoRouteErrorAtStage(req.Method, req.URL.Path, "provider")
	}

	return candidates, nil
}

// applyFilters folds the candidate set through the ordered chain.
// Filters signal exhaustion themselves; the resolver adds no emptiness
// checks between passes.
func (r *Resolver) applyFilters(ctx context.Context, candidates []*route.Route, req *http.Request) ([]*route.Route, error) {
	stageStart := time.Now()
	defer func() {
		r.metrics.RecordStage("filters", time.Since(stageStart))
	}()

	for _, f := range r.filters.orderedFilters() {
		before := len(candidates)

		narrowed, err := f.Filter(ctx, candidates, req)
		if err != nil {
			r.logger.Debug("filter rejected request",
				observability.String("filter", f.Name()),
				observability.String("method", req.Method),
				observability.String("path", req.URL.Path),
				observability.Error(err),
			)
			return nil, err
		}

		r.metrics.RecordFilterDrop(f.Name(), before-len(narrowed))
		candidates = narrowed
	}

	return candidates, nil
}

// match delegates to the final matcher.
func (r *Resolver) match(ctx context.Context, final FinalMatcher, candidates []*route.Route, req *http.Request) (Attributes, error) {
	stageStart := time.Now()
	defer func() {
		r.metrics.RecordStage("matcher", time.Since(stageStart))
	}()

	return final.Select(ctx, candidates, req)
}

// normalize applies the reserved attribute rules: when the route
// attribute is present and truthy, a string value fills an absent name
// attribute and is then materialized through the provider; an already
// materialized record passes through untouched. A failed lookup
// propagates to the caller unmodified.
func (r *Resolver) normalize(ctx context.Context, provider Provider, attrs Attributes) (Attributes, error) {
	value, ok := attrs[AttrRoute]
	if !ok || value == nil {
		return attrs, nil
	}

	name, isString := value.(string)
	if !isString {
		return attrs, nil
	}
	if name == "" {
		return attrs, nil
	}

	if _, ok := attrs[AttrName]; !ok {
		attrs[AttrName] = name
	}

	stageStart := time.Now()
	record, err := provider.RouteByName(ctx, name)
	r.metrics.RecordStage("lookup", time.Since(stageStart))
	if err != nil {
		return nil, err
	}

	attrs[AttrRoute] = record
	return attrs, nil
}

// observe records the end-to-end outcome.
func (r *Resolver) observe(outcome string, start time.Time) {
	r.metrics.RecordResolution(outcome, time.Since(start))
}

// outcomeFor maps an error to a metrics outcome label, falling back to
// the stage default for unrecognized kinds.
func outcomeFor(err error, fallback string) string {
	switch {
	case util.IsNoRoute(err):
		return "no_route"
	case util.IsAmbiguousMatch(err):
		return "ambiguous"
	case util.IsNotFound(err):
		return "unknown_route"
	case util.IsProviderUnavailable(err):
		return "provider_unavailable"
	default:
		return fallback
	}
}

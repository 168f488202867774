package matcher

import (
	"context"
	"net/http"
	"sync"

	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/resolver"
	"github.com/vyrodovalexey/avrouter/internal/route"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// PathFinalMatcher selects the winning route by path: it walks the
// filtered candidates in order and the first pattern match wins.
// Candidates arrive priority-ordered from the provider, so the walk
// realizes highest-priority-first selection.
type PathFinalMatcher struct {
	mu       sync.RWMutex
	compiled map[string]PathMatcher

	strict bool
	logger observability.Logger
}

// Option is a functional option for configuring the matcher.
type Option func(*PathFinalMatcher)

// WithStrictAmbiguity makes the matcher fail with an ambiguity error
// when a second candidate of the same priority also matches, instead of
// silently picking the first.
func WithStrictAmbiguity() Option {
	return func(m *PathFinalMatcher) {
		m.strict = true
	}
}

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(m *PathFinalMatcher) {
		m.logger = logger
	}
}

// NewPathFinalMatcher creates a new path-based final matcher.
func NewPathFinalMatcher(opts ...Option) *PathFinalMatcher {
	m := &PathFinalMatcher{
		compiled: make(map[string]PathMatcher),
		logger:   observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Select implements resolver.FinalMatcher. The produced attributes are
// the route's defaults, overlaid with extracted path parameters; the
// reserved route and name keys always reflect the selected record.
func (m *PathFinalMatcher) Select(_ context.Context, candidates []*route.Route, req *http.Request) (resolver.Attributes, error) {
	path := req.URL.Path

	for i, candidate := range candidates {
		matched, params, err := m.matchRoute(candidate, path)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}

		if m.strict {
			if err := m.checkAmbiguity(candidate, candidates[i+1:], req); err != nil {
				return nil, err
			}
		}

		m.logger.Debug("final match",
			observability.String("route", candidate.Name),
			observability.String("path", path),
			observability.Int("position", i),
		)

		return buildAttributes(candidate, params), nil
	}

	return nil, util.NewNoRouteErrorAtStage(req.Method, path, "matcher")
}

// matchRoute matches a single candidate against the request path.
// Routes without a path criterion match any path.
func (m *PathFinalMatcher) matchRoute(r *route.Route, path string) (bool, map[string]string, error) {
	pm, err := m.matcherFor(r)
	if err != nil {
		return false, nil, util.NewRouteDefinitionErrorWithCause(r.Name, "path", "pattern compile failed", err)
	}

	if pm == nil {
		return true, nil, nil
	}

	matched, params := pm.Match(path)
	return matched, params, nil
}

// checkAmbiguity fails when another candidate of the same priority also
// matches the path.
func (m *PathFinalMatcher) checkAmbiguity(winner *route.Route, rest []*route.Route, req *http.Request) error {
	for _, other := range rest {
		if other.Priority != winner.Priority {
			continue
		}

		matched, _, err := m.matchRoute(other, req.URL.Path)
		if err != nil {
			return err
		}
		if matched {
			return util.NewAmbiguousMatchError(req.Method, req.URL.Path, []string{winner.Name, other.Name})
		}
	}
	return nil
}

// matcherFor returns the compiled path matcher for a route, compiling
// and caching it on first use. The cache key is the pattern itself, so
// routes sharing a pattern share the compiled matcher.
func (m *PathFinalMatcher) matcherFor(r *route.Route) (PathMatcher, error) {
	key := patternKey(r)
	if key == "" {
		return nil, nil
	}

	m.mu.RLock()
	pm, ok := m.compiled[key]
	m.mu.RUnlock()
	if ok {
		return pm, nil
	}

	pm, err := CompilePattern(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.compiled[key]; ok {
		return existing, nil
	}
	m.compiled[key] = pm
	return pm, nil
}

func patternKey(r *route.Route) string {
	if r.PathRegex != "" {
		return "re:" + r.PathRegex
	}
	if r.Path != "" {
		return "p:" + r.Path
	}
	return ""
}

// buildAttributes assembles the resolved attribute map: defaults first,
// then extracted parameters, then the reserved keys.
func buildAttributes(r *route.Route, params map[string]string) resolver.Attributes {
	attrs := make(resolver.Attributes, len(r.Defaults)+len(params)+2)

	for k, v := range r.Defaults {
		attrs[k] = v
	}
	for k, v := range params {
		attrs[k] = v
	}

	attrs[resolver.AttrRoute] = r
	attrs[resolver.AttrName] = r.Name

	return attrs
}

package filter

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/vyrodovalexey/avrouter/internal/route"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// HeaderFilter drops candidates whose header constraints the request
// does not satisfy. Routes without header constraints always pass.
// Regex constraints are compiled once per pattern and cached for the
// filter's lifetime.
type HeaderFilter struct {
	mu       sync.RWMutex
	compiled map[string]*regexp.Regexp
}

// NewHeaderFilter creates a new header filter.
func NewHeaderFilter() *HeaderFilter {
	return &HeaderFilter{
		compiled: make(map[string]*regexp.Regexp),
	}
}

// Name implements resolver.Filter.
func (f *HeaderFilter) Name() string {
	return "header"
}

// Filter implements resolver.Filter.
func (f *HeaderFilter) Filter(_ context.Context, candidates []*route.Route, req *http.Request) ([]*route.Route, error) {
	kept := make([]*route.Route, 0, len(candidates))

	for _, r := range candidates {
		ok, err := f.routeMatches(r, req)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, r)
		}
	}

	if len(kept) == 0 {
		return nil, exhausted(req, f.Name())
	}
	return kept, nil
}

// routeMatches checks every header constraint of one route.
func (f *HeaderFilter) routeMatches(r *route.Route, req *http.Request) (bool, error) {
	for _, h := range r.Headers {
		ok, err := f.constraintMatches(r.Name, h, req)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (f *HeaderFilter) constraintMatches(routeName string, h route.HeaderMatch, req *http.Request) (bool, error) {
	value := req.Header.Get(h.Name)
	present := value != "" || len(req.Header.Values(h.Name)) > 0

	if h.Absent != nil && *h.Absent {
		return !present, nil
	}
	if h.Present != nil && *h.Present && !present {
		return false, nil
	}

	switch {
	case h.Exact != "":
		return value == h.Exact, nil
	case h.Prefix != "":
		return strings.HasPrefix(value, h.Prefix), nil
	case h.Regex != "":
		re, err := f.regexFor(routeName, h.Regex)
		if err != nil {
			return false, err
		}
		return re.MatchString(value), nil
	default:
		// Presence-only constraint.
		return present, nil
	}
}

// regexFor returns the compiled pattern, compiling and caching it on
// first use. A compile failure surfaces as a route definition error so
// the caller can tell a bad route from a non-match.
func (f *HeaderFilter) regexFor(routeName, pattern string) (*regexp.Regexp, error) {
	f.mu.RLock()
	re, ok := f.compiled[pattern]
	f.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, util.NewRouteDefinitionErrorWithCause(routeName, "headers", "invalid header regex", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.compiled[pattern]; ok {
		return existing, nil
	}
	f.compiled[pattern] = re
	return re, nil
}

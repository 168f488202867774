package filter

import (
	"net/http"
	"strings"

	"github.com/vyrodovalexey/avrouter/internal/route"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// Suggested chain priorities. Higher values run earlier; cheap filters
// come first so expensive ones see smaller sets.
const (
	PriorityMethod    = 100
	PriorityHost      = 80
	PriorityScheme    = 60
	PriorityHeader    = 40
	PriorityCondition = 20
)

// narrow keeps the candidates for which keep returns true. The input
// slice is never mutated; a fresh slice is returned even when nothing
// is dropped so filters stay side-effect free.
func narrow(candidates []*route.Route, keep func(*route.Route) bool) []*route.Route {
	kept := make([]*route.Route, 0, len(candidates))
	for _, r := range candidates {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	return kept
}

// exhausted builds the error a filter returns when its pass leaves no
// candidates.
func exhausted(req *http.Request, name string) error {
	return util.NewNoRouteErrorAtStage(req.Method, req.URL.Path, "filter/"+name)
}

// requestScheme returns the effective request scheme, preferring the
// X-Forwarded-Proto header set by upstream proxies over the TLS state.
func requestScheme(req *http.Request) string {
	if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(proto)
	}
	if req.TLS != nil {
		return "https"
	}
	return "http"
}

// requestHost returns the request host with any port stripped.
func requestHost(req *http.Request) string {
	host := req.Host
	if host == "" {
		host = req.URL.Host
	}
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.Contains(host[idx:], "]") {
		host = host[:idx]
	}
	return strings.ToLower(strings.TrimSuffix(host, "."))
}

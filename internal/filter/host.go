package filter

import (
	"context"
	"net/http"
	"strings"

	"github.com/vyrodovalexey/avrouter/internal/route"
)

// HostFilter drops candidates whose host patterns do not cover the
// request host. Routes without host patterns match any host.
type HostFilter struct{}

// NewHostFilter creates a new host filter.
func NewHostFilter() *HostFilter {
	return &HostFilter{}
}

// Name implements resolver.Filter.
func (f *HostFilter) Name() string {
	return "host"
}

// Filter implements resolver.Filter.
func (f *HostFilter) Filter(_ context.Context, candidates []*route.Route, req *http.Request) ([]*route.Route, error) {
	host := requestHost(req)

	kept := narrow(candidates, func(r *route.Route) bool {
		return hostAllowed(r.Hosts, host)
	})

	if len(kept) == 0 {
		return nil, exhausted(req, f.Name())
	}
	return kept, nil
}

// hostAllowed reports whether any pattern covers the host. Patterns
// are exact hostnames or "*.example.com" wildcards; a wildcard matches
// any subdomain but not the bare domain itself.
func hostAllowed(patterns []string, host string) bool {
	if len(patterns) == 0 {
		return true
	}

	for _, pattern := range patterns {
		pattern = strings.ToLower(pattern)

		if strings.HasPrefix(pattern, "*.") {
			if strings.HasSuffix(host, pattern[1:]) && host != pattern[2:] {
				return true
			}
			continue
		}

		if host == pattern {
			return true
		}
	}
	return false
}

package filter

import (
	"context"
	"net/http"
	"strings"

	"github.com/vyrodovalexey/avrouter/internal/route"
)

// MethodFilter drops candidates whose method list does not admit the
// request method. Routes without a method list match any method.
type MethodFilter struct{}

// NewMethodFilter creates a new method filter.
func NewMethodFilter() *MethodFilter {
	return &MethodFilter{}
}

// Name implements resolver.Filter.
func (f *MethodFilter) Name() string {
	return "method"
}

// Filter implements resolver.Filter.
func (f *MethodFilter) Filter(_ context.Context, candidates []*route.Route, req *http.Request) ([]*route.Route, error) {
	method := strings.ToUpper(req.Method)

	kept := narrow(candidates, func(r *route.Route) bool {
		return methodAllowed(r.Methods, method)
	})

	if len(kept) == 0 {
		return nil, exhausted(req, f.Name())
	}
	return kept, nil
}

// methodAllowed reports whether the method list admits the request
// method. A HEAD request is admitted by a route that allows GET, per
// RFC 9110's definition of HEAD as GET without a body.
func methodAllowed(methods []string, method string) bool {
	if len(methods) == 0 {
		return true
	}

	for _, m := range methods {
		m = strings.ToUpper(m)
		if m == "*" || m == method {
			return true
		}
		if method == http.MethodHead && m == http.MethodGet {
			return true
		}
	}
	return false
}

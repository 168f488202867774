package filter

import (
	"context"
	"net/http"
	"strings"

	"github.com/vyrodovalexey/avrouter/internal/route"
)

// SchemeFilter drops candidates whose scheme list does not admit the
// effective request scheme. Routes without a scheme list match any
// scheme.
type SchemeFilter struct{}

// NewSchemeFilter creates a new scheme filter.
func NewSchemeFilter() *SchemeFilter {
	return &SchemeFilter{}
}

// Name implements resolver.Filter.
func (f *SchemeFilter) Name() string {
	return "scheme"
}

// Filter implements resolver.Filter.
func (f *SchemeFilter) Filter(_ context.Context, candidates []*route.Route, req *http.Request) ([]*route.Route, error) {
	scheme := requestScheme(req)

	kept := narrow(candidates, func(r *route.Route) bool {
		return schemeAllowed(r.Schemes, scheme)
	})

	if len(kept) == 0 {
		return nil, exhausted(req, f.Name())
	}
	return kept, nil
}

func schemeAllowed(schemes []string, scheme string) bool {
	if len(schemes) == 0 {
		return true
	}

	for _, s := range schemes {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

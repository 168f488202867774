package resolver

import (
	"context"
	"net/http"

	"github.com/vyrodovalexey/avrouter/internal/route"
)

// Provider supplies candidate routes for a request and materializes
// route records by name. Implementations may be backed by memory, Redis,
// or any other store; the resolver treats them as opaque.
type Provider interface {
	// CandidatesFor returns every route that could plausibly match the
	// request. An empty slice with a nil error is the valid "no
	// candidates" answer; errors are reserved for provider failures.
	// The returned slice is owned by the caller for the duration of the
	// resolution and is never retained by the resolver.
	CandidatesFor(ctx context.Context, req *http.Request) ([]*route.Route, error)

	// RouteByName returns the route record registered under the given
	// name. The error matches util.ErrNotFound when the name is
	// unknown.
	RouteByName(ctx context.Context, name string) (*route.Route, error)
}

// Filter narrows a candidate set. Implementations must never add
// routes, and must return an error matching util.ErrNoRoute when
// nothing survives the pass; the resolver performs no emptiness checks
// between filters.
type Filter interface {
	// Filter returns the candidates that survive this pass.
	Filter(ctx context.Context, candidates []*route.Route, req *http.Request) ([]*route.Route, error)

	// Name identifies the filter in logs and metrics.
	Name() string
}

// FinalMatcher selects the winning route from the filtered candidates
// and produces the resolved attributes. It fails with an error matching
// util.ErrNoRoute when no candidate matches, or util.ErrAmbiguousMatch
// when it refuses to break a tie.
type FinalMatcher interface {
	Select(ctx context.Context, candidates []*route.Route, req *http.Request) (Attributes, error)
}

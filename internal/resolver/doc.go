// Package resolver implements the request-to-route resolution pipeline.
//
// Resolution runs in three stages: a Provider produces the candidate
// routes for a request, a priority-ordered chain of Filters narrows the
// set, and a FinalMatcher picks the winning route and emits the resolved
// attribute map. The resolver owns none of the matching logic itself;
// all three roles are injected capabilities.
//
// # Features
//
//   - Pluggable provider, filter, and final matcher capabilities
//   - Priority-ordered filter chain with stable registration-order ties
//   - Memoized chain ordering, invalidated on registration
//   - Reserved attribute post-processing (route and name keys)
//   - Stateless, concurrency-safe resolution
//   - Prometheus metrics for every pipeline stage
//
// # Usage
//
// Create a resolver with a provider and a final matcher, then register
// filters with priorities (higher runs earlier):
//
//	res := resolver.New(provider, matcher,
//	    resolver.WithLogger(logger),
//	    resolver.WithFilter(filter.NewMethodFilter(), filter.PriorityMethod),
//	)
//	res.AddFilter(filter.NewHostFilter(), filter.PriorityHost)
//
//	attrs, err := res.Resolve(ctx, req)
//	if err != nil {
//	    // util.IsNoRoute(err) distinguishes a miss from a failure
//	}
//	name := attrs.Name()
package resolver

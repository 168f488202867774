// Package filter provides the built-in candidate filters for the
// resolution pipeline.
//
// Each filter implements resolver.Filter and narrows the candidate set
// by one request property. Routes that do not constrain that property
// pass the filter untouched. A filter whose pass leaves no candidates
// fails the resolution itself; the resolver never re-checks emptiness
// between passes.
//
// # Filters
//
//   - Method: HTTP method, with * wildcard and HEAD falling back to GET
//   - Host: exact and *.example.com wildcard host patterns
//   - Scheme: http/https, honoring TLS state and X-Forwarded-Proto
//   - Header: per-route header constraints (exact/prefix/regex/present)
//   - Condition: CEL expressions evaluated against the request
//
// # Usage
//
// Register filters with the resolver at the suggested priorities
// (higher runs earlier); callers may override:
//
//	res := resolver.New(provider, final,
//	    resolver.WithFilter(filter.NewMethodFilter(), filter.PriorityMethod),
//	    resolver.WithFilter(filter.NewHostFilter(), filter.PriorityHost),
//	)
package filter

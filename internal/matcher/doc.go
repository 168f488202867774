// Package matcher provides path matching and final route selection for
// the resolution pipeline.
//
// This package implements exact, parameterized, wildcard, and regex
// path matching with parameter extraction, plus the FinalMatcher that
// walks the filtered candidates in priority order and picks the first
// path match.
//
// # Features
//
//   - Exact, parameter ({id}), wildcard (* / **), and regex patterns
//   - Path parameter extraction from patterns and named regex groups
//   - Bounded LRU cache for compiled regular expressions
//   - First-match-wins selection over priority-ordered candidates
//   - Optional strict mode that rejects same-priority ties
//
// # Usage
//
// Create the final matcher and hand it to the resolver:
//
//	final := matcher.NewPathFinalMatcher(
//	    matcher.WithStrictAmbiguity(),
//	)
//	res := resolver.New(provider, final)
package matcher

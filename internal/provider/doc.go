// Package provider supplies route candidates to the resolution
// pipeline.
//
// # Providers
//
//   - MemoryProvider: in-process route table with a first-segment
//     index, suited to config-file driven deployments and hot reload
//   - RedisProvider: routes stored as JSON in Redis, shared between
//     instances
//   - BreakerProvider: circuit breaker decorator for any provider
//     backed by a network store
//
// All providers return candidates ordered by priority descending so
// the final matcher's first-match walk realizes priority selection.
//
// # Usage
//
//	p := provider.NewMemoryProvider()
//	if err := p.Load(routes); err != nil {
//	    return err
//	}
//	res := resolver.New(p, final)
package provider

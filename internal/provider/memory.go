package provider

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/route"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// memoryEntry pairs a route with its insertion sequence so candidate
// ordering stays stable across index buckets.
type memoryEntry struct {
	route *route.Route
	seq   int
}

// MemoryProvider is an in-process route table. Candidates are served
// from a first-segment index: routes whose path starts with a static
// segment only compete for requests under that segment, everything
// else lands in a catch-all bucket that is always considered.
type MemoryProvider struct {
	mu      sync.RWMutex
	entries []memoryEntry
	byName  map[string]memoryEntry
	index   map[string][]memoryEntry
	all     []memoryEntry
	nextSeq int

	logger observability.Logger
}

// MemoryOption is a functional option for the memory provider.
type MemoryOption func(*MemoryProvider)

// WithMemoryLogger sets the logger.
func WithMemoryLogger(logger observability.Logger) MemoryOption {
	return func(p *MemoryProvider) {
		p.logger = logger
	}
}

// NewMemoryProvider creates an empty memory provider.
func NewMemoryProvider(opts ...MemoryOption) *MemoryProvider {
	p := &MemoryProvider{
		byName: make(map[string]memoryEntry),
		index:  make(map[string][]memoryEntry),
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Add registers a route. The route is validated and its name must be
// unique within the provider.
func (p *MemoryProvider) Add(r *route.Route) error {
	if err := r.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byName[r.Name]; exists {
		return util.NewRouteDefinitionError(r.Name, "name", "duplicate route name")
	}

	entry := memoryEntry{route: r, seq: p.nextSeq}
	p.nextSeq++
	p.entries = append(p.entries, entry)
	p.byName[r.Name] = entry
	p.rebuildIndexLocked()

	p.logger.Debug("route added", observability.String("route", r.Name))
	return nil
}

// Remove deletes a route by name.
func (p *MemoryProvider) Remove(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byName[name]; !exists {
		return util.NewUnknownRouteError(name)
	}

	delete(p.byName, name)
	entries := p.entries[:0]
	for _, e := range p.entries {
		if e.route.Name != name {
			entries = append(entries, e)
		}
	}
	p.entries = entries
	p.rebuildIndexLocked()

	p.logger.Debug("route removed", observability.String("route", name))
	return nil
}

// Load atomically replaces the whole route table. The incoming routes
// are validated together first; an invalid set leaves the current
// table untouched.
func (p *MemoryProvider) Load(routes []*route.Route) error {
	if err := route.ValidateAll(routes); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries = make([]memoryEntry, 0, len(routes))
	p.byName = make(map[string]memoryEntry, len(routes))
	p.nextSeq = 0

	for _, r := range routes {
		entry := memoryEntry{route: r, seq: p.nextSeq}
		p.nextSeq++
		p.entries = append(p.entries, entry)
		p.byName[r.Name] = entry
	}
	p.rebuildIndexLocked()

	p.logger.Info("route table loaded", observability.Int("routes", len(routes)))
	return nil
}

// Len returns the number of registered routes.
func (p *MemoryProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Names returns the registered route names in insertion order.
func (p *MemoryProvider) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		names = append(names, e.route.Name)
	}
	return names
}

// CandidatesFor implements resolver.Provider. The result is a fresh
// slice ordered by priority descending with insertion order breaking
// ties; an empty table yields an empty slice, never an error.
func (p *MemoryProvider) CandidatesFor(_ context.Context, req *http.Request) ([]*route.Route, error) {
	p.mu.RLock()
	bucket := p.index[firstSegment(req.URL.Path)]
	all := p.all
	p.mu.RUnlock()

	merged := make([]memoryEntry, 0, len(bucket)+len(all))
	merged = append(merged, bucket...)
	merged = append(merged, all...)

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].route.Priority != merged[j].route.Priority {
			return merged[i].route.Priority > merged[j].route.Priority
		}
		return merged[i].seq < merged[j].seq
	})

	candidates := make([]*route.Route, 0, len(merged))
	for _, e := range merged {
		candidates = append(candidates, e.route)
	}
	return candidates, nil
}

// RouteByName implements resolver.Provider.
func (p *MemoryProvider) RouteByName(_ context.Context, name string) (*route.Route, error) {
	p.mu.RLock()
	entry, ok := p.byName[name]
	p.mu.RUnlock()

	if !ok {
		return nil, util.NewUnknownRouteError(name)
	}
	return entry.route, nil
}

// rebuildIndexLocked recomputes the first-segment index. Routes with a
// static first segment go into that segment's bucket; parameterized,
// wildcard, regex and path-less routes go into the catch-all list.
func (p *MemoryProvider) rebuildIndexLocked() {
	index := make(map[string][]memoryEntry)
	all := make([]memoryEntry, 0)

	for _, e := range p.entries {
		segment, static := staticFirstSegment(e.route)
		if static {
			index[segment] = append(index[segment], e)
		} else {
			all = append(all, e)
		}
	}

	p.index = index
	p.all = all
}

// staticFirstSegment returns the route's first path segment and
// whether it is static enough to index on.
func staticFirstSegment(r *route.Route) (string, bool) {
	if r.Path == "" || r.PathRegex != "" {
		return "", false
	}

	segment := firstSegment(r.Path)
	if segment == "" || strings.ContainsAny(segment, "{*") {
		return "", false
	}
	return segment, true
}

// firstSegment returns the first path segment of a slash-separated
// path, without the leading slash.
func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if idx := strings.IndexByte(path, '/'); idx != -1 {
		return path[:idx]
	}
	return path
}

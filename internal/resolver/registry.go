package resolver

import (
	"sort"
	"sync"
)

// filterEntry pairs a registered filter with its priority.
type filterEntry struct {
	filter   Filter
	priority int
}

// filterRegistry holds registered filters grouped by priority and
// memoizes the flattened execution order. The ordering is priorities
// descending, with registration order breaking ties. Registration
// invalidates the memo; the next read rebuilds it into a fresh slice so
// in-flight resolutions keep iterating the chain they started with.
type filterRegistry struct {
	mu      sync.RWMutex
	entries []filterEntry
	ordered []Filter

	// onRebuild, when set, is invoked after each recomputation of the
	// execution order.
	onRebuild func()
}

func newFilterRegistry() *filterRegistry {
	return &filterRegistry{}
}

// add registers a filter at the given priority and invalidates the
// memoized ordering.
func (r *filterRegistry) add(f Filter, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, filterEntry{filter: f, priority: priority})
	r.ordered = nil
}

// size returns the number of registered filters.
func (r *filterRegistry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// orderedFilters returns the memoized execution order, rebuilding it if
// a registration invalidated the memo. Callers must not mutate the
// returned slice.
func (r *filterRegistry) orderedFilters() []Filter {
	r.mu.RLock()
	ordered := r.ordered
	r.mu.RUnlock()

	if ordered != nil {
		return ordered
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ordered == nil {
		r.ordered = r.rebuildLocked()
		if r.onRebuild != nil {
			r.onRebuild()
		}
	}
	return r.ordered
}

// rebuildLocked flattens the registered filters into execution order.
// sort.SliceStable preserves registration order within a priority.
func (r *filterRegistry) rebuildLocked() []Filter {
	sorted := make([]filterEntry, len(r.entries))
	copy(sorted, r.entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].priority > sorted[j].priority
	})

	ordered := make([]Filter, 0, len(sorted))
	for _, entry := range sorted {
		ordered = append(ordered, entry.filter)
	}
	return ordered
}

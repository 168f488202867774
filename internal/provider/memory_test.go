package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avrouter/internal/route"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

func candidateNames(t *testing.T, p *MemoryProvider, target string) []string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	candidates, err := p.CandidatesFor(context.Background(), req)
	require.NoError(t, err)

	names := make([]string, 0, len(candidates))
	for _, r := range candidates {
		names = append(names, r.Name)
	}
	return names
}

func TestMemoryProvider_AddAndLookup(t *testing.T) {
	t.Parallel()

	p := NewMemoryProvider()

	r := &route.Route{Name: "blog_show", Path: "/blog/{slug}"}
	require.NoError(t, p.Add(r))
	assert.Equal(t, 1, p.Len())

	got, err := p.RouteByName(context.Background(), "blog_show")
	require.NoError(t, err)
	assert.Same(t, r, got)

	_, err = p.RouteByName(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, util.IsNotFound(err))
}

func TestMemoryProvider_RejectsInvalidAndDuplicate(t *testing.T) {
	t.Parallel()

	p := NewMemoryProvider()

	err := p.Add(&route.Route{Name: "", Path: "/x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrInvalidRoute)

	require.NoError(t, p.Add(&route.Route{Name: "a", Path: "/a"}))
	err = p.Add(&route.Route{Name: "a", Path: "/other"})
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrInvalidRoute)
	assert.Equal(t, 1, p.Len())
}

func TestMemoryProvider_Remove(t *testing.T) {
	t.Parallel()

	p := NewMemoryProvider()
	require.NoError(t, p.Add(&route.Route{Name: "a", Path: "/a"}))
	require.NoError(t, p.Add(&route.Route{Name: "b", Path: "/b"}))

	require.NoError(t, p.Remove("a"))
	assert.Equal(t, []string{"b"}, p.Names())

	err := p.Remove("a")
	require.Error(t, err)
	assert.True(t, util.IsNotFound(err))
}

func TestMemoryProvider_CandidateOrdering(t *testing.T) {
	t.Parallel()

	p := NewMemoryProvider()

	// Registered out of priority order; equal priorities must keep
	// insertion order.
	require.NoError(t, p.Add(&route.Route{Name: "low", Path: "/blog/archive", Priority: 1}))
	require.NoError(t, p.Add(&route.Route{Name: "tie_first", Path: "/blog/{slug}", Priority: 5}))
	require.NoError(t, p.Add(&route.Route{Name: "high", Path: "/blog/featured", Priority: 10}))
	require.NoError(t, p.Add(&route.Route{Name: "tie_second", Path: "/blog/*", Priority: 5}))

	assert.Equal(t,
		[]string{"high", "tie_first", "tie_second", "low"},
		candidateNames(t, p, "/blog/featured"),
	)
}

func TestMemoryProvider_FirstSegmentIndex(t *testing.T) {
	t.Parallel()

	p := NewMemoryProvider()

	require.NoError(t, p.Add(&route.Route{Name: "blog", Path: "/blog/{slug}"}))
	require.NoError(t, p.Add(&route.Route{Name: "orders", Path: "/orders/{id}"}))
	require.NoError(t, p.Add(&route.Route{Name: "catchall", Path: "/**"}))
	require.NoError(t, p.Add(&route.Route{Name: "param_root", Path: "/{page}"}))
	require.NoError(t, p.Add(&route.Route{Name: "regex", PathRegex: `^/v\d+/.*$`}))

	// Static-segment routes only compete under their own segment; the
	// wildcard, parameter and regex routes are always candidates.
	assert.Equal(t,
		[]string{"blog", "catchall", "param_root", "regex"},
		candidateNames(t, p, "/blog/first-post"),
	)
	assert.Equal(t,
		[]string{"orders", "catchall", "param_root", "regex"},
		candidateNames(t, p, "/orders/42"),
	)
	assert.Equal(t,
		[]string{"catchall", "param_root", "regex"},
		candidateNames(t, p, "/unknown"),
	)
}

func TestMemoryProvider_EmptyTable(t *testing.T) {
	t.Parallel()

	p := NewMemoryProvider()
	assert.Empty(t, candidateNames(t, p, "/anything"))
}

func TestMemoryProvider_LoadReplacesTable(t *testing.T) {
	t.Parallel()

	p := NewMemoryProvider()
	require.NoError(t, p.Add(&route.Route{Name: "old", Path: "/old"}))

	err := p.Load([]*route.Route{
		{Name: "a", Path: "/a"},
		{Name: "b", Path: "/b"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, p.Names())

	_, err = p.RouteByName(context.Background(), "old")
	assert.True(t, util.IsNotFound(err))
}

func TestMemoryProvider_LoadInvalidSetLeavesTableUntouched(t *testing.T) {
	t.Parallel()

	p := NewMemoryProvider()
	require.NoError(t, p.Add(&route.Route{Name: "keep", Path: "/keep"}))

	err := p.Load([]*route.Route{
		{Name: "a", Path: "/a"},
		{Name: "a", Path: "/dup"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrInvalidRoute)
	assert.Equal(t, []string{"keep"}, p.Names())
}

package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avrouter/internal/route"
)

func TestExactMatcher(t *testing.T) {
	t.Parallel()

	m := NewExactMatcher("/api/users")

	matched, params := m.Match("/api/users")
	assert.True(t, matched)
	assert.Nil(t, params)

	matched, _ = m.Match("/api/users/1")
	assert.False(t, matched)

	assert.Equal(t, "exact", m.Type())
	assert.Equal(t, "/api/users", m.Pattern())
}

func TestRegexMatcher(t *testing.T) {
	t.Parallel()

	m, err := NewRegexMatcher(`^/api/v(?P<version>\d+)/users$`)
	require.NoError(t, err)

	matched, params := m.Match("/api/v2/users")
	assert.True(t, matched)
	assert.Equal(t, map[string]string{"version": "2"}, params)

	matched, _ = m.Match("/api/vx/users")
	assert.False(t, matched)

	assert.Equal(t, "regex", m.Type())
}

func TestRegexMatcher_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewRegexMatcher("[invalid")
	assert.Error(t, err)
}

func TestParameterMatcher(t *testing.T) {
	t.Parallel()

	m, err := NewParameterMatcher("/users/{id}/orders/{orderID}")
	require.NoError(t, err)

	matched, params := m.Match("/users/42/orders/7")
	assert.True(t, matched)
	assert.Equal(t, map[string]string{"id": "42", "orderID": "7"}, params)

	matched, _ = m.Match("/users/42")
	assert.False(t, matched)

	// Parameters never span segments.
	matched, _ = m.Match("/users/42/7/orders/7")
	assert.False(t, matched)

	assert.Equal(t, "parameter", m.Type())
}

func TestWildcardMatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/static/*", "/static/app.js", true},
		{"/static/*", "/static/css/app.css", false},
		{"/static/**", "/static/css/app.css", true},
		{"/files/?.txt", "/files/a.txt", true},
		{"/files/?.txt", "/files/ab.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			t.Parallel()

			m, err := NewWildcardMatcher(tt.pattern)
			require.NoError(t, err)

			matched, _ := m.Match(tt.path)
			assert.Equal(t, tt.want, matched)
		})
	}
}

func TestCompilePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		route    *route.Route
		wantType string
	}{
		{
			name:     "regex takes precedence",
			route:    &route.Route{Name: "r", Path: "/users/{id}", PathRegex: "^/users/.+$"},
			wantType: "regex",
		},
		{
			name:     "parameter",
			route:    &route.Route{Name: "r", Path: "/users/{id}"},
			wantType: "parameter",
		},
		{
			name:     "wildcard",
			route:    &route.Route{Name: "r", Path: "/static/**"},
			wantType: "wildcard",
		},
		{
			name:     "exact",
			route:    &route.Route{Name: "r", Path: "/healthz"},
			wantType: "exact",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pm, err := CompilePattern(tt.route)
			require.NoError(t, err)
			require.NotNil(t, pm)
			assert.Equal(t, tt.wantType, pm.Type())
		})
	}
}

func TestCompilePattern_NoPathCriterion(t *testing.T) {
	t.Parallel()

	pm, err := CompilePattern(&route.Route{Name: "any"})
	require.NoError(t, err)
	assert.Nil(t, pm)
}

func TestCompileCached_SharesCompiledRegex(t *testing.T) {
	t.Parallel()

	first, err := compileCached(`^/cached/path$`)
	require.NoError(t, err)

	second, err := compileCached(`^/cached/path$`)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

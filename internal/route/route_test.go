package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avrouter/internal/util"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestRouteValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		route   Route
		wantErr bool
		field   string
	}{
		{
			name:  "valid exact path",
			route: Route{Name: "home", Path: "/"},
		},
		{
			name:  "valid parameterized path",
			route: Route{Name: "blog_show", Path: "/blog/{slug}"},
		},
		{
			name:  "valid regex path",
			route: Route{Name: "archive", PathRegex: `^/archive/(?P<year>\d{4})$`},
		},
		{
			name:  "valid method only",
			route: Route{Name: "any_post", Methods: []string{"POST"}},
		},
		{
			name:  "valid condition only",
			route: Route{Name: "mobile", Condition: `request.header("User-Agent").contains("Mobile")`},
		},
		{
			name:    "empty name",
			route:   Route{Path: "/x"},
			wantErr: true,
			field:   "name",
		},
		{
			name:    "no criteria",
			route:   Route{Name: "empty"},
			wantErr: true,
		},
		{
			name:    "path and regex together",
			route:   Route{Name: "both", Path: "/a", PathRegex: "^/a$"},
			wantErr: true,
			field:   "path",
		},
		{
			name:    "relative path",
			route:   Route{Name: "rel", Path: "blog"},
			wantErr: true,
			field:   "path",
		},
		{
			name:    "unbalanced braces",
			route:   Route{Name: "broken", Path: "/blog/{slug"},
			wantErr: true,
			field:   "path",
		},
		{
			name:    "empty parameter name",
			route:   Route{Name: "broken", Path: "/blog/{}"},
			wantErr: true,
			field:   "path",
		},
		{
			name:    "invalid regex",
			route:   Route{Name: "bad_re", PathRegex: "(unclosed"},
			wantErr: true,
			field:   "pathRegex",
		},
		{
			name:    "invalid method",
			route:   Route{Name: "bad_method", Path: "/x", Methods: []string{"FETCH"}},
			wantErr: true,
			field:   "methods",
		},
		{
			name:    "invalid host",
			route:   Route{Name: "bad_host", Path: "/x", Hosts: []string{"exa_mple.com"}},
			wantErr: true,
			field:   "hosts",
		},
		{
			name:    "invalid scheme",
			route:   Route{Name: "bad_scheme", Path: "/x", Schemes: []string{"ftp"}},
			wantErr: true,
			field:   "schemes",
		},
		{
			name: "invalid header name",
			route: Route{Name: "bad_header", Path: "/x", Headers: []HeaderMatch{
				{Name: "X Custom"},
			}},
			wantErr: true,
		},
		{
			name: "conflicting header kinds",
			route: Route{Name: "conflict", Path: "/x", Headers: []HeaderMatch{
				{Name: "Accept", Exact: "application/json", Prefix: "application/"},
			}},
			wantErr: true,
		},
		{
			name: "present and absent together",
			route: Route{Name: "conflict", Path: "/x", Headers: []HeaderMatch{
				{Name: "X-Debug", Present: boolPtr(true), Absent: boolPtr(true)},
			}},
			wantErr: true,
		},
		{
			name: "valid header constraints",
			route: Route{Name: "api", Path: "/x", Headers: []HeaderMatch{
				{Name: "Accept", Prefix: "application/"},
				{Name: "X-Debug", Absent: boolPtr(true)},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.route.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, util.IsServerError(err))

			var defErr *util.RouteDefinitionError
			require.ErrorAs(t, err, &defErr)
			if tt.field != "" {
				assert.Equal(t, tt.field, defErr.Field)
			}
		})
	}
}

func TestValidateAll(t *testing.T) {
	t.Parallel()

	t.Run("unique names pass", func(t *testing.T) {
		t.Parallel()
		routes := []*Route{
			{Name: "a", Path: "/a"},
			{Name: "b", Path: "/b"},
		}
		assert.NoError(t, ValidateAll(routes))
	})

	t.Run("duplicate names rejected", func(t *testing.T) {
		t.Parallel()
		routes := []*Route{
			{Name: "a", Path: "/a"},
			{Name: "a", Path: "/b"},
		}
		err := ValidateAll(routes)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("invalid route rejected", func(t *testing.T) {
		t.Parallel()
		routes := []*Route{
			{Name: "a"},
		}
		assert.Error(t, ValidateAll(routes))
	})
}

func TestRouteHelpers(t *testing.T) {
	t.Parallel()

	r := &Route{Name: "blog_show", Path: "/blog/{slug}", Priority: 10}
	assert.True(t, r.HasMatchCriteria())
	assert.True(t, r.HasPathParams())
	assert.False(t, r.HasWildcard())

	w := &Route{Name: "static", Path: "/static/**"}
	assert.True(t, w.HasWildcard())
	assert.False(t, w.HasPathParams())

	assert.Equal(t, "blog_show (/blog/{slug}, priority=10)", r.String())

	re := &Route{Name: "archive", PathRegex: "^/archive$", Priority: 2}
	assert.Equal(t, "archive (^/archive$, priority=2)", re.String())
}

func TestRouteClone(t *testing.T) {
	t.Parallel()

	original := &Route{
		Name:     "api",
		Path:     "/api/{version}/users",
		Methods:  []string{"GET", "POST"},
		Hosts:    []string{"api.example.com"},
		Schemes:  []string{"https"},
		Headers:  []HeaderMatch{{Name: "Accept", Exact: "application/json"}},
		Priority: 5,
		Defaults: map[string]any{"handler": "users"},
		Metadata: map[string]any{"team": "platform"},
	}

	clone := original.Clone()
	require.NotSame(t, original, clone)
	assert.Equal(t, original, clone)

	clone.Methods[0] = "DELETE"
	clone.Defaults["handler"] = "other"
	clone.Headers[0].Exact = "text/html"

	assert.Equal(t, "GET", original.Methods[0])
	assert.Equal(t, "users", original.Defaults["handler"])
	assert.Equal(t, "application/json", original.Headers[0].Exact)
}

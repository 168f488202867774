package filter

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

func TestHostFilter(t *testing.T) {
	t.Parallel()

	candidates := []*route.Route{
		{Name: "exact", Hosts: []string{"api.example.com"}},
		{Name: "wildcard", Hosts: []string{"*.example.com"}},
		{Name: "other", Hosts: []string{"other.test"}},
		{Name: "unrestricted"},
	}

	tests := []struct {
		name string
		host string
		want []string
	}{
		{
			name: "exact and wildcard",
			host: "api.example.com",
			want: []string{"exact", "wildcard", "unrestricted"},
		},
		{
			name: "wildcard only",
			host: "admin.example.com",
			want: []string{"wildcard", "unrestricted"},
		},
		{
			name: "wildcard does not match bare domain",
			host: "example.com",
			want: []string{"unrestricted"},
		},
		{
			name: "port stripped",
			host: "api.example.com:8443",
			want: []string{"exact", "wildcard", "unrestricted"},
		},
		{
			name: "case insensitive",
			host: "API.Example.COM",
			want: []string{"exact", "wildcard", "unrestricted"},
		},
		{
			name: "other host",
			host: "other.test",
			want: []string{"other", "unrestricted"},
		},
	}

	f := NewHostFilter()
	assert.Equal(t, "host", f.Name())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			req.Host = tt.host

			kept, err := f.Filter(context.Background(), candidates, req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, namesOf(kept))
		})
	}
}

func TestHostFilter_Exhaustion(t *testing.T) {
	t.Parallel()

	candidates := []*route.Route{
		{Name: "a", Hosts: []string{"api.example.com"}},
	}

	f := NewHostFilter()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Host = "nomatch.test"

	_, err := f.Filter(context.Background(), candidates, req)
	require.Error(t, err)
	assert.True(t, util.IsNoRoute(err))
}

package filter

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avrouter/internal/route"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

func TestSchemeFilter(t *testing.T) {
	t.Parallel()

	candidates := []*route.Route{
		{Name: "https_only", Schemes: []string{"https"}},
		{Name: "http_only", Schemes: []string{"http"}},
		{Name: "unrestricted"},
	}

	f := NewSchemeFilter()
	assert.Equal(t, "scheme", f.Name())

	t.Run("plain http", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)

		kept, err := f.Filter(context.Background(), candidates, req)
		require.NoError(t, err)
		assert.Equal(t, []string{"http_only", "unrestricted"}, namesOf(kept))
	})

	t.Run("tls connection", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.TLS = &tls.ConnectionState{}

		kept, err := f.Filter(context.Background(), candidates, req)
		require.NoError(t, err)
		assert.Equal(t, []string{"https_only", "unrestricted"}, namesOf(kept))
	})

	t.Run("forwarded proto wins", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("X-Forwarded-Proto", "HTTPS")

		kept, err := f.Filter(context.Background(), candidates, req)
		require.NoError(t, err)
		assert.Equal(t, []string{"https_only", "unrestricted"}, namesOf(kept))
	})
}

func TestSchemeFilter_Exhaustion(t *testing.T) {
	t.Parallel()

	candidates := []*route.Route{
		{Name: "https_only", Schemes: []string{"https"}},
	}

	f := NewSchemeFilter()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)

	_, err := f.Filter(context.Background(), candidates, req)
	require.Error(t, err)
	assert.True(t, util.IsNoRoute(err))
}

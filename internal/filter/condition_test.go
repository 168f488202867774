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

func TestConditionFilter(t *testing.T) {
	t.Parallel()

	candidates := []*route.Route{
		{Name: "versioned", Condition: `headers["x-api-version"] == "2"`},
		{Name: "get_json", Condition: `method == "GET" && query["format"] == "json"`},
		{Name: "secure_host", Condition: `scheme == "https" && host == "api.example.com"`},
		{Name: "unconditional"},
	}

	f, err := NewConditionFilter()
	require.NoError(t, err)
	assert.Equal(t, "condition", f.Name())

	t.Run("header condition", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		req.Header.Set("X-API-Version", "2")

		kept, err := f.Filter(context.Background(), candidates, req)
		require.NoError(t, err)
		assert.Equal(t, []string{"versioned", "unconditional"}, namesOf(kept))
	})

	t.Run("method and query condition", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/orders?format=json", nil)

		kept, err := f.Filter(context.Background(), candidates, req)
		require.NoError(t, err)
		assert.Equal(t, []string{"get_json", "unconditional"}, namesOf(kept))
	})

	t.Run("scheme and host condition", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Host = "api.example.com"
		req.Header.Set("X-Forwarded-Proto", "https")

		kept, err := f.Filter(context.Background(), candidates, req)
		require.NoError(t, err)
		assert.Equal(t, []string{"secure_host", "unconditional"}, namesOf(kept))
	})

	t.Run("nothing matches but unconditional survives", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodDelete, "/orders", nil)

		kept, err := f.Filter(context.Background(), candidates, req)
		require.NoError(t, err)
		assert.Equal(t, []string{"unconditional"}, namesOf(kept))
	})
}

func TestConditionFilter_Exhaustion(t *testing.T) {
	t.Parallel()

	candidates := []*route.Route{
		{Name: "never", Condition: `method == "TRACE"`},
	}

	f, err := NewConditionFilter()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)

	_, err = f.Filter(context.Background(), candidates, req)
	require.Error(t, err)
	assert.True(t, util.IsNoRoute(err))
}

func TestConditionFilter_CompileErrorIsDefinitionError(t *testing.T) {
	t.Parallel()

	candidates := []*route.Route{
		{Name: "broken", Condition: `method ==`},
	}

	f, err := NewConditionFilter()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)

	_, err = f.Filter(context.Background(), candidates, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrInvalidRoute)

	var defErr *util.RouteDefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, "broken", defErr.Route)
	assert.Equal(t, "condition", defErr.Field)
}

func TestConditionFilter_NonBooleanResult(t *testing.T) {
	t.Parallel()

	candidates := []*route.Route{
		{Name: "stringy", Condition: `method`},
	}

	f, err := NewConditionFilter()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)

	_, err = f.Filter(context.Background(), candidates, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrInvalidRoute)
}

func TestConditionFilter_ProgramCacheReuse(t *testing.T) {
	t.Parallel()

	candidates := []*route.Route{
		{Name: "a", Condition: `method == "GET"`},
		{Name: "b", Condition: `method == "GET"`},
	}

	f, err := NewConditionFilter()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)

	for i := 0; i < 3; i++ {
		kept, err := f.Filter(context.Background(), candidates, req)
		require.NoError(t, err)
		assert.Len(t, kept, 2)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	assert.Len(t, f.programs, 1)
}

package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/prodgraph/pkg/observability"
)

func TestPipelineHooks(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.OnResolveComplete(ctx, "iron-plate", 3, time.Millisecond, nil)
	m.OnResolveComplete(ctx, "steel", 0, time.Millisecond, errors.New("boom"))
	m.OnLayoutComplete(ctx, "LR", time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageTotal.WithLabelValues("resolve", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageTotal.WithLabelValues("resolve", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageTotal.WithLabelValues("layout", ResultOK)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ChainNodes))
}

func TestCacheHooks(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.OnCacheHit(ctx, "chain")
	m.OnCacheMiss(ctx, "chain")
	m.OnCacheMiss(ctx, "chain")
	m.OnCacheSet(ctx, "layout", 512)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("chain", ResultHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("chain", ResultMiss)))
	assert.Equal(t, 512.0, testutil.ToFloat64(m.CacheBytes.WithLabelValues("layout")))
}

func TestHTTPHooks(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.OnRequest(ctx, "GET", "/api/v1/items")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPInFlight))
	m.OnResponse(ctx, "GET", "/api/v1/items", 200, time.Millisecond)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/items", "200")))

	m.OnRateLimited(ctx, "/api/v1/layouts")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRateLimits.WithLabelValues("/api/v1/layouts")))
}

func TestRegister(t *testing.T) {
	defer observability.Reset()
	m := New()
	m.Register()
	assert.Same(t, m, observability.Pipeline())
	assert.Same(t, m, observability.Cache())
	assert.Same(t, m, observability.HTTP())
}

func TestHandler(t *testing.T) {
	m := New()
	m.OnCacheHit(context.Background(), "artifact")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `prodgraph_cache_lookups_total{result="hit",stage="artifact"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}

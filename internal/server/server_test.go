package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/prodgraph/pkg/buildinfo"
	"github.com/matzehuels/prodgraph/pkg/cache"
	"github.com/matzehuels/prodgraph/pkg/chain"
	perrors "github.com/matzehuels/prodgraph/pkg/errors"
	"github.com/matzehuels/prodgraph/pkg/httputil"
	"github.com/matzehuels/prodgraph/pkg/layout"
	"github.com/matzehuels/prodgraph/pkg/pipeline"
	"github.com/matzehuels/prodgraph/pkg/rates"
)

const oreKey = "iron-plate/0:iron-ingot/0:iron-ore"

func newTestServer(t *testing.T, mutate ...func(*Options)) http.Handler {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	opts := Options{
		Logger: logger,
		Runner: pipeline.NewRunner(cache.NewMemoryCache(0, 0), nil, logger),
	}
	for _, m := range mutate {
		m(&opts)
	}
	return New(opts).Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) perrors.Code {
	t.Helper()
	return decode[httputil.ErrorResponse](t, rec).Error.Code
}

func TestHealthzAndVersion(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[buildinfo.Info](t, rec)
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestMetricsMounted(t *testing.T) {
	h := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", nil).Code)

	h = newTestServer(t, func(o *Options) {
		o.Metrics = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "# metrics")
		})
	})
	rec := do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, func(o *Options) { o.CORSOrigins = []string{"http://localhost:5173"} })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chains", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListItems(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/items?q=iron+plate&lang=en&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Items []itemResponse `json:"items"`
	}](t, rec)
	require.NotEmpty(t, resp.Items)
	assert.LessOrEqual(t, len(resp.Items), 5)

	var found bool
	for _, it := range resp.Items {
		if it.ID == "iron-plate" {
			found = true
			assert.Equal(t, "Iron Plate", it.Name)
			assert.True(t, it.Craftable)
		}
	}
	assert.True(t, found, "iron-plate not in results: %+v", resp.Items)
}

func TestListItemsCraftableOnly(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/items?craftable=true&limit=500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Items []itemResponse `json:"items"`
	}](t, rec)
	require.NotEmpty(t, resp.Items)
	for _, it := range resp.Items {
		assert.True(t, it.Craftable, it.ID)
		assert.NotEqual(t, "iron-ore", it.ID)
	}
}

func TestListItemsErrors(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/items?lang=xx", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, perrors.ErrCodeInvalidLanguage, errorCode(t, rec))

	rec = do(t, h, http.MethodGet, "/api/v1/items?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, perrors.ErrCodeInvalidInput, errorCode(t, rec))
}

func TestGetItem(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/iron-plate", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[itemDetailResponse](t, rec)
	assert.Equal(t, "Eisenplatte", resp.Name)
	require.NotNil(t, resp.Recipe)
	assert.Equal(t, "Constructor", resp.Recipe.Building)
	assert.Equal(t, "Iron Plate", resp.Names["en"])

	rec = do(t, h, http.MethodGet, "/api/v1/items/iron-ore", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[itemDetailResponse](t, rec).Recipe)
}

func TestGetItemErrors(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/items/unobtainium", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, perrors.ErrCodeItemNotFound, errorCode(t, rec))

	rec = do(t, h, http.MethodGet, "/api/v1/items/Iron%20Plate", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, perrors.ErrCodeInvalidItem, errorCode(t, rec))
}

func TestChain(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/chains", map[string]any{"item": "iron-plate", "amount": 100})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "miss", rec.Header().Get(headerCache))

	resp := decode[chainResponse](t, rec)
	require.Len(t, resp.Chain.Nodes, 3)
	assert.Len(t, resp.Chain.Edges, 2)
	assert.Equal(t, chain.ModeBatch, resp.Chain.Mode)
	require.Len(t, resp.Totals, 1)
	assert.Equal(t, "iron-ore", resp.Totals[0].ItemID)
	assert.InDelta(t, 150, resp.Totals[0].Amount, 1e-9)

	rec = do(t, h, http.MethodPost, "/api/v1/chains", map[string]any{"item": "iron-plate", "amount": 100})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hit", rec.Header().Get(headerCache))
}

func TestChainValidation(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name string
		body any
		code perrors.Code
	}{
		{"missing item", map[string]any{"amount": 1}, perrors.ErrCodeInvalidInput},
		{"zero amount", map[string]any{"item": "iron-plate", "amount": 0}, perrors.ErrCodeInvalidInput},
		{"bad mode", map[string]any{"item": "iron-plate", "amount": 1, "mode": "fast"}, perrors.ErrCodeInvalidInput},
		{"unknown field", map[string]any{"item": "iron-plate", "amount": 1, "speed": 2}, perrors.ErrCodeInvalidInput},
		{"bad item id", map[string]any{"item": "Iron Plate", "amount": 1}, perrors.ErrCodeInvalidItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/chains", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestChainValidationFields(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/chains", map[string]any{"amount": -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[httputil.ErrorResponse](t, rec).Error
	assert.Equal(t, "is required", body.Fields["item"])
	assert.Equal(t, "must be greater than 0", body.Fields["amount"])
}

func extractor(t *testing.T, l layout.Layout) layout.Node {
	t.Helper()
	for _, n := range l.Nodes {
		if n.Kind == chain.KindExtractor {
			return n
		}
	}
	t.Fatal("no extractor in layout")
	return layout.Node{}
}

func TestLayout(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/layouts", map[string]any{
		"item":      "iron-plate",
		"amount":    100,
		"language":  "de",
		"direction": "TB",
		"miners":    map[string]string{"iron-ore": "Mk.3:pure"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	l := decode[layout.Layout](t, rec)
	assert.Equal(t, "de", l.Language)
	assert.Equal(t, layout.DirectionTB, l.Direction)
	assert.Len(t, l.Nodes, 3)

	ore := extractor(t, l)
	require.NotNil(t, ore.Miner)
	assert.Equal(t, rates.MinerMk3, ore.Miner.Tier)
	assert.Equal(t, rates.PurityPure, ore.Miner.Purity)
}

func TestLayoutErrors(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/layouts", map[string]any{"item": "iron-plate", "amount": 1, "language": "fr"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, perrors.ErrCodeInvalidLanguage, errorCode(t, rec))

	rec = do(t, h, http.MethodPost, "/api/v1/layouts", map[string]any{
		"item": "iron-plate", "amount": 1, "miners": map[string]string{"iron-ore": "Mk.9"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/layouts", map[string]any{"item": "iron-plate", "amount": 1, "session": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, perrors.ErrCodeSessionNotFound, errorCode(t, rec))
}

func TestRender(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/render?item=iron-plate&amount=100", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))

	rec = do(t, h, http.MethodGet, "/api/v1/render?item=iron-plate&amount=100&format=dot", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/vnd.graphviz")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "digraph"))

	rec = do(t, h, http.MethodGet, "/api/v1/render?item=iron-plate&amount=100&format=json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRenderErrors(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		query string
		code  perrors.Code
	}{
		{"item=iron-plate&format=gif", perrors.ErrCodeInvalidFormat},
		{"item=iron-plate&amount=abc", perrors.ErrCodeInvalidAmount},
		{"item=iron-plate&amount=-2", perrors.ErrCodeInvalidAmount},
		{"item=iron-plate&amount=1e20", perrors.ErrCodeInvalidAmount},
		{"item=iron-plate&window=1e9", perrors.ErrCodeInvalidAmount},
		{"item=iron-plate&direction=up", perrors.ErrCodeInvalidDirection},
		{"amount=1", perrors.ErrCodeInvalidItem},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/v1/render?"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/sessions", map[string]any{"language": "de-AT"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sess := decode[sessionResponse](t, rec)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "de", sess.Language)
	assert.Empty(t, sess.Miners)
	assert.Equal(t, "/api/v1/sessions/"+sess.ID, rec.Header().Get("Location"))

	base := "/api/v1/sessions/" + sess.ID

	rec = do(t, h, http.MethodPut, base+"/miners/"+oreKey, map[string]any{"tier": "Mk.2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[sessionResponse](t, rec)
	assert.Equal(t, rates.MinerMk2, got.Miners[oreKey].Tier)
	assert.Equal(t, rates.PurityNormal, got.Miners[oreKey].Purity)

	rec = do(t, h, http.MethodPut, base+"/miners/"+oreKey, map[string]any{"purity": "pure"})
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[sessionResponse](t, rec)
	assert.Equal(t, rates.MinerMk2, got.Miners[oreKey].Tier)
	assert.Equal(t, rates.PurityPure, got.Miners[oreKey].Purity)

	rec = do(t, h, http.MethodPut, base+"/language", map[string]any{"language": "en"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "en", decode[sessionResponse](t, rec).Language)

	rec = do(t, h, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sess.ID, decode[sessionResponse](t, rec).ID)

	rec = do(t, h, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, perrors.ErrCodeSessionNotFound, errorCode(t, rec))
}

func TestSessionWithoutBodyUsesServerLanguage(t *testing.T) {
	h := newTestServer(t, func(o *Options) { o.Language = "de" })

	rec := do(t, h, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "de", decode[sessionResponse](t, rec).Language)
}

func TestSessionErrors(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/sessions", map[string]any{"language": "fr"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, perrors.ErrCodeInvalidLanguage, errorCode(t, rec))

	rec = do(t, h, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/v1/sessions/" + decode[sessionResponse](t, rec).ID

	rec = do(t, h, http.MethodPut, base+"/miners/"+oreKey, map[string]any{"tier": "Mk.9"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, perrors.ErrCodeInvalidTier, errorCode(t, rec))

	rec = do(t, h, http.MethodPut, base+"/miners/"+oreKey, map[string]any{"purity": "rich"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, perrors.ErrCodeInvalidPurity, errorCode(t, rec))

	rec = do(t, h, http.MethodPut, base+"/miners/"+oreKey, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, perrors.ErrCodeInvalidInput, errorCode(t, rec))

	rec = do(t, h, http.MethodPut, base+"/language", map[string]any{"language": "xx"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/v1/sessions/missing/language", map[string]any{"language": "en"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetMinerConcurrentHalvesBothApply(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/v1/sessions/" + decode[sessionResponse](t, rec).ID

	const rounds = 25
	var wg sync.WaitGroup
	codes := make(chan int, 2*rounds)
	for i := range rounds {
		key := fmt.Sprintf("%s-%d", oreKey, i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			codes <- do(t, h, http.MethodPut, base+"/miners/"+key, map[string]any{"tier": "Mk.3"}).Code
		}()
		go func() {
			defer wg.Done()
			codes <- do(t, h, http.MethodPut, base+"/miners/"+key, map[string]any{"purity": "pure"}).Code
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	rec = do(t, h, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	miners := decode[sessionResponse](t, rec).Miners
	for i := range rounds {
		m := miners[fmt.Sprintf("%s-%d", oreKey, i)]
		assert.Equal(t, rates.MinerMk3, m.Tier, "round %d", i)
		assert.Equal(t, rates.PurityPure, m.Purity, "round %d", i)
	}
}

func TestSetMinerRejectsBeforeApplying(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/v1/sessions/" + decode[sessionResponse](t, rec).ID

	rec = do(t, h, http.MethodPut, base+"/miners/"+oreKey, map[string]any{"tier": "Mk.2", "purity": "rich"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, perrors.ErrCodeInvalidPurity, errorCode(t, rec))

	rec = do(t, h, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decode[sessionResponse](t, rec).Miners, oreKey)
}

func TestLayoutUsesSession(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/sessions", map[string]any{"language": "de"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[sessionResponse](t, rec).ID

	// First layout registers the chain's extractors in the session.
	rec = do(t, h, http.MethodPost, "/api/v1/layouts", map[string]any{"item": "iron-plate", "amount": 100, "session": id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	l := decode[layout.Layout](t, rec)
	assert.Equal(t, "de", l.Language)
	assert.Equal(t, rates.MinerMk1, extractor(t, l).Miner.Tier)

	rec = do(t, h, http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[sessionResponse](t, rec).Miners, oreKey)

	rec = do(t, h, http.MethodPut, "/api/v1/sessions/"+id+"/miners/"+oreKey, map[string]any{"tier": "Mk.3", "purity": "pure"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/layouts", map[string]any{"item": "iron-plate", "amount": 100, "session": id, "language": "en"})
	require.Equal(t, http.StatusOK, rec.Code)
	l = decode[layout.Layout](t, rec)
	assert.Equal(t, "en", l.Language)
	ore := extractor(t, l)
	assert.Equal(t, rates.MinerMk3, ore.Miner.Tier)
	assert.Equal(t, rates.PurityPure, ore.Miner.Purity)
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, func(o *Options) {
		o.RateLimit = 1
		o.Burst = 1
	})

	rec := do(t, h, http.MethodGet, "/api/v1/items?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/items?limit=1", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, perrors.ErrCodeRateLimited, errorCode(t, rec))

	// Probes are not limited.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", nil).Code)
}

package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/prodgraph/pkg/buildinfo"
	"github.com/matzehuels/prodgraph/pkg/catalog"
	"github.com/matzehuels/prodgraph/pkg/chain"
	perrors "github.com/matzehuels/prodgraph/pkg/errors"
	"github.com/matzehuels/prodgraph/pkg/httputil"
	"github.com/matzehuels/prodgraph/pkg/i18n"
	"github.com/matzehuels/prodgraph/pkg/layout"
	"github.com/matzehuels/prodgraph/pkg/pipeline"
	"github.com/matzehuels/prodgraph/pkg/session"
	"github.com/matzehuels/prodgraph/pkg/settings"
)

// headerCache reports whether the pipeline answered from its cache.
const headerCache = "X-Cache"

// Item listing bounds.
const (
	defaultItemLimit = 50
	maxItemLimit     = 500
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(headerCache, "hit")
	} else {
		w.Header().Set(headerCache, "miss")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, buildinfo.Get())
}

// =============================================================================
// Items
// =============================================================================

type itemResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Category  catalog.Category `json:"category"`
	IsLiquid  bool             `json:"isLiquid,omitempty"`
	Icon      string           `json:"icon,omitempty"`
	Craftable bool             `json:"craftable"`
}

type itemDetailResponse struct {
	itemResponse
	Names  map[string]string `json:"names"`
	Recipe *catalog.Recipe   `json:"recipe,omitempty"`
}

func (s *Server) itemResponse(it catalog.Item, lang string) itemResponse {
	_, craftable := s.opts.Catalog.Recipe(it.ID)
	return itemResponse{
		ID:        it.ID,
		Name:      it.Name(lang),
		Category:  it.Category,
		IsLiquid:  it.IsLiquid,
		Icon:      it.Icon,
		Craftable: craftable,
	}
}

// language returns the normalized ?lang= value, else the best match for
// Accept-Language, else the server default.
func (s *Server) language(r *http.Request) (string, error) {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return i18n.Normalize(lang)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return i18n.Match(accept), nil
	}
	return s.opts.Language, nil
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lang, err := s.language(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit := defaultItemLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxItemLimit {
			httputil.WriteError(w, perrors.New(perrors.ErrCodeInvalidInput, "limit must be between 1 and %d", maxItemLimit))
			return
		}
		limit = n
	}
	craftableOnly := q.Get("craftable") == "true"

	items := make([]itemResponse, 0, limit)
	for _, m := range s.opts.Catalog.Search(q.Get("q"), lang) {
		ir := s.itemResponse(m.Item, lang)
		if craftableOnly && !ir.Craftable {
			continue
		}
		items = append(items, ir)
		if len(items) == limit {
			break
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := perrors.ValidateItemID(id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	lang, err := s.language(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	it, ok := s.opts.Catalog.Item(id)
	if !ok {
		httputil.WriteError(w, perrors.New(perrors.ErrCodeItemNotFound, "item not found: %s", id))
		return
	}
	resp := itemDetailResponse{itemResponse: s.itemResponse(it, lang), Names: it.Names}
	if rec, ok := s.opts.Catalog.Recipe(id); ok {
		resp.Recipe = rec
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Pipeline
// =============================================================================

type chainRequest struct {
	Item    string  `json:"item" validate:"required"`
	Amount  float64 `json:"amount" validate:"gt=0"`
	Mode    string  `json:"mode,omitempty" validate:"omitempty,oneof=batch rate"`
	Refresh bool    `json:"refresh,omitempty"`
}

type chainResponse struct {
	Chain  *chain.Chain  `json:"chain"`
	Totals []chain.Total `json:"totals"`
}

type layoutRequest struct {
	Item      string            `json:"item" validate:"required"`
	Amount    float64           `json:"amount" validate:"gt=0"`
	Mode      string            `json:"mode,omitempty" validate:"omitempty,oneof=batch rate"`
	Refresh   bool              `json:"refresh,omitempty"`
	Language  string            `json:"language,omitempty"`
	Direction string            `json:"direction,omitempty" validate:"omitempty,oneof=LR TB"`
	Window    float64           `json:"window,omitempty" validate:"gte=0"`
	Ordering  string            `json:"ordering,omitempty" validate:"omitempty,oneof=barycentric identity"`
	Miners    map[string]string `json:"miners,omitempty"` // key or item id -> "Mk.2:pure"
	Session   string            `json:"session,omitempty"`
}

// baseOptions fills server defaults around a chain request.
func (s *Server) baseOptions(req chainRequest) pipeline.Options {
	opts := pipeline.Options{
		Item:      req.Item,
		Amount:    req.Amount,
		Mode:      chain.Mode(req.Mode),
		Refresh:   req.Refresh,
		Language:  s.opts.Language,
		Direction: s.opts.Direction,
		Window:    s.opts.Window,
		Catalog:   s.opts.Catalog,
	}
	if opts.Mode == "" {
		opts.Mode = s.opts.Mode
	}
	return opts
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	var req chainRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	opts := s.baseOptions(req)
	opts.Logger = loggerFrom(r.Context(), s.opts.Logger)

	ch, hit, err := s.opts.Runner.ResolveWithCacheInfo(r.Context(), opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	setCacheHeader(w, hit)
	httputil.WriteJSON(w, http.StatusOK, chainResponse{Chain: ch, Totals: ch.Totals()})
}

// applySession overlays a session's language and miners. Explicit request
// values win over the session's.
func (s *Server) applySession(r *http.Request, id string, opts *pipeline.Options, explicitLang bool) (*session.Session, error) {
	if id == "" {
		return nil, nil
	}
	sess, err := s.session(r.Context(), id)
	if err != nil {
		return nil, err
	}
	snap := sess.Settings.Snapshot()
	if !explicitLang {
		opts.Language = snap.Language
	}
	opts.Miners = mergeMiners(snap.Miners, opts.Miners)
	return sess, nil
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	opts := s.baseOptions(chainRequest{Item: req.Item, Amount: req.Amount, Mode: req.Mode, Refresh: req.Refresh})
	opts.Logger = loggerFrom(r.Context(), s.opts.Logger)
	opts.Ordering = req.Ordering
	if req.Language != "" {
		opts.Language = req.Language
	}
	if req.Direction != "" {
		opts.Direction = layout.Direction(req.Direction)
	}
	if req.Window > 0 {
		opts.Window = req.Window
	}
	miners, err := parseMiners(req.Miners)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	opts.Miners = miners

	sess, err := s.applySession(r, req.Session, &opts, req.Language != "")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ch, chainHit, err := s.opts.Runner.ResolveWithCacheInfo(r.Context(), opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if sess != nil {
		// Give every extractor of the chain an explicit entry the client can edit.
		sess.Settings.Ensure(ch.ExtractorKeys()...)
	}
	l, layoutHit, err := s.opts.Runner.LayoutWithCacheInfo(r.Context(), ch, opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	setCacheHeader(w, chainHit && layoutHit)
	httputil.WriteJSON(w, http.StatusOK, l)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, sessionID, err := s.renderOptions(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if _, err := s.applySession(r, sessionID, &opts, r.URL.Query().Get("lang") != ""); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := s.opts.Runner.Execute(r.Context(), opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	format := opts.Formats[0]
	data, ok := result.Artifacts[format]
	if !ok {
		httputil.WriteError(w, perrors.New(perrors.ErrCodeUnsupported, "format %s is not available for viz %s", format, opts.Viz))
		return
	}
	setCacheHeader(w, result.CacheInfo.RenderHit)
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// renderOptions reads the render query parameters. Validation of the values
// is left to the pipeline.
func (s *Server) renderOptions(r *http.Request) (pipeline.Options, string, error) {
	q := r.URL.Query()
	req := chainRequest{Item: q.Get("item"), Amount: 1, Mode: q.Get("mode")}
	if v := q.Get("amount"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return pipeline.Options{}, "", perrors.New(perrors.ErrCodeInvalidAmount, "invalid amount: %q", v)
		}
		req.Amount = n
	}
	opts := s.baseOptions(req)
	opts.Logger = loggerFrom(r.Context(), s.opts.Logger)
	opts.Viz = q.Get("viz")
	opts.Style = q.Get("style")
	opts.Ordering = q.Get("ordering")
	opts.Summary = q.Get("summary") == "true"
	opts.Detailed = q.Get("detailed") == "true"
	if v := q.Get("lang"); v != "" {
		opts.Language = v
	}
	if v := q.Get("direction"); v != "" {
		opts.Direction = layout.Direction(strings.ToUpper(v))
	}
	if v := q.Get("window"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return pipeline.Options{}, "", perrors.New(perrors.ErrCodeInvalidAmount, "invalid window: %q", v)
		}
		opts.Window = n
	}
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Formats = []string{format}
	return opts, q.Get("session"), nil
}

func parseMiners(in map[string]string) (map[string]settings.MinerSettings, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]settings.MinerSettings, len(in))
	for key, spec := range in {
		m, err := settings.ParseMiner(spec)
		if err != nil {
			code := perrors.GetCode(err)
			if code == "" {
				code = perrors.ErrCodeInvalidInput
			}
			return nil, perrors.Wrap(code, err, "miner %s: %s", key, perrors.UserMessage(err))
		}
		out[key] = m
	}
	return out, nil
}

// mergeMiners returns base overlaid with override.
func mergeMiners(base, override map[string]settings.MinerSettings) map[string]settings.MinerSettings {
	if len(base) == 0 {
		return override
	}
	out := make(map[string]settings.MinerSettings, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

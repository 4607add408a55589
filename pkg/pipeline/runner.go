package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prodgraph/pkg/cache"
	"github.com/matzehuels/prodgraph/pkg/chain"
	"github.com/matzehuels/prodgraph/pkg/layout"
	"github.com/matzehuels/prodgraph/pkg/observability"
)

// Cache key types reported to the observability hooks.
const (
	keyTypeChain    = "chain"
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete resolve → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Resolve
	start := time.Now()
	ch, hit, err := r.ResolveWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	result.Chain = ch
	result.Stats.ResolveTime = time.Since(start)
	result.Stats.NodeCount = len(ch.Nodes)
	result.Stats.EdgeCount = len(ch.Edges)
	result.CacheInfo.ResolveHit = hit
	if data, err := chain.Marshal(ch); err == nil {
		result.ChainHash = cache.Hash(data)
	}

	r.Logger.Info("resolved chain",
		"item", opts.Item,
		"nodes", len(ch.Nodes),
		"edges", len(ch.Edges),
		"cached", hit,
		"duration", result.Stats.ResolveTime)

	// Stage 2: Layout
	start = time.Now()
	l, hit, err := r.LayoutWithCacheInfo(ctx, ch, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(start)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"tiers", len(l.Tiers),
		"overloaded", l.Summary.Overloaded,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ResolveWithCacheInfo resolves a chain with caching and returns cache hit info.
// opts.Refresh bypasses the cache lookup but still stores the fresh result.
func (r *Runner) ResolveWithCacheInfo(ctx context.Context, opts Options) (*chain.Chain, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForResolve(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.ChainKey(opts.catalogID(), opts.Item, cache.ChainKeyOpts{
		Amount: opts.Amount,
		Mode:   string(opts.Mode),
	})

	if !opts.Refresh {
		if data, ok := r.lookup(ctx, cacheKey, keyTypeChain); ok {
			if ch, err := chain.Unmarshal(data); err == nil {
				return ch, true, nil
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnResolveStart(ctx, opts.Item, string(opts.Mode))
	start := time.Now()
	ch, err := Resolve(opts)
	nodes := 0
	if ch != nil {
		nodes = len(ch.Nodes)
	}
	hooks.OnResolveComplete(ctx, opts.Item, nodes, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := chain.Marshal(ch); err == nil {
		r.store(ctx, cacheKey, keyTypeChain, data, cache.TTLChain)
	}
	return ch, false, nil
}

// Resolve is a convenience wrapper that calls ResolveWithCacheInfo and discards the cache hit info.
func (r *Runner) Resolve(ctx context.Context, opts Options) (*chain.Chain, error) {
	ch, _, err := r.ResolveWithCacheInfo(ctx, opts)
	return ch, err
}

// LayoutWithCacheInfo lays out a chain with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, ch *chain.Chain, opts Options) (*layout.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	opts.Miners = ExpandMiners(ch, opts.Miners)

	chainData, err := chain.Marshal(ch)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(chainData), opts.LayoutKeyOpts())

	if data, ok := r.lookup(ctx, cacheKey, keyTypeLayout); ok {
		var cached layout.Layout
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, true, nil
		}
		// Undecodable entry, recompute.
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, string(opts.Direction), len(ch.Nodes))
	start := time.Now()
	l, err := GenerateLayout(ch, opts)
	hooks.OnLayoutComplete(ctx, string(opts.Direction), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(l); err == nil {
		r.store(ctx, cacheKey, keyTypeLayout, data, cache.TTLLayout)
	}
	return l, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, ch *chain.Chain, opts Options) (*layout.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, ch, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// The hit flag is true only when every requested format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := json.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, ok := r.lookup(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), keyTypeArtifact)
		if !ok {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		r.store(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), keyTypeArtifact, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup reads a cache entry. Backend errors count as misses.
func (r *Runner) lookup(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	r.Logger.Debug("cache hit", "type", keyType)
	return data, true
}

// store writes a cache entry. Failures are logged, never returned.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

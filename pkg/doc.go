// Package pkg provides the core libraries for prodgraph production planning.
//
// # Overview
//
// prodgraph expands a target item of a factory game into the full tree of
// machines that produce it, computes how many machines of each kind are
// needed, how much material flows along each connection and which belt or
// pipe tier can carry it, and draws the result. The pkg directory is
// organized into four areas:
//
//  1. Domain model - [catalog], [chain], [rates], [settings]
//  2. Graph and layout - [dag], [dag/transform], [layout], [layout/ordering]
//  3. Rendering - [render], [render/diagram], [render/nodelink]
//  4. Infrastructure - [pipeline], [cache], [session], [observability],
//     [errors], [i18n], [httputil], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	Catalog (items + recipes)
//	         ↓
//	    [chain] package (resolve target into a tree, rank it)
//	         ↓
//	    [layout] package (machine counts, rates, transport tiers, positions)
//	         ↓
//	    [render] packages
//	         ↓
//	SVG/PDF/PNG/JSON/DOT output
//
// # Quick Start
//
//	cat := catalog.Default()
//
//	// 1. Resolve 100 iron plates into a chain
//	ch := chain.Resolve(cat, "iron-plate", 100, chain.ModeBatch)
//
//	// 2. Lay it out
//	l, _ := layout.Build(ch, layout.Options{Catalog: cat, Language: "de"})
//
//	// 3. Render to SVG
//	svg := diagram.RenderSVG(l)
//
// Most callers go through [pipeline.Runner], which validates options and
// caches every stage:
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(0, 0), nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Item: "iron-plate", Amount: 100})
//
// # Main Packages
//
// [catalog] - Items and recipes loaded from JSON or TOML, with an embedded
// default catalog and fuzzy item search.
//
// [chain] - The resolver. Every recipe input becomes its own subtree, so a
// chain is always a tree; raw resources end in extractor nodes. Nodes carry a
// content-derived key that stays stable across amounts.
//
// [rates] - Machine throughput, extractor output per tier and purity, and the
// belt and pipe tier tables.
//
// [settings] - Per-extractor miner settings and the display language.
//
// [dag] - Directed acyclic graph with crossing counting; [dag/transform]
// assigns ranks with Kahn's algorithm.
//
// [layout] - Positions nodes in tiers by rank and annotates edges with rates
// and transport tiers; [layout/ordering] reduces edge crossings within tiers.
//
// [render/diagram] - Standalone SVG production diagrams with themes.
// [render/nodelink] - Graphviz output (DOT, SVG, PNG).
// [render] - SVG to PDF/PNG conversion via rsvg-convert.
//
// [pipeline] - resolve → layout → render with validation and caching, shared
// by the CLI and the HTTP API.
//
// [cache] - Content-addressed cache backends: null, memory (LRU), file,
// Redis and MongoDB.
//
// [session] - Expiring per-client settings for the HTTP API.
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/chain/...     # Specific package
//	go test -run Example        # Examples only
package pkg

// Package pipeline provides the resolve → layout → render pipeline shared by
// the CLI and the API server.
//
// By centralizing this logic, both entry points validate input the same way,
// memoize the same stages and produce byte-identical artifacts.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Resolve: expand the target item into a ranked production chain
//  2. Layout: compute machine counts, flow rates, transport tiers and positions
//  3. Render: generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage is cached under a content-derived key (see package cache). A
// chain only depends on the catalog, target, amount and mode, so changing a
// miner setting or the language re-runs layout and render but reuses the
// cached chain.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Item:    "iron-plate",
//	    Amount:  100,
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	ch, err := runner.Resolve(ctx, opts)
//	l, err := runner.Layout(ctx, ch, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prodgraph/pkg/cache"
	"github.com/matzehuels/prodgraph/pkg/catalog"
	"github.com/matzehuels/prodgraph/pkg/chain"
	perrors "github.com/matzehuels/prodgraph/pkg/errors"
	"github.com/matzehuels/prodgraph/pkg/i18n"
	"github.com/matzehuels/prodgraph/pkg/layout"
	"github.com/matzehuels/prodgraph/pkg/layout/ordering"
	"github.com/matzehuels/prodgraph/pkg/render/diagram"
	"github.com/matzehuels/prodgraph/pkg/settings"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMode is the default interpretation of the amount.
	DefaultMode = chain.ModeBatch

	// DefaultDirection is the default flow direction.
	DefaultDirection = layout.DirectionLR

	// DefaultWindow is the default batch production window in minutes.
	DefaultWindow = layout.DefaultWindowMinutes

	// DefaultOrdering is the default within-tier ordering algorithm.
	DefaultOrdering = OrderingBarycentric

	// DefaultViz is the default visualization.
	DefaultViz = VizDiagram

	// DefaultStyle is the default diagram theme.
	DefaultStyle = diagram.DefaultTheme
)

// Ordering algorithms.
const (
	OrderingBarycentric = "barycentric"
	OrderingIdentity    = "identity"
)

// Visualization types.
const (
	VizDiagram  = "diagram"
	VizNodelink = "nodelink"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidOrderings is the set of supported ordering algorithms.
var ValidOrderings = map[string]bool{
	OrderingBarycentric: true,
	OrderingIdentity:    true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizDiagram:  true,
	VizNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Resolve options
	Item    string     `json:"item"`
	Amount  float64    `json:"amount"`
	Mode    chain.Mode `json:"mode,omitempty"`
	Refresh bool       `json:"refresh,omitempty"`

	// Layout options
	Language  string                            `json:"language,omitempty"`
	Direction layout.Direction                  `json:"direction,omitempty"`
	Window    float64                           `json:"window,omitempty"`
	Miners    map[string]settings.MinerSettings `json:"miners,omitempty"`
	Ordering  string                            `json:"ordering,omitempty"`

	// Render options
	Viz      string   `json:"viz,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Style    string   `json:"style,omitempty"`
	Summary  bool     `json:"summary,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // nodelink labels

	// Runtime options (not serialized)
	Catalog *catalog.Catalog `json:"-"` // nil means catalog.Default()
	Logger  *log.Logger      `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Chain is the resolved, ranked production chain.
	Chain *chain.Chain

	// ChainHash is the content hash of the chain.
	ChainHash string

	// Layout is the positioned diagram.
	Layout *layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	ResolveTime time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ResolveHit bool // Whether the chain came from cache
	LayoutHit  bool // Whether the layout came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return perrors.New(perrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style names a diagram theme.
func ValidateStyle(style string) error {
	if _, ok := diagram.ThemeByName(style); !ok {
		return perrors.New(perrors.ErrCodeInvalidInput, "invalid style: %q (must be one of: %v)", style, diagram.ThemeNames())
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(viz string) error {
	if !ValidVizTypes[viz] {
		return perrors.New(perrors.ErrCodeInvalidInput, "invalid viz: %q (must be one of: diagram, nodelink)", viz)
	}
	return nil
}

// ValidateOrdering checks that an ordering algorithm is valid.
func ValidateOrdering(name string) error {
	if !ValidOrderings[name] {
		return perrors.New(perrors.ErrCodeInvalidInput, "invalid ordering: %q (must be one of: barycentric, identity)", name)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForResolve(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForResolve checks required fields for resolution.
func (o *Options) ValidateForResolve() error {
	if err := perrors.ValidateItemID(o.Item); err != nil {
		return err
	}
	if err := perrors.ValidateAmount(o.Amount); err != nil {
		return err
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if _, ok := chain.ParseMode(string(o.Mode)); !ok {
		return perrors.New(perrors.ErrCodeInvalidMode, "invalid mode: %q (must be one of: batch, rate)", o.Mode)
	}
	o.setRuntimeDefaults()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Language == "" {
		o.Language = i18n.Default
	}
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	if o.Window == 0 {
		o.Window = DefaultWindow
	}
	if o.Ordering == "" {
		o.Ordering = DefaultOrdering
	}
	o.setRuntimeDefaults()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	lang, err := i18n.Normalize(o.Language)
	if err != nil {
		return err
	}
	o.Language = lang
	if !layout.ValidDirections[o.Direction] {
		return perrors.New(perrors.ErrCodeInvalidDirection, "invalid direction: %q (must be one of: LR, TB)", o.Direction)
	}
	if err := perrors.ValidateWindow(o.Window); err != nil {
		return err
	}
	for key, m := range o.Miners {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("miner %s: %w", key, err)
		}
	}
	return ValidateOrdering(o.Ordering)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Viz == "" {
		o.Viz = DefaultViz
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	o.setRuntimeDefaults()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateVizType(o.Viz); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

func (o *Options) setRuntimeDefaults() {
	if o.Catalog == nil {
		o.Catalog = catalog.Default()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsNodelink returns true if this is a Graphviz visualization.
func (o *Options) IsNodelink() bool {
	return o.Viz == VizNodelink
}

// MinerSnapshot returns the miner overrides as a settings snapshot.
func (o *Options) MinerSnapshot() settings.Snapshot {
	return settings.Snapshot{Language: o.Language, Miners: o.Miners}
}

// Orderer returns the ordering algorithm named by o.Ordering.
func (o *Options) Orderer() ordering.Orderer {
	if o.Ordering == OrderingIdentity {
		return ordering.Identity{}
	}
	return ordering.Barycentric{}
}

// LayoutOptions returns the options for [layout.Build].
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Catalog:       o.Catalog,
		Miners:        o.MinerSnapshot(),
		Language:      o.Language,
		Direction:     o.Direction,
		Orderer:       o.Orderer(),
		WindowMinutes: o.Window,
	}
}

// catalogID identifies the catalog contents in cache keys.
func (o *Options) catalogID() string {
	return o.Catalog.Version() + ":" + o.Catalog.Fingerprint()
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Catalog:   o.catalogID(),
		Language:  o.Language,
		Direction: string(o.Direction),
		Window:    o.Window,
		Miners:    o.MinerSnapshot().Hash(),
		Ordering:  o.Ordering,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	style := o.Style
	if o.Summary {
		style += "+summary"
	}
	if o.Detailed {
		style += "+detailed"
	}
	return cache.ArtifactKeyOpts{
		Format: format,
		Style:  o.Viz + ":" + style,
	}
}

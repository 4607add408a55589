package layout

import (
	"github.com/matzehuels/prodgraph/pkg/catalog"
	"github.com/matzehuels/prodgraph/pkg/chain"
	perrors "github.com/matzehuels/prodgraph/pkg/errors"
	"github.com/matzehuels/prodgraph/pkg/i18n"
	"github.com/matzehuels/prodgraph/pkg/layout/ordering"
)

// Layout defaults, in pixels unless noted.
const (
	DefaultNodeWidth          = 180.0
	DefaultNodeHeight         = 84.0
	DefaultColumnSpacing      = 300.0
	DefaultRowSpacing         = 36.0
	DefaultMargin             = 40.0
	DefaultTierPadding        = 16.0
	DefaultTierLabelMargin    = 32.0
	DefaultSameLevelThreshold = 4.0
	DefaultWindowMinutes      = 1.0
)

// Palette colors tiers from rank 0 (lightest) outward. Tiers past the end of
// the palette reuse the darkest color.
var Palette = []string{
	"#f1f5f9",
	"#e2e8f0",
	"#cbd5e1",
	"#b6c3d4",
	"#94a3b8",
	"#7c8ca3",
	"#64748b",
	"#475569",
}

// Catalog is the item lookup layout needs. *catalog.Catalog implements it.
type Catalog interface {
	chain.Catalog
	Name(id, lang string) string
	Icon(id string) string
	IsLiquid(id string) bool
}

var _ Catalog = (*catalog.Catalog)(nil)

// Options configures [Build]. Zero numeric fields take their defaults.
type Options struct {
	Catalog   Catalog
	Miners    chain.MinerLookup // nil means every extractor uses settings.DefaultMiner
	Language  string
	Direction Direction
	Orderer   ordering.Orderer // nil means ordering.Barycentric{}

	// WindowMinutes is the production window for batch chains.
	WindowMinutes float64

	NodeWidth          float64
	NodeHeight         float64
	ColumnSpacing      float64
	RowSpacing         float64
	Margin             float64
	TierPadding        float64
	TierLabelMargin    float64
	SameLevelThreshold float64
}

// ValidDirections lists accepted directions.
var ValidDirections = map[Direction]bool{DirectionLR: true, DirectionTB: true}

func (o *Options) validateAndSetDefaults() error {
	if o.Catalog == nil {
		return perrors.New(perrors.ErrCodeInvalidInput, "layout: catalog is required")
	}
	if o.Direction == "" {
		o.Direction = DirectionLR
	}
	if !ValidDirections[o.Direction] {
		return perrors.New(perrors.ErrCodeInvalidDirection, "invalid direction %q (want LR or TB)", o.Direction)
	}
	if o.Language == "" {
		o.Language = i18n.Default
	}
	if o.Orderer == nil {
		o.Orderer = ordering.Barycentric{}
	}
	if o.Miners == nil {
		o.Miners = defaultMiners{}
	}

	setDefault(&o.WindowMinutes, DefaultWindowMinutes)
	setDefault(&o.NodeWidth, DefaultNodeWidth)
	setDefault(&o.NodeHeight, DefaultNodeHeight)
	setDefault(&o.RowSpacing, DefaultRowSpacing)
	setDefault(&o.Margin, DefaultMargin)
	setDefault(&o.TierPadding, DefaultTierPadding)
	setDefault(&o.TierLabelMargin, DefaultTierLabelMargin)
	setDefault(&o.SameLevelThreshold, DefaultSameLevelThreshold)

	primary := o.NodeWidth
	if o.Direction == DirectionTB {
		primary = o.NodeHeight
	}
	setDefault(&o.ColumnSpacing, DefaultColumnSpacing)
	if o.ColumnSpacing < primary+2*o.TierPadding {
		o.ColumnSpacing = primary + 2*o.TierPadding
	}
	return nil
}

func setDefault(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}

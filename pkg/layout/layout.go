package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/matzehuels/prodgraph/pkg/chain"
	"github.com/matzehuels/prodgraph/pkg/dag"
	"github.com/matzehuels/prodgraph/pkg/dag/transform"
	perrors "github.com/matzehuels/prodgraph/pkg/errors"
	"github.com/matzehuels/prodgraph/pkg/i18n"
	"github.com/matzehuels/prodgraph/pkg/rates"
	"github.com/matzehuels/prodgraph/pkg/settings"
)

type defaultMiners struct{}

func (defaultMiners) Get(string) settings.MinerSettings { return settings.DefaultMiner }

// Build lays out a chain. Ranks are recomputed from the chain's edges, so the
// chain does not need to be ranked beforehand and is not modified.
//
// Build fails only for invalid options or a cyclic chain; degenerate amounts
// and missing recipes fall back to the rate engine's sentinel values.
func Build(ch *chain.Chain, opts Options) (*Layout, error) {
	if ch == nil {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "layout: chain is nil")
	}
	if err := opts.validateAndSetDefaults(); err != nil {
		return nil, err
	}

	g := ch.ToDAG()
	if err := transform.AssignRanks(g); err != nil {
		return nil, fmt.Errorf("layout %s: %w", ch.Target, err)
	}
	orders := opts.Orderer.OrderRanks(g)
	ranks := g.RankIDs()

	l := &Layout{
		Target:    ch.Target,
		Mode:      ch.Mode,
		Language:  opts.Language,
		Direction: opts.Direction,
		Nodes:     make([]Node, 0, len(ch.Nodes)),
		Edges:     make([]Edge, 0, len(ch.Edges)),
	}
	if ch.Mode == chain.ModeBatch {
		l.Window = opts.WindowMinutes
	}

	b := builder{ch: ch, opts: &opts, layout: l}
	b.nodes(g)
	b.place(ranks, orders)
	b.edges()
	b.summary()
	if opts.Direction == DirectionTB {
		l.transpose()
	}
	return l, nil
}

type builder struct {
	ch     *chain.Chain
	opts   *Options
	layout *Layout
	index  map[string]int // node ID -> index in layout.Nodes
}

func (b *builder) rate(amount float64) float64 {
	if b.ch.Mode == chain.ModeRate {
		return amount
	}
	return amount / b.opts.WindowMinutes
}

// nodes converts chain nodes, taking ranks from the ranked graph.
func (b *builder) nodes(g *dag.DAG) {
	cat, lang := b.opts.Catalog, b.opts.Language
	b.index = make(map[string]int, len(b.ch.Nodes))
	for _, cn := range b.ch.Nodes {
		n := Node{
			ID:       cn.ID,
			Key:      cn.Key,
			ItemID:   cn.ItemID,
			Name:     cat.Name(cn.ItemID, lang),
			Icon:     cat.Icon(cn.ItemID),
			Building: cn.Building,
			Kind:     cn.Kind,
			Resource: cn.Resource,
			Amount:   cn.Amount,
			Rate:     b.rate(cn.Amount),
		}
		if rn, ok := g.Node(cn.ID); ok {
			n.Rank = rn.Rank
		}

		if cn.IsExtractor() {
			m := b.opts.Miners.Get(cn.Key)
			n.Miner = &m
			n.Machines = rates.MinersNeeded(n.Rate, m.Tier, m.Purity)
			if b.ch.Mode == chain.ModeBatch {
				n.MiningMinutes = rates.MiningMinutes(cn.Amount, m.Tier, m.Purity)
			}
		} else {
			recipe, _ := cat.Recipe(cn.ItemID)
			switch {
			case b.ch.Mode == chain.ModeRate && cn.Machines != nil:
				n.Machines = *cn.Machines
			case b.ch.Mode == chain.ModeRate:
				n.Machines = rates.MachinesForRate(cn.Amount, recipe)
			default:
				n.Machines = rates.MachinesNeeded(cn.Amount, b.opts.WindowMinutes, recipe)
			}
		}

		b.index[n.ID] = len(b.layout.Nodes)
		b.layout.Nodes = append(b.layout.Nodes, n)
	}
}

// place assigns coordinates in the left-to-right frame and builds tiers.
func (b *builder) place(ranks []int, orders map[int][]string) {
	o := b.opts
	w, h := o.NodeWidth, o.NodeHeight
	if o.Direction == DirectionTB {
		// Transposed at the end, so lay out with swapped node extents.
		w, h = h, w
	}

	tierHeight := func(n int) float64 {
		if n == 0 {
			return 0
		}
		return float64(n)*h + float64(n-1)*o.RowSpacing
	}
	var tallest float64
	for _, r := range ranks {
		tallest = math.Max(tallest, tierHeight(len(orders[r])))
	}
	top := o.Margin + o.TierLabelMargin

	for i, r := range ranks {
		ids := orders[r]
		x := o.Margin + float64(r)*o.ColumnSpacing
		th := tierHeight(len(ids))
		y0 := top + (tallest-th)/2
		for j, id := range ids {
			n := &b.layout.Nodes[b.index[id]]
			n.X = x
			n.Y = y0 + float64(j)*(h+o.RowSpacing)
			n.Width, n.Height = w, h
		}

		label := i18n.Sprintf(o.Language, i18n.MsgTier, r)
		if r == 0 {
			label = i18n.Sprintf(o.Language, i18n.MsgExtraction)
		}
		b.layout.Tiers = append(b.layout.Tiers, Tier{
			Rank:   r,
			Label:  label,
			X:      x - o.TierPadding,
			Y:      y0 - o.TierPadding - o.TierLabelMargin,
			Width:  w + 2*o.TierPadding,
			Height: th + 2*o.TierPadding + o.TierLabelMargin,
			Color:  Palette[min(i, len(Palette)-1)],
		})
	}

	maxRank := 0
	if len(ranks) > 0 {
		maxRank = ranks[len(ranks)-1]
	}
	b.layout.Width = 2*o.Margin + float64(maxRank)*o.ColumnSpacing + w
	b.layout.Height = top + tallest + o.Margin
}

func (b *builder) edges() {
	cat, lang := b.opts.Catalog, b.opts.Language
	for i, ce := range b.ch.Edges {
		src := b.layout.Nodes[b.index[ce.From]]
		dst := b.layout.Nodes[b.index[ce.To]]

		liquid := cat.IsLiquid(ce.ItemID)
		rate := b.rate(ce.Amount)
		tr := rates.TransportFor(rate, liquid)
		rel, sh, th := handles(src, dst, b.opts.SameLevelThreshold)

		b.layout.Edges = append(b.layout.Edges, Edge{
			ID:           fmt.Sprintf("e%d", i),
			From:         ce.From,
			To:           ce.To,
			ItemID:       ce.ItemID,
			Name:         cat.Name(ce.ItemID, lang),
			Amount:       ce.Amount,
			Label:        ce.Label,
			Rate:         rate,
			Liquid:       liquid,
			Transport:    tr,
			Overloaded:   tr.IsOverLimit,
			Relation:     rel,
			SourceHandle: sh,
			TargetHandle: th,
			Text:         EdgeText(lang, rate, tr),
		})
	}
}

// EdgeText formats the floating edge label, e.g. "150/min · Mk.3".
func EdgeText(lang string, rate float64, tr rates.Transport) string {
	return i18n.Sprintf(lang, i18n.MsgRatePerMinute, FormatAmount(lang, rate)) + " · " + tr.Tier
}

// FormatAmount prints an amount with at most two decimals and no trailing zeros.
func FormatAmount(lang string, v float64) string {
	rounded := math.Round(v*100) / 100
	if math.Abs(rounded) >= 1<<53 {
		return i18n.Printer(lang).Sprintf("%.0f", rounded)
	}
	if rounded == math.Trunc(rounded) {
		return i18n.Printer(lang).Sprintf("%d", int64(rounded))
	}
	if r10 := math.Round(v*10) / 10; r10 == rounded {
		return i18n.Printer(lang).Sprintf("%.1f", rounded)
	}
	return i18n.Printer(lang).Sprintf("%.2f", rounded)
}

// handles classifies the target's vertical position relative to the source
// and picks attachment sides in the left-to-right frame.
func handles(src, dst Node, threshold float64) (Relation, Handle, Handle) {
	dy := dst.CenterY() - src.CenterY()
	switch {
	case math.Abs(dy) <= threshold:
		return RelationSame, HandleRight, HandleLeft
	case dy > 0:
		return RelationBelow, HandleBottom, HandleTop
	default:
		return RelationAbove, HandleTop, HandleBottom
	}
}

func (b *builder) summary() {
	l, ch := b.layout, b.ch
	s := Summary{
		Nodes:  len(l.Nodes),
		Edges:  len(l.Edges),
		Totals: ch.Totals(),
	}
	for _, e := range l.Edges {
		if e.Overloaded {
			s.Overloaded++
		}
	}

	counts := map[string]int{}
	for _, n := range l.Nodes {
		if n.Building != "" {
			counts[n.Building] += n.Machines.Rounded
		}
	}
	for building, c := range counts {
		s.Buildings = append(s.Buildings, BuildingCount{Building: building, Count: c})
	}
	sort.Slice(s.Buildings, func(i, j int) bool { return s.Buildings[i].Building < s.Buildings[j].Building })

	if bn, minutes, ok := chain.Bottleneck(ch, b.opts.Miners); ok {
		s.Bottleneck = &Bottleneck{
			NodeID:  bn.ID,
			ItemID:  bn.ItemID,
			Name:    b.opts.Catalog.Name(bn.ItemID, b.opts.Language),
			Minutes: minutes,
		}
		l.Nodes[b.index[bn.ID]].IsBottleneck = true
	}
	l.Summary = s
}

var transposedHandle = map[Handle]Handle{
	HandleRight:  HandleBottom,
	HandleLeft:   HandleTop,
	HandleBottom: HandleRight,
	HandleTop:    HandleLeft,
}

// transpose swaps the axes of a laid-out diagram.
func (l *Layout) transpose() {
	for i := range l.Nodes {
		n := &l.Nodes[i]
		n.X, n.Y = n.Y, n.X
		n.Width, n.Height = n.Height, n.Width
	}
	for i := range l.Tiers {
		t := &l.Tiers[i]
		t.X, t.Y = t.Y, t.X
		t.Width, t.Height = t.Height, t.Width
	}
	for i := range l.Edges {
		e := &l.Edges[i]
		e.SourceHandle = transposedHandle[e.SourceHandle]
		e.TargetHandle = transposedHandle[e.TargetHandle]
	}
	l.Width, l.Height = l.Height, l.Width
}

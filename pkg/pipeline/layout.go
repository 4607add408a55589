package pipeline

import (
	"github.com/matzehuels/prodgraph/pkg/chain"
	"github.com/matzehuels/prodgraph/pkg/layout"
	"github.com/matzehuels/prodgraph/pkg/settings"
)

// GenerateLayout lays out a chain with the layout options in opts.
func GenerateLayout(ch *chain.Chain, opts Options) (*layout.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	opts.Miners = ExpandMiners(ch, opts.Miners)
	return layout.Build(ch, opts.LayoutOptions())
}

// ExpandMiners resolves miner overrides against the extractors of ch.
//
// A key is either an extractor's settings key or an item id; an item id
// applies to every extractor of that item without an exact entry. Entries that
// match no extractor are dropped, so overrides for other chains do not change
// the layout cache key.
func ExpandMiners(ch *chain.Chain, miners map[string]settings.MinerSettings) map[string]settings.MinerSettings {
	if len(miners) == 0 || ch == nil {
		return nil
	}
	out := make(map[string]settings.MinerSettings)
	for _, n := range ch.Extractors() {
		if m, ok := miners[n.Key]; ok {
			out[n.Key] = m
		} else if m, ok := miners[n.ItemID]; ok {
			out[n.Key] = m
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

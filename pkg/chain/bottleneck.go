package chain

import (
	"github.com/matzehuels/prodgraph/pkg/rates"
	"github.com/matzehuels/prodgraph/pkg/settings"
)

// MinerLookup returns the miner settings stored under a node key.
// *settings.Store and settings.Snapshot implement it.
type MinerLookup interface {
	Get(key string) settings.MinerSettings
}

// Bottleneck returns the extractor with the longest mining time in a batch
// chain, together with that time in minutes: the estimated completion time of
// the whole chain. Ties go to the earlier node. It returns false for rate-mode
// chains and chains without extractors.
func Bottleneck(c *Chain, miners MinerLookup) (Node, float64, bool) {
	if c.Mode != ModeBatch {
		return Node{}, 0, false
	}
	var (
		best    Node
		minutes float64
		found   bool
	)
	for _, n := range c.Nodes {
		if !n.IsExtractor() {
			continue
		}
		m := miners.Get(n.Key)
		t := rates.MiningMinutes(n.Amount, m.Tier, m.Purity)
		if !found || t > minutes {
			best, minutes, found = n, t, true
		}
	}
	return best, minutes, found
}

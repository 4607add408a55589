package pipeline

import (
	"fmt"

	"github.com/matzehuels/prodgraph/pkg/chain"
)

// Resolve expands opts.Item into a ranked production chain. Items missing
// from the catalog resolve to a single generic extractor node.
func Resolve(opts Options) (*chain.Chain, error) {
	if err := opts.ValidateForResolve(); err != nil {
		return nil, err
	}
	ch := chain.Resolve(opts.Catalog, opts.Item, opts.Amount, opts.Mode)
	if err := chain.Rank(ch); err != nil {
		return nil, fmt.Errorf("rank %s: %w", opts.Item, err)
	}
	if _, known := opts.Catalog.Item(opts.Item); !known {
		opts.Logger.Warn("item not in catalog, treating it as a raw resource", "item", opts.Item)
	}
	return ch, nil
}

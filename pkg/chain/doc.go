// Package chain expands a target item into a production chain.
//
// # Overview
//
// [Resolve] walks the catalog recursively from a target item down to raw
// resources. Each craftable item becomes a processing node; each raw resource
// becomes an extractor node. Every recipe input produces one edge from the root
// of the input's subtree to the consuming node, carrying the exact amount and
// the rounded-up label.
//
//	ch := chain.Resolve(catalog.Default(), "iron-plate", 100, chain.ModeBatch)
//	if err := chain.Rank(ch); err != nil {
//	    return err
//	}
//
// # Modes
//
// In [ModeBatch] amounts are absolute quantities to produce; machine counts are
// derived later against a production window. In [ModeRate] amounts are items
// per minute and each processing node's machine count is computed during the
// walk.
//
// # Node Identity
//
// Node IDs ("n0", "n1", ...) come from a counter owned by a single resolution,
// so they restart for every call and concurrent resolutions never share state.
// Node keys are derived from content instead: the root's key is its item id and
// each child's key is "<parent key>/<input index>:<item>". Keys are stable across
// re-resolution and are what miner settings are stored under.
//
// # Repeated Subtrees
//
// An item needed in several places is expanded once per occurrence. Every
// occurrence gets its own subtree and its own extractors, matching the physical
// buildings a player places.
package chain

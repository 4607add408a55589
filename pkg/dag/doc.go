// Package dag provides the directed acyclic graph that production chains are
// ranked and laid out on.
//
// # Overview
//
// A resolved production chain is a tree of processing nodes whose leaves are
// extraction (terminal) nodes. Material flows from producers to consumers, so
// every [Edge] points from the node that makes an item to the node that uses it.
// Each node carries a Rank: 0 for extraction, and one more than its highest
// producer otherwise. Nodes of equal rank form a tier, drawn as one column.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "ore", Terminal: true})
//	g.AddNode(dag.Node{ID: "ingot"})
//	g.AddEdge(dag.Edge{From: "ore", To: "ingot"})
//
// Ranks are assigned by [transform.AssignRanks]. [DAG.Validate] then checks
// that every edge points to a strictly higher rank, that terminal nodes sit at
// rank 0, and that the graph is acyclic.
//
// Query the graph with [DAG.Children], [DAG.Parents], [DAG.NodesInRank] and
// related methods. Node and edge iteration follows insertion order, which keeps
// every downstream step deterministic.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] use a Fenwick tree (binary indexed
// tree) to count inversions in O(E log V) time. The layout's ordering pass uses
// them to score tier orderings, and [CountPairCrossings] to decide local swaps.
//
// # Metadata
//
// Both nodes and the graph itself support arbitrary metadata via [Metadata]
// maps, used to carry item ids, amounts and buildings to renderers.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize access
// if multiple goroutines read or modify the same graph.
//
// [transform.AssignRanks]: github.com/matzehuels/prodgraph/pkg/dag/transform
package dag

// Package ordering decides the top-to-bottom arrangement of nodes within each
// tier of a ranked production graph.
//
// # The Ordering Problem
//
// Tiers are fixed by rank; only the order inside a tier is free. A good order
// keeps material edges from crossing so the diagram stays readable. Finding a
// crossing-minimal order is NP-hard, so this package uses the classic Sugiyama
// barycenter heuristic.
//
// # Barycentric Heuristic
//
// The [Barycentric] orderer:
//
//  1. Starts from the graph's insertion order (for resolved chains, the
//     depth-first order of the recipe tree, which is usually close to optimal)
//  2. Sweeps forward: sorts each tier by the mean normalized position of the
//     nodes feeding it
//  3. Sweeps backward: sorts each tier by the mean position of its consumers
//  4. Transposes adjacent nodes whenever that removes crossings
//  5. Returns the best ordering seen, never one worse than the start
//
// Edges that skip tiers still contribute to barycenters; only adjacent-tier
// edges are counted when scoring.
//
// # Usage
//
// The [Orderer] interface lets the layout treat the pass as a replaceable
// collaborator:
//
//	var orderer ordering.Orderer = ordering.Barycentric{Passes: 8}
//	orders := orderer.OrderRanks(g) // map[rank][]nodeID
package ordering

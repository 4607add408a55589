package dag

import (
	"maps"
	"slices"
)

// CountCrossings returns the total number of edge crossings for the given rank
// orderings. It sums the crossings between each pair of consecutive ranks
// present in orders. The orders map should contain node IDs in top-to-bottom
// order for each rank.
//
// Example:
//
//	orders := map[int][]string{
//	    0: {"iron-ore", "coal"},          // rank 0: extractors
//	    1: {"iron-ingot", "steel-ingot"}, // rank 1: smelters
//	}
//	crossings := dag.CountCrossings(g, orders)
//
// Edges that skip a rank are not counted; they are routed around tiers by the
// renderer. It runs in O(R × E log V) time.
func CountCrossings(g *DAG, orders map[int][]string) int {
	ranks := slices.Sorted(maps.Keys(orders))
	crossings := 0
	for i := 0; i < len(ranks)-1; i++ {
		crossings += CountLayerCrossings(g, orders[ranks[i]], orders[ranks[i+1]])
	}
	return crossings
}

// CountLayerCrossings counts edge crossings between two ranks using a Fenwick
// tree (binary indexed tree) for O(E log V) performance where E is the number of
// edges between the ranks and V is the number of nodes in the later rank.
//
// Two edges (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// This is equivalent to counting inversions in the sequence of target positions
// when edges are sorted by source position.
//
// Returns 0 if either rank is empty or nil.
func CountLayerCrossings(g *DAG, from, to []string) int {
	if len(from) == 0 || len(to) == 0 {
		return 0
	}

	toPos := PosMap(to)

	type edge struct{ from, to int }
	edges := make([]edge, 0, len(from)*2)
	for i, nodeID := range from {
		for _, child := range g.Children(nodeID) {
			if pos, ok := toPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.from != b.from {
			return a.from - b.from
		}
		return a.to - b.to
	})

	fenwick := make([]int, len(to)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		// edges seen so far with target <= e.to
		lessOrEqual := 0
		for q := e.to + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := e.to + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

// CountPairCrossings counts how many crossings the edges of two nodes in the
// same rank produce with each other, given the order of an adjacent rank.
// left is assumed to be placed before right. If useParents is true the
// producers of both nodes are considered; otherwise their consumers.
//
// Local search heuristics compare CountPairCrossings(a, b) with
// CountPairCrossings(b, a) to decide whether swapping two neighbors helps.
func CountPairCrossings(g *DAG, left, right string, adjOrder []string, useParents bool) int {
	return CountPairCrossingsWithPos(g, left, right, PosMap(adjOrder), useParents)
}

// CountPairCrossingsWithPos is like [CountPairCrossings] but takes a precomputed
// position map for the adjacent rank. Nodes not in the map are ignored.
func CountPairCrossingsWithPos(g *DAG, left, right string, adjPos map[string]int, useParents bool) int {
	var lnbr, rnbr []string
	if useParents {
		lnbr = g.Parents(left)
		rnbr = g.Parents(right)
	} else {
		lnbr = g.Children(left)
		rnbr = g.Children(right)
	}

	crossings := 0
	for _, ln := range lnbr {
		lp, ok := adjPos[ln]
		if !ok {
			continue
		}
		for _, rn := range rnbr {
			if rp, ok := adjPos[rn]; ok && lp > rp {
				crossings++
			}
		}
	}
	return crossings
}

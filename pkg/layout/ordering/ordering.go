package ordering

import (
	"slices"
	"sort"

	"github.com/matzehuels/prodgraph/pkg/dag"
)

// Orderer is an interface for within-tier ordering algorithms.
// OrderRanks must return every node of g exactly once, keyed by its rank.
type Orderer interface {
	OrderRanks(g *dag.DAG) map[int][]string
}

// Identity keeps insertion order. It is useful for tests and for callers that
// want the raw recipe-tree order.
type Identity struct{}

// OrderRanks implements [Orderer].
func (Identity) OrderRanks(g *dag.DAG) map[int][]string {
	return initialOrders(g)
}

// DefaultPasses is the number of sweep pairs used when Barycentric.Passes is 0.
const DefaultPasses = 8

// Barycentric orders tiers with the barycenter heuristic plus adjacent
// transposition. The zero value is ready to use.
type Barycentric struct {
	Passes int
}

// OrderRanks implements [Orderer].
func (b Barycentric) OrderRanks(g *dag.DAG) map[int][]string {
	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	ranks := g.RankIDs()
	orders := initialOrders(g)
	best := cloneOrders(orders)
	bestScore := score(g, ranks, orders)

	for p := 0; p < passes && bestScore > 0; p++ {
		for i := 1; i < len(ranks); i++ {
			sortByBarycenter(g, orders, ranks[i], true)
		}
		transpose(g, ranks, orders)
		if s := score(g, ranks, orders); s < bestScore {
			best, bestScore = cloneOrders(orders), s
		}

		for i := len(ranks) - 2; i >= 0; i-- {
			sortByBarycenter(g, orders, ranks[i], false)
		}
		transpose(g, ranks, orders)
		if s := score(g, ranks, orders); s < bestScore {
			best, bestScore = cloneOrders(orders), s
		}
	}
	return best
}

func initialOrders(g *dag.DAG) map[int][]string {
	orders := make(map[int][]string, g.RankCount())
	for _, r := range g.RankIDs() {
		orders[r] = dag.NodeIDs(g.NodesInRank(r))
	}
	return orders
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		out[r] = slices.Clone(ids)
	}
	return out
}

func score(g *dag.DAG, ranks []int, orders map[int][]string) int {
	total := 0
	for i := 0; i+1 < len(ranks); i++ {
		total += dag.CountLayerCrossings(g, orders[ranks[i]], orders[ranks[i+1]])
	}
	return total
}

// positions maps every node to its normalized position in [0, 1] within its tier.
func positions(g *dag.DAG, orders map[int][]string) map[string]float64 {
	pos := make(map[string]float64, g.NodeCount())
	for _, ids := range orders {
		for i, id := range ids {
			pos[id] = (float64(i) + 0.5) / float64(len(ids))
		}
	}
	return pos
}

// sortByBarycenter reorders one tier by the mean position of its producers
// (forward) or consumers (backward). Nodes without neighbors keep their
// current position as barycenter.
func sortByBarycenter(g *dag.DAG, orders map[int][]string, rank int, forward bool) {
	ids := orders[rank]
	if len(ids) < 2 {
		return
	}
	pos := positions(g, orders)
	bary := make(map[string]float64, len(ids))
	for _, id := range ids {
		nbrs := g.Children(id)
		if forward {
			nbrs = g.Parents(id)
		}
		if len(nbrs) == 0 {
			bary[id] = pos[id]
			continue
		}
		sum := 0.0
		for _, n := range nbrs {
			sum += pos[n]
		}
		bary[id] = sum / float64(len(nbrs))
	}
	sort.SliceStable(ids, func(i, j int) bool { return bary[ids[i]] < bary[ids[j]] })
}

// transpose swaps adjacent nodes while doing so reduces crossings with the
// neighboring tiers.
func transpose(g *dag.DAG, ranks []int, orders map[int][]string) {
	for improved := true; improved; {
		improved = false
		for i, r := range ranks {
			ids := orders[r]
			var prev, next map[string]int
			if i > 0 {
				prev = dag.PosMap(orders[ranks[i-1]])
			}
			if i+1 < len(ranks) {
				next = dag.PosMap(orders[ranks[i+1]])
			}
			for j := 0; j+1 < len(ids); j++ {
				u, v := ids[j], ids[j+1]
				before := pairCrossings(g, u, v, prev, next)
				after := pairCrossings(g, v, u, prev, next)
				if after < before {
					ids[j], ids[j+1] = v, u
					improved = true
				}
			}
		}
	}
}

func pairCrossings(g *dag.DAG, left, right string, prev, next map[string]int) int {
	c := 0
	if prev != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, prev, true)
	}
	if next != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, next, false)
	}
	return c
}

package transform

import "github.com/matzehuels/prodgraph/pkg/dag"

// AssignRanks assigns every node its longest-path distance from the extraction
// tier and stores it in Node.Rank.
//
// Nodes with no incoming edges and terminal nodes start at rank 0. Every other
// node is placed one rank past its highest producer, so for each edge
// rank(To) > rank(From) and a node is never drawn left of any of its sources.
// Terminal nodes stay pinned at rank 0.
//
// # Algorithm
//
// AssignRanks is Kahn's topological sort with explicit in-degree tracking:
//  1. Queue every node with in-degree 0
//  2. Pop a node; raise each consumer to at least rank+1
//  3. Decrement the consumer's in-degree and queue it when it reaches 0
//  4. Repeat until the queue is empty
//
// # Cycles
//
// If the queue drains before every node was processed, the remaining nodes
// lie on or behind a cycle. AssignRanks then returns [dag.ErrGraphHasCycle] and
// leaves existing ranks untouched.
//
// # Performance
//
// Time complexity is O(V + E), where V is nodes and E is edges.
func AssignRanks(g *dag.DAG) error {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	ranks := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		ranks[n.ID] = 0
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	processed := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		processed++

		for _, child := range g.Children(curr) {
			if n, _ := g.Node(child); !n.Terminal {
				if rank := ranks[curr] + 1; rank > ranks[child] {
					ranks[child] = rank
				}
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if processed != len(nodes) {
		return dag.ErrGraphHasCycle
	}
	g.SetRanks(ranks)
	return nil
}

// Tiers groups node IDs by rank in ascending rank order. Within a tier, nodes
// keep graph insertion order. Call it after [AssignRanks].
func Tiers(g *dag.DAG) [][]string {
	ids := g.RankIDs()
	out := make([][]string, len(ids))
	for i, r := range ids {
		out[i] = dag.NodeIDs(g.NodesInRank(r))
	}
	return out
}

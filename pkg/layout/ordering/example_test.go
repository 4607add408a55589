package ordering_test

import (
	"fmt"

	"github.com/matzehuels/prodgraph/pkg/dag"
	"github.com/matzehuels/prodgraph/pkg/layout/ordering"
)

func ExampleBarycentric() {
	// Classic crossing example: X pattern
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Rank: 0})
	_ = g.AddNode(dag.Node{ID: "b", Rank: 0})
	_ = g.AddNode(dag.Node{ID: "x", Rank: 1})
	_ = g.AddNode(dag.Node{ID: "y", Rank: 1})
	_ = g.AddEdge(dag.Edge{From: "a", To: "y"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "x"})

	fmt.Println("Initial crossings:", dag.CountLayerCrossings(g, []string{"a", "b"}, []string{"x", "y"}))

	orders := ordering.Barycentric{}.OrderRanks(g)
	fmt.Println("After ordering:", dag.CountLayerCrossings(g, orders[0], orders[1]))
	// Output:
	// Initial crossings: 1
	// After ordering: 0
}

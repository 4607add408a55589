package dag_test

import (
	"fmt"

	"github.com/matzehuels/prodgraph/pkg/dag"
)

func ExampleDAG_basic() {
	// Iron ore is smelted into ingots, which are pressed into plates
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "ore", Rank: 0, Terminal: true})
	_ = g.AddNode(dag.Node{ID: "ingot", Rank: 1})
	_ = g.AddNode(dag.Node{ID: "plate", Rank: 2})
	_ = g.AddEdge(dag.Edge{From: "ore", To: "ingot"})
	_ = g.AddEdge(dag.Edge{From: "ingot", To: "plate"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Ranks:", g.RankCount())
	fmt.Println("Valid:", g.Validate() == nil)
	// Output:
	// Nodes: 3
	// Edges: 2
	// Ranks: 3
	// Valid: true
}

func ExampleDAG_traversal() {
	// Steel needs both iron ore and coal
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "iron-ore", Terminal: true})
	_ = g.AddNode(dag.Node{ID: "coal", Terminal: true})
	_ = g.AddNode(dag.Node{ID: "steel", Rank: 1})
	_ = g.AddEdge(dag.Edge{From: "iron-ore", To: "steel"})
	_ = g.AddEdge(dag.Edge{From: "coal", To: "steel"})

	fmt.Println("Producers of steel:", g.Parents("steel"))
	fmt.Println("Consumers of coal:", g.Children("coal"))
	fmt.Println("In-degree of steel:", g.InDegree("steel"))
	// Output:
	// Producers of steel: [iron-ore coal]
	// Consumers of coal: [steel]
	// In-degree of steel: 2
}

func ExampleDAG_Validate() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "ingot", Rank: 1})
	_ = g.AddNode(dag.Node{ID: "plate", Rank: 1})
	_ = g.AddEdge(dag.Edge{From: "ingot", To: "plate"})

	fmt.Println(g.Validate())
	// Output:
	// edge target rank must exceed source rank
}

func ExampleCountLayerCrossings() {
	// Count edge crossings between two tiers
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Rank: 0})
	_ = g.AddNode(dag.Node{ID: "b", Rank: 0})
	_ = g.AddNode(dag.Node{ID: "x", Rank: 1})
	_ = g.AddNode(dag.Node{ID: "y", Rank: 1})

	// a→y and b→x cross when a is above b
	_ = g.AddEdge(dag.Edge{From: "a", To: "y"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "x"})

	fmt.Println("Crossings:", dag.CountLayerCrossings(g, []string{"a", "b"}, []string{"x", "y"}))
	fmt.Println("After reorder:", dag.CountLayerCrossings(g, []string{"b", "a"}, []string{"x", "y"}))
	// Output:
	// Crossings: 1
	// After reorder: 0
}

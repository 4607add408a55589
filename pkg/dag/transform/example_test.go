package transform_test

import (
	"fmt"

	"github.com/matzehuels/prodgraph/pkg/dag"
	"github.com/matzehuels/prodgraph/pkg/dag/transform"
)

func ExampleAssignRanks() {
	// Reinforced plates need plates (ore → ingot → plate) and screws
	// (ore → ingot → rod → screw); the assembler lands one tier past the
	// longer branch.
	g := dag.New(nil)
	for _, id := range []string{"rip", "plate", "ingot-a", "ore-a", "screw", "rod", "ingot-b", "ore-b"} {
		_ = g.AddNode(dag.Node{ID: id, Terminal: id == "ore-a" || id == "ore-b"})
	}
	_ = g.AddEdge(dag.Edge{From: "plate", To: "rip"})
	_ = g.AddEdge(dag.Edge{From: "ingot-a", To: "plate"})
	_ = g.AddEdge(dag.Edge{From: "ore-a", To: "ingot-a"})
	_ = g.AddEdge(dag.Edge{From: "screw", To: "rip"})
	_ = g.AddEdge(dag.Edge{From: "rod", To: "screw"})
	_ = g.AddEdge(dag.Edge{From: "ingot-b", To: "rod"})
	_ = g.AddEdge(dag.Edge{From: "ore-b", To: "ingot-b"})

	if err := transform.AssignRanks(g); err != nil {
		fmt.Println(err)
		return
	}
	for rank, tier := range transform.Tiers(g) {
		fmt.Println(rank, tier)
	}
	// Output:
	// 0 [ore-a ore-b]
	// 1 [ingot-a ingot-b]
	// 2 [plate rod]
	// 3 [screw]
	// 4 [rip]
}

func ExampleAssignRanks_cycle() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a"})
	_ = g.AddNode(dag.Node{ID: "b"})
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "a"})

	fmt.Println(transform.AssignRanks(g))
	// Output:
	// graph contains a cycle
}

package ordering

import (
	"sort"
	"testing"

	"github.com/matzehuels/prodgraph/pkg/dag"
)

func ranked(t *testing.T, ranks map[string]int, order []string, edges [][2]string) *dag.DAG {
	t.Helper()
	g := dag.New(nil)
	for _, id := range order {
		if err := g.AddNode(dag.Node{ID: id, Rank: ranks[id]}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(dag.Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestBarycentricKeepsAllNodes(t *testing.T) {
	order := []string{"t", "p1", "p2", "p3", "o1", "o2", "o3"}
	ranks := map[string]int{"t": 2, "p1": 1, "p2": 1, "p3": 1, "o1": 0, "o2": 0, "o3": 0}
	g := ranked(t, ranks, order, [][2]string{
		{"o3", "p1"}, {"o1", "p2"}, {"o2", "p3"},
		{"p1", "t"}, {"p2", "t"}, {"p3", "t"},
	})

	orders := Barycentric{Passes: 4}.OrderRanks(g)
	var got []string
	for _, ids := range orders {
		got = append(got, ids...)
	}
	sort.Strings(got)
	want := append([]string(nil), order...)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("got %d nodes, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("nodes = %v, want %v", got, want)
		}
	}
	if c := dag.CountCrossings(g, orders); c != 0 {
		t.Errorf("crossings = %d, want 0", c)
	}
}

func TestBarycentricNeverWorse(t *testing.T) {
	// K(2,2) between tiers: one crossing is unavoidable
	order := []string{"a", "b", "x", "y"}
	ranks := map[string]int{"a": 0, "b": 0, "x": 1, "y": 1}
	g := ranked(t, ranks, order, [][2]string{{"a", "x"}, {"a", "y"}, {"b", "x"}, {"b", "y"}})

	initial := dag.CountCrossings(g, Identity{}.OrderRanks(g))
	got := dag.CountCrossings(g, Barycentric{}.OrderRanks(g))
	if got > initial {
		t.Errorf("crossings = %d, initial %d", got, initial)
	}
}

func TestIdentity(t *testing.T) {
	g := ranked(t, map[string]int{"b": 0, "a": 0}, []string{"b", "a"}, nil)
	orders := Identity{}.OrderRanks(g)
	if len(orders[0]) != 2 || orders[0][0] != "b" {
		t.Errorf("Identity = %v, want insertion order", orders)
	}
}

package chain

import (
	"fmt"
	"math"
	"sort"

	"github.com/matzehuels/prodgraph/pkg/catalog"
	"github.com/matzehuels/prodgraph/pkg/dag"
	"github.com/matzehuels/prodgraph/pkg/dag/transform"
	"github.com/matzehuels/prodgraph/pkg/rates"
)

// Mode selects how amounts are interpreted.
type Mode string

const (
	ModeBatch Mode = "batch" // absolute quantity
	ModeRate  Mode = "rate"  // items per minute
)

// ParseMode parses "batch" or "rate".
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeBatch, ModeRate:
		return Mode(s), true
	}
	return "", false
}

// Kind distinguishes extraction from processing.
type Kind string

const (
	KindExtractor Kind = "extractor"
	KindProcessor Kind = "processor"
)

// Resource classifies what an extractor pulls out of the ground.
type Resource string

const (
	ResourceOre     Resource = "ore"
	ResourceLiquid  Resource = "liquid"
	ResourceGeneric Resource = "generic"
)

// Node is one building group in a chain.
type Node struct {
	ID       string          `json:"id"`
	Key      string          `json:"key"`
	ItemID   string          `json:"item"`
	Building string          `json:"building,omitempty"`
	Amount   float64         `json:"amount"`
	Depth    int             `json:"depth"`
	Rank     int             `json:"rank"`
	Kind     Kind            `json:"kind"`
	Resource Resource        `json:"resource,omitempty"`
	Machines *rates.Machines `json:"machines,omitempty"`
}

// IsExtractor reports whether n is a terminal extraction node.
func (n Node) IsExtractor() bool { return n.Kind == KindExtractor }

// Edge is a material flow from the root of an input subtree to its consumer.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	ItemID string  `json:"item"`
	Amount float64 `json:"amount"`
	Label  int     `json:"label"`
}

// Chain is a resolved production chain. Nodes are in pre-order: the target
// comes first and every subtree root precedes its descendants.
type Chain struct {
	Target string  `json:"target"`
	Amount float64 `json:"amount"`
	Mode   Mode    `json:"mode"`
	Nodes  []Node  `json:"nodes"`
	Edges  []Edge  `json:"edges"`
}

// Root returns the target node, or nil for an empty chain.
func (c *Chain) Root() *Node {
	if len(c.Nodes) == 0 {
		return nil
	}
	return &c.Nodes[0]
}

// Node returns the node with the given ID.
func (c *Chain) Node(id string) (*Node, bool) {
	for i := range c.Nodes {
		if c.Nodes[i].ID == id {
			return &c.Nodes[i], true
		}
	}
	return nil, false
}

// Extractors returns the extraction nodes in chain order.
func (c *Chain) Extractors() []Node {
	var out []Node
	for _, n := range c.Nodes {
		if n.IsExtractor() {
			out = append(out, n)
		}
	}
	return out
}

// ExtractorKeys returns the keys of all extraction nodes.
func (c *Chain) ExtractorKeys() []string {
	var out []string
	for _, n := range c.Nodes {
		if n.IsExtractor() {
			out = append(out, n.Key)
		}
	}
	return out
}

// Inputs returns the edges feeding node id, in recipe input order.
func (c *Chain) Inputs(id string) []Edge {
	var out []Edge
	for _, e := range c.Edges {
		if e.To == id {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return c.index(out[i].From) < c.index(out[j].From) })
	return out
}

func (c *Chain) index(id string) int {
	for i := range c.Nodes {
		if c.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Total is the summed demand for one raw resource.
type Total struct {
	ItemID     string  `json:"item"`
	Amount     float64 `json:"amount"`
	Extractors int     `json:"extractors"`
}

// Totals sums extractor amounts per raw item, across parallel extractor
// chains, sorted by item id.
func (c *Chain) Totals() []Total {
	byItem := map[string]*Total{}
	var order []string
	for _, n := range c.Nodes {
		if !n.IsExtractor() {
			continue
		}
		t, ok := byItem[n.ItemID]
		if !ok {
			t = &Total{ItemID: n.ItemID}
			byItem[n.ItemID] = t
			order = append(order, n.ItemID)
		}
		t.Amount += n.Amount
		t.Extractors++
	}
	sort.Strings(order)
	out := make([]Total, len(order))
	for i, id := range order {
		out[i] = *byItem[id]
	}
	return out
}

// ToDAG converts the chain to a graph with edges pointing from producer to
// consumer. Node metadata carries "item", "key", "kind" and "amount"; edge
// metadata carries "item" and "amount".
func (c *Chain) ToDAG() *dag.DAG {
	g := dag.New(dag.Metadata{"target": c.Target, "mode": string(c.Mode)})
	for _, n := range c.Nodes {
		_ = g.AddNode(dag.Node{
			ID:       n.ID,
			Rank:     n.Rank,
			Terminal: n.IsExtractor(),
			Meta: dag.Metadata{
				"item":     n.ItemID,
				"key":      n.Key,
				"kind":     string(n.Kind),
				"amount":   n.Amount,
				"building": n.Building,
			},
		})
	}
	for _, e := range c.Edges {
		_ = g.AddEdge(dag.Edge{From: e.From, To: e.To, Meta: dag.Metadata{"item": e.ItemID, "amount": e.Amount}})
	}
	return g
}

// Rank assigns each node its tier: 0 for extractors, one past the highest
// producer otherwise. It fails only if the chain contains a cycle, which
// [Resolve] never produces.
func Rank(c *Chain) error {
	g := c.ToDAG()
	if err := transform.AssignRanks(g); err != nil {
		return fmt.Errorf("rank %s: %w", c.Target, err)
	}
	for i := range c.Nodes {
		n, _ := g.Node(c.Nodes[i].ID)
		c.Nodes[i].Rank = n.Rank
	}
	return nil
}

// MaxRank returns the highest rank in the chain.
func (c *Chain) MaxRank() int {
	highest := 0
	for _, n := range c.Nodes {
		if n.Rank > highest {
			highest = n.Rank
		}
	}
	return highest
}

const amountEpsilon = 1e-9

// Equal reports whether c and o have the same shape: the same target, mode,
// node items, kinds, keys and amounts in the same order, and the same edge
// structure. Node IDs are ignored.
func (c *Chain) Equal(o *Chain) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Target != o.Target || c.Mode != o.Mode || !closeEnough(c.Amount, o.Amount) ||
		len(c.Nodes) != len(o.Nodes) || len(c.Edges) != len(o.Edges) {
		return false
	}
	for i := range c.Nodes {
		a, b := c.Nodes[i], o.Nodes[i]
		if a.ItemID != b.ItemID || a.Kind != b.Kind || a.Resource != b.Resource ||
			a.Key != b.Key || a.Depth != b.Depth || a.Building != b.Building ||
			!closeEnough(a.Amount, b.Amount) {
			return false
		}
	}
	for i := range c.Edges {
		a, b := c.Edges[i], o.Edges[i]
		if c.index(a.From) != o.index(b.From) || c.index(a.To) != o.index(b.To) ||
			a.ItemID != b.ItemID || a.Label != b.Label || !closeEnough(a.Amount, b.Amount) {
			return false
		}
	}
	return true
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) <= amountEpsilon*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// Catalog is the lookup the resolver needs. *catalog.Catalog implements it.
type Catalog interface {
	Item(id string) (catalog.Item, bool)
	Recipe(id string) (*catalog.Recipe, bool)
}

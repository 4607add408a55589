package layout

import (
	"github.com/matzehuels/prodgraph/pkg/chain"
	"github.com/matzehuels/prodgraph/pkg/rates"
	"github.com/matzehuels/prodgraph/pkg/settings"
)

// Direction is the flow direction of the diagram.
type Direction string

const (
	DirectionLR Direction = "LR" // tiers are columns, flow left to right
	DirectionTB Direction = "TB" // tiers are rows, flow top to bottom
)

// Handle names the side of a node an edge attaches to.
type Handle string

const (
	HandleLeft   Handle = "left"
	HandleRight  Handle = "right"
	HandleTop    Handle = "top"
	HandleBottom Handle = "bottom"
)

// Relation is the vertical relation of an edge's target to its source.
type Relation string

const (
	RelationSame  Relation = "same"
	RelationBelow Relation = "below"
	RelationAbove Relation = "above"
)

// Node is a positioned production node.
type Node struct {
	ID       string         `json:"id"`
	Key      string         `json:"key"`
	ItemID   string         `json:"item"`
	Name     string         `json:"name"`
	Icon     string         `json:"icon,omitempty"`
	Building string         `json:"building,omitempty"`
	Kind     chain.Kind     `json:"kind"`
	Resource chain.Resource `json:"resource,omitempty"`
	Rank     int            `json:"rank"`
	Amount   float64        `json:"amount"`
	Rate     float64        `json:"rate"` // per minute

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Machines      rates.Machines          `json:"machines"`
	Miner         *settings.MinerSettings `json:"miner,omitempty"`
	MiningMinutes float64                 `json:"miningMinutes,omitempty"`
	IsBottleneck  bool                    `json:"isBottleneck,omitempty"`
}

// CenterX returns the horizontal center of the node.
func (n Node) CenterX() float64 { return n.X + n.Width/2 }

// CenterY returns the vertical center of the node.
func (n Node) CenterY() float64 { return n.Y + n.Height/2 }

// Edge is a diagram edge annotated with flow and transport data.
type Edge struct {
	ID           string          `json:"id"`
	From         string          `json:"from"`
	To           string          `json:"to"`
	ItemID       string          `json:"item"`
	Name         string          `json:"name"`
	Amount       float64         `json:"amount"`
	Label        int             `json:"label"`
	Rate         float64         `json:"rate"`
	Liquid       bool            `json:"liquid,omitempty"`
	Transport    rates.Transport `json:"transport"`
	Overloaded   bool            `json:"overloaded,omitempty"`
	Relation     Relation        `json:"relation"`
	SourceHandle Handle          `json:"sourceHandle"`
	TargetHandle Handle          `json:"targetHandle"`
	Text         string          `json:"text"`
}

// Tier is the background region behind one rank.
type Tier struct {
	Rank   int     `json:"rank"`
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color"`
}

// Bottleneck identifies the slowest extractor of a batch chain.
type Bottleneck struct {
	NodeID  string  `json:"nodeId"`
	ItemID  string  `json:"item"`
	Name    string  `json:"name"`
	Minutes float64 `json:"minutes"`
}

// BuildingCount is the number of machines of one building type.
type BuildingCount struct {
	Building string `json:"building"`
	Count    int    `json:"count"`
}

// Summary aggregates a layout.
type Summary struct {
	Nodes      int             `json:"nodes"`
	Edges      int             `json:"edges"`
	Overloaded int             `json:"overloaded"`
	Bottleneck *Bottleneck     `json:"bottleneck,omitempty"`
	Totals     []chain.Total   `json:"totals"`
	Buildings  []BuildingCount `json:"buildings"`
}

// Layout is a positioned diagram ready for rendering.
type Layout struct {
	Target    string     `json:"target"`
	Mode      chain.Mode `json:"mode"`
	Language  string     `json:"language"`
	Direction Direction  `json:"direction"`
	Window    float64    `json:"window,omitempty"`
	Nodes     []Node     `json:"nodes"`
	Edges     []Edge     `json:"edges"`
	Tiers     []Tier     `json:"tiers"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Summary   Summary    `json:"summary"`
}

// Node returns the node with the given ID.
func (l *Layout) Node(id string) (*Node, bool) {
	for i := range l.Nodes {
		if l.Nodes[i].ID == id {
			return &l.Nodes[i], true
		}
	}
	return nil, false
}

package chain

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes a chain as JSON.
func Marshal(c *Chain) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode chain: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a chain produced by [Marshal] and checks that every edge
// references a known node.
func Unmarshal(data []byte) (*Chain, error) {
	var c Chain
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode chain: %w", err)
	}
	ids := make(map[string]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		ids[n.ID] = true
	}
	for _, e := range c.Edges {
		if !ids[e.From] || !ids[e.To] {
			return nil, fmt.Errorf("decode chain: edge %s->%s references unknown node", e.From, e.To)
		}
	}
	return &c, nil
}

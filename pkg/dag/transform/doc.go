// Package transform provides graph transformations that prepare a production
// DAG for layout.
//
// # Rank Assignment
//
// [AssignRanks] computes each node's tier: 0 for extraction nodes, and the
// longest-path distance from any extraction node otherwise. It uses Kahn's
// algorithm, so it runs in linear time and reports an accidental cycle as
// [dag.ErrGraphHasCycle] instead of looping.
//
// [Tiers] then groups node IDs rank by rank for the layout's ordering pass.
//
// # Usage
//
//	if err := transform.AssignRanks(g); err != nil {
//	    return err
//	}
//	for i, tier := range transform.Tiers(g) {
//	    fmt.Println(i, tier)
//	}
package transform

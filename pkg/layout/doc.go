// Package layout turns a resolved production chain into a positioned diagram:
// nodes with coordinates and machine counts, edges with flow rates and
// transport tiers, and one background region per tier.
//
// # Placement
//
// Nodes are grouped by rank into tiers. The primary coordinate of a node is a
// strict function of its rank:
//
//	x = Margin + rank × ColumnSpacing
//
// The within-tier order comes from an [ordering.Orderer] (barycentric by
// default), which only decides the sequence, never the column. Each tier is
// centered vertically within the tallest tier, below a fixed band
// ([Options.TierLabelMargin]) reserved for the tier label.
//
// With [DirectionTB] the whole diagram is transposed after placement: tiers
// become rows and flow runs top to bottom.
//
// # Edges
//
// Each edge gets a flow rate (amount / window in batch mode, the amount itself
// in rate mode) and the smallest belt or pipe tier that carries it. An edge
// whose rate exceeds the largest tier is flagged Overloaded; its rate is
// reported as is, never clamped. Attachment handles follow the vertical
// relation between the two nodes:
//
//   - same level (within [Options.SameLevelThreshold]): right → left
//   - target below: bottom → top
//   - target above: top → bottom
//
// # Summary
//
// [Layout.Summary] aggregates node, edge and overload counts, raw resource
// totals, buildings per type and, in batch mode, the bottleneck extractor
// whose mining time estimates the completion time of the whole chain.
package layout

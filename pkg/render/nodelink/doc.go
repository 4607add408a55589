// Package nodelink renders production chains as Graphviz node-link diagrams.
//
// # Overview
//
// This is the alternative to the tiered SVG diagram for cases where Graphviz
// output is wanted: a DOT file to post-process, or a quick PNG. Nodes are
// grouped into one rank=same subgraph per tier, so Graphviz keeps the tier
// columns computed by the layout, and edges carry the same flow labels.
//
// # Usage
//
// Convert a layout to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// PNG is rendered by Graphviz directly; PDF goes through [render.ToPDF]:
//
//	png, err := nodelink.RenderPNG(ctx, dot)
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//
// # Options
//
//   - Detailed: node labels include rank, rate and the miner setting
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
// PDF conversion requires librsvg (rsvg-convert).
//
// [render.ToPDF]: github.com/matzehuels/prodgraph/pkg/render.ToPDF
package nodelink

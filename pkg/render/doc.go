// Package render turns positioned production diagrams into output formats.
//
// # Overview
//
// Rendering is the last pipeline stage. It never changes positions: every
// coordinate comes from [layout.Build]. Two renderers are provided:
//
//   - [diagram]: the tiered production diagram as standalone SVG, with tier
//     backgrounds, machine counts and flow labels
//   - [nodelink]: a Graphviz rendition of the same chain (DOT, SVG, PNG)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg := diagram.RenderSVG(l)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [layout.Build]: github.com/matzehuels/prodgraph/pkg/layout.Build
// [diagram]: github.com/matzehuels/prodgraph/pkg/render/diagram
// [nodelink]: github.com/matzehuels/prodgraph/pkg/render/nodelink
package render

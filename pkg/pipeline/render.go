package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/prodgraph/pkg/layout"
	"github.com/matzehuels/prodgraph/pkg/render"
	"github.com/matzehuels/prodgraph/pkg/render/diagram"
	"github.com/matzehuels/prodgraph/pkg/render/nodelink"
)

// PNGScale is the scale factor for PNG output of the SVG diagram.
const PNGScale = 2.0

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if opts.IsNodelink() {
		return renderNodelink(ctx, l, opts)
	}
	return renderDiagram(ctx, l, opts)
}

// renderDiagram generates outputs of the tiered SVG diagram.
func renderDiagram(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, error) {
	var svg []byte
	svgFor := func() []byte {
		if svg == nil {
			svg = diagram.RenderSVG(l, buildSVGOptions(opts)...)
		}
		return svg
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svgFor()
		case FormatPNG:
			data, err = render.ToPNG(svgFor(), PNGScale)
		case FormatPDF:
			data, err = render.ToPDF(svgFor())
		case FormatJSON:
			data, err = json.Marshal(l)
		case FormatDOT:
			data = []byte(nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed}))
		default:
			return nil, fmt.Errorf("unsupported diagram format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderNodelink generates Graphviz outputs.
func renderNodelink(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatJSON:
			data, err = json.Marshal(l)
		case FormatDOT:
			data = []byte(dot)
		default:
			return nil, fmt.Errorf("unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// buildSVGOptions builds diagram rendering options.
func buildSVGOptions(opts Options) []diagram.Option {
	var svgOpts []diagram.Option
	if theme, ok := diagram.ThemeByName(opts.Style); ok {
		svgOpts = append(svgOpts, diagram.WithTheme(theme))
	}
	if opts.Summary {
		svgOpts = append(svgOpts, diagram.WithSummary())
	}
	return svgOpts
}

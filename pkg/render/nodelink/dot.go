package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/prodgraph/pkg/chain"
	"github.com/matzehuels/prodgraph/pkg/i18n"
	"github.com/matzehuels/prodgraph/pkg/layout"
	"github.com/matzehuels/prodgraph/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds rank, rate and miner settings to node labels.
	// When false, labels show the item name and machine count.
	Detailed bool
}

// ToDOT converts a layout to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPNG] or [RenderPDF].
//
// Extractor nodes are drawn with a dashed outline, the bottleneck with a bold
// one, and overloaded edges in red.
func ToDOT(l *layout.Layout, opts Options) string {
	rankdir := "LR"
	if l.Direction == layout.DirectionTB {
		rankdir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11, color=\"#64748b\"];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.4;\n")

	byRank := map[int][]layout.Node{}
	for _, n := range l.Nodes {
		byRank[n.Rank] = append(byRank[n.Rank], n)
	}
	for _, t := range l.Tiers {
		fmt.Fprintf(&buf, "\n  subgraph cluster_tier%d {\n", t.Rank)
		fmt.Fprintf(&buf, "    label=%q;\n    style=filled;\n    color=%q;\n    rank=same;\n", t.Label, t.Color)
		for _, n := range byRank[t.Rank] {
			fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(nodeAttrs(l.Language, n, opts.Detailed), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		attrs := []string{fmt.Sprintf("label=%q", e.Text)}
		if e.Overloaded {
			attrs = append(attrs, "color=\"#dc2626\"", "fontcolor=\"#dc2626\"", "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(lang string, n layout.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(lang, n, detailed))}
	if n.Kind == chain.KindExtractor {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=\"#fef3c7\"")
	}
	if n.IsBottleneck {
		attrs = append(attrs, "penwidth=3", "color=\"#ea580c\"")
	}
	return attrs
}

func nodeLabel(lang string, n layout.Node, detailed bool) string {
	lines := []string{
		n.Name,
		i18n.Sprintf(lang, i18n.MsgMachines, n.Machines.Rounded, i18n.Building(lang, n.Building)),
	}
	if detailed {
		lines = append(lines,
			fmt.Sprintf("rank: %d", n.Rank),
			i18n.Sprintf(lang, i18n.MsgRatePerMinute, layout.FormatAmount(lang, n.Rate)))
		if n.Miner != nil {
			lines = append(lines, n.Miner.String())
		}
	}
	return strings.Join(lines, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based svg header with a pixel one
// anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

package diagram

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/prodgraph/pkg/chain"
	"github.com/matzehuels/prodgraph/pkg/i18n"
	"github.com/matzehuels/prodgraph/pkg/layout"
)

const diagramCSS = `
    .node rect.card { transition: stroke-width 0.15s ease; }
    .node:hover rect.card { stroke-width: 3; }
    .edge { fill: none; stroke-width: 2; }
    .edge.overloaded { stroke-width: 3; stroke-dasharray: 6 4; }
    text { font-family: "Inter", "Helvetica Neue", Arial, sans-serif; }`

const (
	nodeRadius     = 8.0
	accentWidth    = 6.0
	minControl     = 40.0
	summaryLine    = 20.0
	summaryPadding = 16.0
)

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	theme   Theme
	summary bool
}

// WithTheme selects the color theme.
func WithTheme(t Theme) Option { return func(r *renderer) { r.theme = t } }

// WithSummary appends a panel with node counts, bottleneck, raw resources and
// buildings below the diagram.
func WithSummary() Option { return func(r *renderer) { r.summary = true } }

// RenderSVG renders l as a standalone SVG document.
func RenderSVG(l *layout.Layout, opts ...Option) []byte {
	r := renderer{theme: Light}
	for _, opt := range opts {
		opt(&r)
	}

	var lines []string
	if r.summary {
		lines = summaryLines(l)
	}
	height := l.Height
	if len(lines) > 0 {
		height += float64(len(lines))*summaryLine + 2*summaryPadding
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, height, l.Width, height)
	r.renderDefs(&buf)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.theme.Background)

	buf.WriteString("  <g class=\"tiers\">\n")
	for _, t := range l.Tiers {
		r.renderTier(&buf, t)
	}
	buf.WriteString("  </g>\n  <g class=\"edges\">\n")
	for _, e := range l.Edges {
		r.renderEdge(&buf, l, e)
	}
	buf.WriteString("  </g>\n  <g class=\"nodes\">\n")
	for _, n := range l.Nodes {
		r.renderNode(&buf, l.Language, n)
	}
	buf.WriteString("  </g>\n")

	if len(lines) > 0 {
		r.renderSummary(&buf, l.Height, lines)
	}
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", diagramCSS)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	for _, m := range []struct{ id, color string }{{"arrow", r.theme.Edge}, {"arrow-over", r.theme.Overloaded}} {
		fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">`+
			`<path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/></marker>`+"\n", m.id, m.color)
	}
	buf.WriteString("  </defs>\n")
}

func (r *renderer) renderTier(buf *bytes.Buffer, t layout.Tier) {
	fmt.Fprintf(buf, `    <rect class="tier" data-rank="%d" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="12" fill="%s" fill-opacity="%.2f"/>`+"\n",
		t.Rank, t.X, t.Y, t.Width, t.Height, t.Color, r.theme.TierOpacity)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.0f" font-weight="600" fill="%s">%s</text>`+"\n",
		t.X+textPadding, t.Y+22, bodyFontSize+1, r.theme.MutedText, escapeXML(t.Label))
}

func (r *renderer) renderNode(buf *bytes.Buffer, lang string, n layout.Node) {
	classes := []string{"node", string(n.Kind)}
	stroke, strokeWidth := r.theme.NodeStroke, 1.5
	if n.IsBottleneck {
		classes = append(classes, "bottleneck")
		stroke, strokeWidth = r.theme.Bottleneck, 3
	}

	fmt.Fprintf(buf, `    <g id="node-%s" class="%s" data-key="%s">`+"\n", n.ID, strings.Join(classes, " "), escapeXML(n.Key))
	fmt.Fprintf(buf, `      <rect class="card" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
		n.X, n.Y, n.Width, n.Height, nodeRadius, r.theme.NodeFill, stroke, strokeWidth)
	if n.Kind == chain.KindExtractor {
		fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			n.X, n.Y+nodeRadius, accentWidth, n.Height-2*nodeRadius, r.theme.Extractor)
	}

	x := n.X + textPadding + accentWidth
	y := n.Y + textPadding + titleFontSize
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.0f" font-weight="700" fill="%s">%s</text>`+"\n",
		x, y, titleFontSize, r.theme.Text, escapeXML(truncate(n.Name, n.Width-accentWidth, titleFontSize)))

	y += bodyFontSize + 8
	machines := i18n.Sprintf(lang, i18n.MsgMachines, n.Machines.Rounded, i18n.Building(lang, n.Building))
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.0f" fill="%s">%s</text>`+"\n",
		x, y, bodyFontSize, r.theme.MutedText, escapeXML(truncate(machines, n.Width-accentWidth, bodyFontSize)))

	y += bodyFontSize + 6
	detail := i18n.Sprintf(lang, i18n.MsgRatePerMinute, layout.FormatAmount(lang, n.Rate))
	if n.Miner != nil {
		detail += " · " + n.Miner.String()
	}
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.0f" fill="%s">%s</text>`+"\n",
		x, y, bodyFontSize, r.theme.MutedText, escapeXML(truncate(detail, n.Width-accentWidth, bodyFontSize)))
	buf.WriteString("    </g>\n")
}

func (r *renderer) renderEdge(buf *bytes.Buffer, l *layout.Layout, e layout.Edge) {
	src, okS := l.Node(e.From)
	dst, okD := l.Node(e.To)
	if !okS || !okD {
		return
	}

	x1, y1 := anchor(*src, e.SourceHandle)
	x2, y2 := anchor(*dst, e.TargetHandle)
	off := math.Max(minControl, math.Hypot(x2-x1, y2-y1)/2)
	dx1, dy1 := direction(e.SourceHandle)
	dx2, dy2 := direction(e.TargetHandle)
	c1x, c1y := x1+dx1*off, y1+dy1*off
	c2x, c2y := x2+dx2*off, y2+dy2*off

	color, marker, class := r.theme.Edge, "arrow", "edge"
	if e.Overloaded {
		color, marker, class = r.theme.Overloaded, "arrow-over", "edge overloaded"
	}
	fmt.Fprintf(buf, `    <path id="edge-%s" class="%s" d="M %.1f %.1f C %.1f %.1f, %.1f %.1f, %.1f %.1f" stroke="%s" marker-end="url(#%s)"/>`+"\n",
		e.ID, class, x1, y1, c1x, c1y, c2x, c2y, x2, y2, color, marker)

	// Label at the curve midpoint (t = 0.5).
	mx := (x1 + 3*c1x + 3*c2x + x2) / 8
	my := (y1 + 3*c1y + 3*c2y + y2) / 8
	w := textWidth(e.Text, edgeFontSize) + 8
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s" fill-opacity="0.85"/>`+"\n",
		mx-w/2, my-edgeFontSize, w, edgeFontSize+6, r.theme.Background)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.0f" text-anchor="middle" fill="%s">%s</text>`+"\n",
		mx, my, edgeFontSize, color, escapeXML(e.Text))
}

// anchor returns the attachment point of a handle on n.
func anchor(n layout.Node, h layout.Handle) (float64, float64) {
	switch h {
	case layout.HandleLeft:
		return n.X, n.CenterY()
	case layout.HandleTop:
		return n.CenterX(), n.Y
	case layout.HandleBottom:
		return n.CenterX(), n.Y + n.Height
	default:
		return n.X + n.Width, n.CenterY()
	}
}

// direction returns the outward unit vector of a handle.
func direction(h layout.Handle) (float64, float64) {
	switch h {
	case layout.HandleLeft:
		return -1, 0
	case layout.HandleTop:
		return 0, -1
	case layout.HandleBottom:
		return 0, 1
	default:
		return 1, 0
	}
}

func summaryLines(l *layout.Layout) []string {
	lang, s := l.Language, l.Summary
	lines := []string{i18n.Sprintf(lang, i18n.MsgNodesEdges, s.Nodes, s.Edges)}
	if s.Overloaded > 0 {
		lines = append(lines, i18n.Sprintf(lang, i18n.MsgOverloadedEdge, s.Overloaded))
	}
	if b := s.Bottleneck; b != nil {
		lines = append(lines, i18n.Sprintf(lang, i18n.MsgBottleneck, b.Name)+" · "+i18n.Sprintf(lang, i18n.MsgCompletion, b.Minutes))
	}
	if len(s.Totals) > 0 {
		names := make(map[string]string, len(l.Nodes))
		for _, n := range l.Nodes {
			names[n.ItemID] = n.Name
		}
		parts := make([]string, len(s.Totals))
		for i, t := range s.Totals {
			parts[i] = names[t.ItemID] + " " + layout.FormatAmount(lang, t.Amount)
		}
		lines = append(lines, i18n.Sprintf(lang, i18n.MsgRawResources)+": "+strings.Join(parts, ", "))
	}
	if len(s.Buildings) > 0 {
		parts := make([]string, len(s.Buildings))
		for i, b := range s.Buildings {
			parts[i] = i18n.Sprintf(lang, i18n.MsgMachines, b.Count, i18n.Building(lang, b.Building))
		}
		lines = append(lines, strings.Join(parts, ", "))
	}
	return lines
}

func (r *renderer) renderSummary(buf *bytes.Buffer, top float64, lines []string) {
	buf.WriteString("  <g class=\"summary\">\n")
	y := top + summaryPadding
	for _, line := range lines {
		y += summaryLine
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.0f" fill="%s">%s</text>`+"\n",
			summaryPadding*2.5, y-6, bodyFontSize+1, r.theme.Text, escapeXML(line))
	}
	buf.WriteString("  </g>\n")
}

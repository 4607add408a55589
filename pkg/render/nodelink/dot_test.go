package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/prodgraph/pkg/catalog"
	"github.com/matzehuels/prodgraph/pkg/chain"
	"github.com/matzehuels/prodgraph/pkg/layout"
)

func ironPlate(t *testing.T, amount float64, mode chain.Mode, dir layout.Direction) *layout.Layout {
	t.Helper()
	cat := catalog.Default()
	l, err := layout.Build(chain.Resolve(cat, "iron-plate", amount, mode), layout.Options{Catalog: cat, Direction: dir})
	require.NoError(t, err)
	return l
}

func TestToDOT(t *testing.T) {
	l := ironPlate(t, 100, chain.ModeBatch, layout.DirectionLR)
	dot := ToDOT(l, Options{})

	assert.True(t, strings.HasPrefix(dot, "digraph G {\n"))
	assert.Contains(t, dot, "rankdir=LR;")
	assert.Equal(t, len(l.Tiers), strings.Count(dot, "subgraph cluster_tier"))
	assert.Equal(t, len(l.Edges), strings.Count(dot, " -> "))
	assert.Contains(t, dot, `"n2" -> "n1"`)
	assert.Contains(t, dot, "Iron Plate")
	assert.Contains(t, dot, "dashed", "extractors are dashed")
	assert.Contains(t, dot, "penwidth=3", "bottleneck is bold")
	assert.NotContains(t, dot, "rank: ")
}

func TestToDOTDetailed(t *testing.T) {
	l := ironPlate(t, 100, chain.ModeBatch, layout.DirectionTB)
	dot := ToDOT(l, Options{Detailed: true})
	assert.Contains(t, dot, "rankdir=TB;")
	assert.Contains(t, dot, `rank: 0`)
	assert.Contains(t, dot, "Mk.1:normal")
}

func TestToDOTOverloaded(t *testing.T) {
	l := ironPlate(t, 5000, chain.ModeRate, layout.DirectionLR)
	dot := ToDOT(l, Options{})
	assert.Equal(t, l.Summary.Overloaded, strings.Count(dot, "penwidth=2"))
	assert.Contains(t, dot, "LIMIT")
}

func TestRenderSVG(t *testing.T) {
	l := ironPlate(t, 100, chain.ModeBatch, layout.DirectionLR)
	svg, err := RenderSVG(context.Background(), ToDOT(l, Options{}))
	require.NoError(t, err)
	assert.Contains(t, string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)
	assert.Contains(t, string(svg), "Iron Plate")
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	assert.Equal(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`, out)

	plain := []byte("<svg><g/></svg>")
	assert.Equal(t, plain, normalizeViewBox(plain))
}

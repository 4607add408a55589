package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/prodgraph/pkg/catalog"
	"github.com/matzehuels/prodgraph/pkg/chain"
	"github.com/matzehuels/prodgraph/pkg/i18n"
	"github.com/matzehuels/prodgraph/pkg/layout"
)

var (
	styleExtractor = lipgloss.NewStyle().Foreground(colorYellow)
	styleHeader    = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleOverload  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// chainTree renders ch as a tree rooted at the target, one line per node:
// name, amount, building and (with keys) the settings key.
func chainTree(ch *chain.Chain, cat *catalog.Catalog, lang string, keys bool) string {
	root := ch.Root()
	if root == nil {
		return ""
	}
	t := subtree(ch, cat, lang, keys, root)
	t.Enumerator(tree.RoundedEnumerator).EnumeratorStyle(StyleDim)
	return t.String()
}

func subtree(ch *chain.Chain, cat *catalog.Catalog, lang string, keys bool, n *chain.Node) *tree.Tree {
	t := tree.Root(nodeLine(ch, cat, lang, keys, n))
	for _, e := range ch.Inputs(n.ID) {
		child, ok := ch.Node(e.From)
		if !ok {
			continue
		}
		if ch.Inputs(child.ID) == nil {
			t.Child(nodeLine(ch, cat, lang, keys, child))
			continue
		}
		t.Child(subtree(ch, cat, lang, keys, child))
	}
	return t
}

func nodeLine(ch *chain.Chain, cat *catalog.Catalog, lang string, keys bool, n *chain.Node) string {
	name := StyleHighlight.Render(cat.Name(n.ItemID, lang))
	if n.IsExtractor() {
		name = styleExtractor.Render(cat.Name(n.ItemID, lang))
	}
	unit := ""
	if ch.Mode == chain.ModeRate {
		unit = "/min"
	}
	line := fmt.Sprintf("%s %s", name, StyleNumber.Render(layout.FormatAmount(lang, n.Amount)+unit))
	if n.Building != "" {
		line += StyleDim.Render(" · " + i18n.Building(lang, n.Building))
	}
	if keys {
		line += StyleDim.Render("  [" + n.Key + "]")
	}
	return line
}

// itemsTable renders search results as a table.
func itemsTable(matches []catalog.Match, cat *catalog.Catalog, lang string) string {
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		kind := "recipe"
		if _, ok := cat.Recipe(m.Item.ID); !ok {
			kind = "raw"
		}
		rows = append(rows, []string{m.Item.ID, m.Item.Name(lang), string(m.Item.Category), kind})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Category", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 0 {
				return StyleHighlight
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// printLayoutSummary prints machine and resource totals for a layout.
func printLayoutSummary(l *layout.Layout, cat *catalog.Catalog) {
	s := l.Summary
	printKeyValue("Nodes", fmt.Sprintf("%d", s.Nodes))
	if l.Window > 0 {
		printKeyValue("Window", layout.FormatAmount(l.Language, l.Window)+" min")
	}

	parts := make([]string, 0, len(s.Buildings))
	for _, b := range s.Buildings {
		parts = append(parts, fmt.Sprintf("%d× %s", b.Count, i18n.Building(l.Language, b.Building)))
	}
	if len(parts) > 0 {
		printKeyValue("Buildings", strings.Join(parts, ", "))
	}

	parts = parts[:0]
	for _, t := range s.Totals {
		parts = append(parts, layout.FormatAmount(l.Language, t.Amount)+" "+cat.Name(t.ItemID, l.Language))
	}
	if len(parts) > 0 {
		printKeyValue("Resources", strings.Join(parts, ", "))
	}

	if s.Bottleneck != nil {
		printKeyValue("Bottleneck", fmt.Sprintf("%s (%s min)", s.Bottleneck.Name, layout.FormatAmount(l.Language, s.Bottleneck.Minutes)))
	}
	if s.Overloaded > 0 {
		printKeyValue("Overloaded", styleOverload.Render(fmt.Sprintf("%d edges exceed the fastest belt or pipe", s.Overloaded)))
	}
}

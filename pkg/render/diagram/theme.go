package diagram

import "sort"

// Theme holds the colors of a rendering.
type Theme struct {
	Name        string
	Background  string
	NodeFill    string
	NodeStroke  string
	Extractor   string // accent stripe of extractor nodes
	Text        string
	MutedText   string
	Edge        string
	Overloaded  string
	Bottleneck  string
	TierOpacity float64
}

// Built-in themes.
var (
	Light = Theme{
		Name:        "light",
		Background:  "#ffffff",
		NodeFill:    "#ffffff",
		NodeStroke:  "#334155",
		Extractor:   "#d97706",
		Text:        "#0f172a",
		MutedText:   "#475569",
		Edge:        "#64748b",
		Overloaded:  "#dc2626",
		Bottleneck:  "#ea580c",
		TierOpacity: 1,
	}
	Dark = Theme{
		Name:        "dark",
		Background:  "#0f172a",
		NodeFill:    "#1e293b",
		NodeStroke:  "#94a3b8",
		Extractor:   "#f59e0b",
		Text:        "#f1f5f9",
		MutedText:   "#cbd5e1",
		Edge:        "#94a3b8",
		Overloaded:  "#f87171",
		Bottleneck:  "#fb923c",
		TierOpacity: 0.12,
	}
)

var themes = map[string]Theme{
	Light.Name: Light,
	Dark.Name:  Dark,
}

// DefaultTheme is the theme used when none is given.
const DefaultTheme = "light"

// ThemeByName returns a built-in theme.
func ThemeByName(name string) (Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

// ThemeNames lists the built-in themes in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Package diagram renders a production layout as standalone SVG.
//
// The output mirrors the interactive front-end: one tinted background per
// tier with its label, a card per node showing the item name, building and
// machine count, and curved edges attached at the handles chosen by the
// layout, each carrying its flow label ("150/min · Mk.3"). Edges whose rate
// exceeds every transport tier are drawn in the theme's warning color.
//
//	svg := diagram.RenderSVG(l, diagram.WithTheme(diagram.Dark), diagram.WithSummary())
//
// All text is taken from the layout, which is already localized, except the
// building names and summary lines, which are translated through package i18n
// using the layout's language.
package diagram

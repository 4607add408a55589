package diagram

import (
	"bytes"
	"encoding/xml"
	"unicode/utf8"
)

const (
	titleFontSize = 15.0
	bodyFontSize  = 12.0
	edgeFontSize  = 11.0
	charWidth     = 0.58 // average glyph width relative to font size
	textPadding   = 10.0
)

// escapeXML escapes s for use in SVG text and attribute values.
func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// truncate shortens label to fit width at the given font size.
func truncate(label string, width, fontSize float64) string {
	maxChars := int((width - 2*textPadding) / (fontSize * charWidth))
	if maxChars < 3 {
		maxChars = 3
	}
	if utf8.RuneCountInString(label) <= maxChars {
		return label
	}
	runes := []rune(label)
	return string(runes[:maxChars-1]) + "…"
}

// textWidth estimates the rendered width of s.
func textWidth(s string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(s)) * fontSize * charWidth
}

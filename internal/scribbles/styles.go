package scribbles

import (
	"errors"
	"fmt"
)

// Style is a closed enum of supported scribble styles.
type Style string

const (
	StyleCrayon      Style = "crayon"
	StyleMarker      Style = "marker"
	StylePencil      Style = "pencil"
	StyleFingerPaint Style = "finger_paint"
)

// ErrUnknownStyle is returned when a request names a style outside the enum.
var ErrUnknownStyle = errors.New("unknown scribble style")

// ParseStyle validates a raw style string.
func ParseStyle(raw string) (Style, error) {
	switch Style(raw) {
	case StyleCrayon, StyleMarker, StylePencil, StyleFingerPaint:
		return Style(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, raw)
	}
}

// Styles returns all supported styles in declaration order.
func Styles() []Style {
	return []Style{StyleCrayon, StyleMarker, StylePencil, StyleFingerPaint}
}

var stylePalettes = map[Style][]string{
	StyleCrayon:      {"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7", "#DDA0DD"},
	StyleMarker:      {"#FF1744", "#00E676", "#2196F3", "#FF9800", "#9C27B0", "#FFEB3B"},
	StylePencil:      {"#666666", "#888888", "#555555", "#777777"},
	StyleFingerPaint: {"#FF5722", "#E91E63", "#9C27B0", "#673AB7", "#3F51B5", "#2196F3"},
}

var styleWidths = map[Style]float64{
	StyleCrayon:      8,
	StyleMarker:      6,
	StylePencil:      2,
	StyleFingerPaint: 12,
}

var stylePromptClauses = map[Style]string{
	StyleCrayon:      "Thick, waxy crayon marks with irregular pressure",
	StyleMarker:      "Bold marker strokes with some bleeding effects",
	StylePencil:      "Light pencil sketches with varying pressure",
	StyleFingerPaint: "Smudgy finger painting with organic shapes",
}

// Palette returns the hex colors associated with a style.
func (s Style) Palette() []string {
	if p, ok := stylePalettes[s]; ok {
		return p
	}
	return stylePalettes[StyleCrayon]
}

// StrokeWidth returns the stroke width in pixels for a style.
func (s Style) StrokeWidth() float64 {
	if w, ok := styleWidths[s]; ok {
		return w
	}
	return 6
}

// PromptClause returns the style description used in the generation prompt.
func (s Style) PromptClause() string {
	return stylePromptClauses[s]
}

// Package textflow lays raw article text into typed display lines:
// word-wrapped body text, headings, blank separators, and figure/equation
// placeholders recognized from an embedded marker mini-format.
package textflow

// LineType classifies a display line.
type LineType string

const (
	LineBody    LineType = "body"
	LineHeading LineType = "heading"
	LineBlank   LineType = "blank"
	LineFigure  LineType = "figure"
)

// Line is one display row of laid-out article text. Lines are immutable
// once produced; a layout pass always rebuilds them from scratch.
type Line struct {
	Text string   `json:"text"`
	Type LineType `json:"type"`

	// Heading fields.
	Level int `json:"level,omitempty"`

	// Figure / equation fields.
	FigureID      string `json:"figure_id,omitempty"`
	FigureSrc     string `json:"figure_src,omitempty"`
	FigureCaption string `json:"figure_caption,omitempty"`
	IsEquation    bool   `json:"is_equation,omitempty"`
	EquationIndex int    `json:"equation_index,omitempty"`
}

func blankLine() Line {
	return Line{Type: LineBlank}
}

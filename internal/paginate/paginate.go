// Package paginate groups laid-out lines into pages under a line budget and
// builds the chunk sequences the playback scheduler advances through.
// Figures and equations reserve extra span so long captions are never
// clipped against the bottom of the viewport.
package paginate

import (
	"math"

	"github.com/dfarrow0/readpace/internal/textflow"
	"github.com/mattn/go-runewidth"
)

// Page holds the lines displayed together plus one chunk list per line.
type Page struct {
	Lines      []textflow.Line `json:"lines"`
	LineChunks [][]Chunk       `json:"line_chunks"`
}

// Options controls pagination.
type Options struct {
	LinesPerPage    int     // page line budget
	FigureSpanRatio float64 // share of the budget a figure image occupies
	FigureSpanFloor int     // minimum figure span in lines
	CaptionExtraCap int     // cap on extra span granted for long captions
	LineWidth       int     // display width used to estimate caption lines
}

// DefaultOptions returns the pagination defaults.
func DefaultOptions() Options {
	return Options{
		LinesPerPage:    20,
		FigureSpanRatio: 0.35,
		FigureSpanFloor: 4,
		CaptionExtraCap: 3,
		LineWidth:       textflow.DefaultWidth,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.LinesPerPage <= 0 {
		o.LinesPerPage = d.LinesPerPage
	}
	if o.FigureSpanRatio <= 0 {
		o.FigureSpanRatio = d.FigureSpanRatio
	}
	if o.FigureSpanFloor <= 0 {
		o.FigureSpanFloor = d.FigureSpanFloor
	}
	if o.CaptionExtraCap < 0 {
		o.CaptionExtraCap = d.CaptionExtraCap
	}
	if o.LineWidth <= 0 {
		o.LineWidth = d.LineWidth
	}
	return o
}

// Paginate bin-packs lines greedily under the page budget. The line that
// would overflow a page always starts a fresh one; a page may exceed the
// budget only when it would otherwise be empty, so a single over-budget line
// still gets its own page rather than an infinite one.
func Paginate(lines []textflow.Line, opts Options) []Page {
	opts = opts.withDefaults()

	var pages []Page
	var current []textflow.Line
	used := 0

	for _, line := range lines {
		span := lineSpan(line, opts)
		if len(current) > 0 && used+span > opts.LinesPerPage {
			pages = append(pages, Page{Lines: current})
			current, used = nil, 0
		}
		current = append(current, line)
		used += span
	}
	if len(current) > 0 {
		pages = append(pages, Page{Lines: current})
	}
	return pages
}

// lineSpan is the number of budget lines a display line consumes.
func lineSpan(line textflow.Line, opts Options) int {
	if line.Type != textflow.LineFigure {
		return 1
	}
	if line.IsEquation {
		return 2
	}
	base := int(math.Round(float64(opts.LinesPerPage) * opts.FigureSpanRatio))
	if base < opts.FigureSpanFloor {
		base = opts.FigureSpanFloor
	}
	extra := estimateCaptionLines(line.Text, opts.LineWidth) - 1
	if extra < 0 {
		extra = 0
	}
	if extra > opts.CaptionExtraCap {
		extra = opts.CaptionExtraCap
	}
	if base+extra < 1 {
		return 1
	}
	return base + extra
}

func estimateCaptionLines(caption string, width int) int {
	w := runewidth.StringWidth(caption)
	if w == 0 {
		return 1
	}
	return (w + width - 1) / width
}

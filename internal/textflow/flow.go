package textflow

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultWidth is the target line width, in display cells.
const DefaultWidth = 80

// Options controls a layout pass.
type Options struct {
	Width int // target line width; DefaultWidth when <= 0

	// AssetBaseURL is prepended to relative figure/equation image paths.
	AssetBaseURL string
	// SourcePath is the path of the source document; its base name keys
	// the per-chapter equation image directory.
	SourcePath string
}

var (
	blockSplitRE = regexp.MustCompile(`\n\s*\n`)
	headingRE    = regexp.MustCompile(`^(#{1,6}) (.*)$`)
	figureIDRE   = regexp.MustCompile(`(?i)^\[FIGURE:([^\]]+)\]$`)
	figureURLRE  = regexp.MustCompile(`(?i)^\[FIGURE_URL:([^\]]+)\]$`)
	captionRE    = regexp.MustCompile(`(?i)^\[FIGURE +(.+)\]$`)
	eqnImageRE   = regexp.MustCompile(`(?i)^\[EQN_IMAGE:(\d+)\]\s*(?:\[([^\]]+)\])?$`)
	eqnLabelRE   = regexp.MustCompile(`(?i)^\[EQN_LABEL:(.+)\]$`)
)

// Flow normalizes raw article text and lays it into typed lines: paragraphs
// word-wrapped at the target width, markdown-style headings, figure and
// equation markers, and single blank separators between blocks. It is total:
// malformed markers degrade to plain wrapped text, and empty input yields an
// empty slice.
func Flow(text string, opts Options) []Line {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}

	text = NormalizeExtracted(text)
	blocks := splitBlocks(text)

	var lines []Line
	for i := 0; i < len(blocks); i++ {
		block := blocks[i]

		if m := headingRE.FindStringSubmatch(firstLineOf(block)); m != nil {
			appendBlank(&lines)
			lines = append(lines, Line{
				Text:  strings.TrimSpace(m[2]),
				Type:  LineHeading,
				Level: len(m[1]),
			})
			lines = append(lines, blankLine())
			if rest := strings.TrimSpace(restAfterFirstLine(block)); rest != "" {
				lines = append(lines, wrapParagraph(rest, opts.Width)...)
			}
			continue
		}

		if line, ok := matchFigure(block, blocks, &i, opts); ok {
			appendBlank(&lines)
			lines = append(lines, line)
			continue
		}

		if line, ok := matchEquation(block, blocks, &i, opts); ok {
			appendBlank(&lines)
			lines = append(lines, line)
			continue
		}

		appendBlank(&lines)
		lines = append(lines, wrapParagraph(block, opts.Width)...)
	}
	return lines
}

// splitBlocks breaks text on blank-line boundaries, dropping empty blocks.
func splitBlocks(text string) []string {
	parts := blockSplitRE.Split(text, -1)
	blocks := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			blocks = append(blocks, p)
		}
	}
	return blocks
}

// appendBlank inserts a single blank separator; adjacent blanks never stack.
func appendBlank(lines *[]Line) {
	if n := len(*lines); n > 0 && (*lines)[n-1].Type != LineBlank {
		*lines = append(*lines, blankLine())
	}
}

func matchFigure(block string, blocks []string, i *int, opts Options) (Line, bool) {
	var id, src string
	if m := figureIDRE.FindStringSubmatch(block); m != nil {
		id = strings.TrimSpace(m[1])
		src = resolveAsset(opts.AssetBaseURL, "images/"+id+".jpg")
	} else if m := figureURLRE.FindStringSubmatch(block); m != nil {
		src = strings.TrimSpace(m[1])
	} else {
		return Line{}, false
	}

	caption := ""
	if *i+1 < len(blocks) {
		if m := captionRE.FindStringSubmatch(blocks[*i+1]); m != nil {
			caption = strings.TrimSpace(m[1])
			*i++ // caption block consumed
		}
	}

	display := caption
	if display == "" {
		if id != "" {
			display = "Figure " + id
		} else {
			display = "Figure"
		}
	}
	return Line{
		Text:          display,
		Type:          LineFigure,
		FigureID:      id,
		FigureSrc:     src,
		FigureCaption: caption,
	}, true
}

func matchEquation(block string, blocks []string, i *int, opts Options) (Line, bool) {
	m := eqnImageRE.FindStringSubmatch(block)
	if m == nil {
		return Line{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Line{}, false
	}

	label := strings.TrimSpace(m[2])
	if label == "" && *i+1 < len(blocks) {
		if lm := eqnLabelRE.FindStringSubmatch(blocks[*i+1]); lm != nil {
			label = strings.TrimSpace(lm[1])
			*i++ // label block consumed
		}
	}

	display := label
	if display == "" {
		display = fmt.Sprintf("Equation %d", n)
	}
	rel := fmt.Sprintf("equation-images/%s/eqn_%03d.jpg", chapterKey(opts.SourcePath), n)
	return Line{
		Text:          display,
		Type:          LineFigure,
		FigureSrc:     resolveAsset(opts.AssetBaseURL, rel),
		FigureCaption: label,
		IsEquation:    true,
		EquationIndex: n,
	}, true
}

// chapterKey derives the equation-image directory from the source document
// filename, e.g. "books/ch04.txt" -> "ch04".
func chapterKey(sourcePath string) string {
	base := filepath.Base(sourcePath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." {
		return "unknown"
	}
	return base
}

func resolveAsset(baseURL, rel string) string {
	if baseURL == "" {
		return rel
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + rel
}

// wrapParagraph collapses internal newlines to spaces and greedily wraps
// words at the target width. A single word wider than the target is emitted
// alone rather than split.
func wrapParagraph(block string, width int) []Line {
	words := strings.Fields(block)
	if len(words) == 0 {
		return nil
	}

	var lines []Line
	var cur strings.Builder
	curWidth := 0

	flush := func() {
		if cur.Len() > 0 {
			lines = append(lines, Line{Text: cur.String(), Type: LineBody})
			cur.Reset()
			curWidth = 0
		}
	}

	for _, w := range words {
		ww := runewidth.StringWidth(w)
		if curWidth == 0 {
			cur.WriteString(w)
			curWidth = ww
			continue
		}
		if curWidth+1+ww <= width {
			cur.WriteByte(' ')
			cur.WriteString(w)
			curWidth += 1 + ww
		} else {
			flush()
			cur.WriteString(w)
			curWidth = ww
		}
	}
	flush()
	return lines
}

func firstLineOf(block string) string {
	if idx := strings.IndexByte(block, '\n'); idx >= 0 {
		return block[:idx]
	}
	return block
}

func restAfterFirstLine(block string) string {
	if idx := strings.IndexByte(block, '\n'); idx >= 0 {
		return block[idx+1:]
	}
	return ""
}

package paginate

import (
	"strings"
	"unicode"

	"github.com/dfarrow0/readpace/internal/fixation"
	"github.com/dfarrow0/readpace/internal/textflow"
)

// Mode selects the unit the scheduler advances through.
type Mode string

const (
	// ModeLine paces one chunk per non-blank line.
	ModeLine Mode = "line"
	// ModeWord paces one chunk per word.
	ModeWord Mode = "word"
	// ModeRecall paces by line but blanks out figures, leaving nothing to
	// fixate on while the reader reconstructs the material.
	ModeRecall Mode = "recall"
)

// ParseMode maps a request string onto a Mode, defaulting to line pacing.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(s)) {
	case ModeWord:
		return ModeWord
	case ModeRecall:
		return ModeRecall
	default:
		return ModeLine
	}
}

// SaccadeRange addresses the characters a chunk covers within its line.
type SaccadeRange struct {
	PageIndex int `json:"page_index"`
	LineIndex int `json:"line_index"`
	StartChar int `json:"start_char"`
	EndChar   int `json:"end_char"`
}

// Chunk is the atomic unit of playback: one line or one word depending on
// mode, with the precomputed ORP the indicator rests on.
type Chunk struct {
	Text      string        `json:"text"`
	WordCount int           `json:"word_count"`
	ORPIndex  int           `json:"orp_index"`
	Saccade   *SaccadeRange `json:"saccade,omitempty"`
}

// Layout paginates lines and attaches per-line chunks in one pass.
func Layout(lines []textflow.Line, opts Options, mode Mode) []Page {
	pages := Paginate(lines, opts)
	AttachChunks(pages, mode)
	return pages
}

// AttachChunks fills LineChunks on every page: blank lines (and figure lines
// in recall mode, which are converted to blanks) get an empty list, other
// lines get one chunk per line or per word. Ranges within a line never
// overlap and cover every visible token.
func AttachChunks(pages []Page, mode Mode) {
	for pi := range pages {
		page := &pages[pi]
		page.LineChunks = make([][]Chunk, len(page.Lines))
		for li := range page.Lines {
			line := &page.Lines[li]
			if line.Type == textflow.LineBlank {
				page.LineChunks[li] = []Chunk{}
				continue
			}
			if mode == ModeRecall && line.Type == textflow.LineFigure {
				*line = textflow.Line{Type: textflow.LineBlank}
				page.LineChunks[li] = []Chunk{}
				continue
			}
			if mode == ModeWord && line.Type != textflow.LineFigure {
				page.LineChunks[li] = wordChunks(line.Text, pi, li)
				continue
			}
			page.LineChunks[li] = []Chunk{lineChunk(line.Text, pi, li)}
		}
	}
}

// Flatten produces the navigable chunk sequence across all pages, consumed
// by index-based progress tracking.
func Flatten(pages []Page) []Chunk {
	var chunks []Chunk
	for _, page := range pages {
		for _, lc := range page.LineChunks {
			chunks = append(chunks, lc...)
		}
	}
	return chunks
}

func lineChunk(text string, pageIdx, lineIdx int) Chunk {
	return Chunk{
		Text:      text,
		WordCount: len(strings.Fields(text)),
		ORPIndex:  fixation.ORP(text),
		Saccade: &SaccadeRange{
			PageIndex: pageIdx,
			LineIndex: lineIdx,
			StartChar: 0,
			EndChar:   len([]rune(text)),
		},
	}
}

func wordChunks(text string, pageIdx, lineIdx int) []Chunk {
	chunks := []Chunk{}
	start := -1
	var word []rune
	pos := 0
	flush := func(end int) {
		if start < 0 {
			return
		}
		w := string(word)
		chunks = append(chunks, Chunk{
			Text:      w,
			WordCount: 1,
			ORPIndex:  fixation.ORP(w),
			Saccade: &SaccadeRange{
				PageIndex: pageIdx,
				LineIndex: lineIdx,
				StartChar: start,
				EndChar:   end,
			},
		})
		start, word = -1, nil
	}
	for _, r := range text {
		if unicode.IsSpace(r) {
			flush(pos)
		} else {
			if start < 0 {
				start = pos
			}
			word = append(word, r)
		}
		pos++
	}
	flush(pos)
	return chunks
}

// Package fixation places simulated eye-stop offsets within a line of text,
// approximating how a skilled reader skips short and low-content words
// rather than landing on every one. All functions are pure and deterministic
// so the same offsets can key multiple independent animations.
package fixation

import (
	"math"
	"strings"
	"unicode"
)

// ORP returns the optimal reading position within a chunk of text: the
// relative rune offset where the eye ideally lands for fastest recognition.
// Short chunks pin to the first or second character; longer ones land 35% in,
// nudged left off any whitespace.
func ORP(text string) int {
	runes := []rune(text)
	n := len(runes)
	switch {
	case n <= 1:
		return 0
	case n <= 3:
		return 1
	}
	idx := int(float64(n) * 0.35)
	if idx >= n {
		idx = n - 1
	}
	for idx > 0 && unicode.IsSpace(runes[idx]) {
		idx--
	}
	return idx
}

// lengthPenalty is the cost of fixating a word of the given rune length.
// Long words carry information and are cheap to land on; very short words
// are expensive because a skilled reader would skip them.
func lengthPenalty(n int) float64 {
	switch {
	case n <= 1:
		return 5.0
	case n == 2:
		return 4.0
	case n == 3:
		return 2.5
	case n == 4:
		return 1.5
	case n == 5:
		return 0.5
	default:
		return 0.0
	}
}

// functionWords is a closed set of common articles, prepositions, pronouns
// and conjunctions that carry a fixation surcharge.
var functionWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"and": {}, "or": {}, "but": {}, "nor": {}, "so": {}, "yet": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"with": {}, "by": {}, "from": {}, "up": {}, "out": {}, "off": {}, "as": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"it": {}, "he": {}, "she": {}, "we": {}, "you": {}, "they": {},
	"his": {}, "her": {}, "its": {}, "our": {}, "their": {},
	"this": {}, "that": {}, "not": {},
}

const functionWordSurcharge = 1.25

// wordPenalty combines the length penalty with the function-word surcharge.
// The word is lower-cased and stripped to letters before the set lookup so
// punctuation-adjacent tokens like "The," still register.
func wordPenalty(word string) float64 {
	p := lengthPenalty(len([]rune(word)))
	var b strings.Builder
	for _, r := range word {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	if _, ok := functionWords[b.String()]; ok {
		p += functionWordSurcharge
	}
	return p
}

// skipScale maps the target saccade length to a penalty multiplier: larger
// saccades tolerate skipping more and cheaper function words.
func skipScale(saccadeLength int) float64 {
	t := (float64(saccadeLength) - 7) / 8
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return 0.8 + 0.4*t
}

type token struct {
	start int // rune offset into the line
	runes []rune
}

func (t token) orpPos() int {
	return t.start + ORP(string(t.runes))
}

func tokenize(text string) []token {
	var toks []token
	start := -1
	var cur []rune
	pos := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				toks = append(toks, token{start: start, runes: cur})
				start, cur = -1, nil
			}
		} else {
			if start < 0 {
				start = pos
			}
			cur = append(cur, r)
		}
		pos++
	}
	if start >= 0 {
		toks = append(toks, token{start: start, runes: cur})
	}
	return toks
}

// candidateWindow is how far past the saccade target a word's ORP may sit
// and still be considered in the primary scan.
const candidateWindow = 6

// LineFixations computes a strictly increasing sequence of rune offsets into
// lineText where the gaze indicator should rest, given the target saccade
// length in characters. An empty or all-whitespace line yields no fixations;
// any other line yields at least one.
func LineFixations(lineText string, saccadeLength int) []int {
	toks := tokenize(lineText)
	if len(toks) == 0 {
		return nil
	}
	if saccadeLength < 1 {
		saccadeLength = 1
	}
	scale := skipScale(saccadeLength)

	// A short leading word is skipped when anything follows it.
	last := 0
	if len(toks[0].runes) <= 3 && len(toks) > 1 {
		last = 1
	}
	lastPos := toks[last].orpPos()
	fixations := []int{lastPos}

	for last+1 < len(toks) {
		target := lastPos + saccadeLength
		windowMax := target + candidateWindow

		best := pickFixation(toks, last, target, scale, windowMax)
		if best < 0 {
			// Nothing within the window; scan all remaining words so the
			// walk always makes forward progress near the end of a line.
			best = pickFixation(toks, last, target, scale, math.MaxInt)
		}
		last = best
		lastPos = toks[best].orpPos()
		fixations = append(fixations, lastPos)
	}
	return fixations
}

// pickFixation scores every word after index last whose ORP lies at or below
// windowMax and returns the index of the cheapest, favoring the longer word
// on ties. Returns -1 when no word qualifies.
func pickFixation(toks []token, last, target int, scale float64, windowMax int) int {
	best := -1
	var bestCost float64
	for j := last + 1; j < len(toks); j++ {
		pos := toks[j].orpPos()
		if pos > windowMax {
			continue
		}
		cost := math.Abs(float64(pos-target)) + scale*wordPenalty(string(toks[j].runes))
		switch {
		case best < 0 || cost < bestCost:
			best, bestCost = j, cost
		case cost == bestCost && len(toks[j].runes) > len(toks[best].runes):
			best = j
		}
	}
	return best
}

package textflow

import (
	"strings"
	"unicode"
)

// NormalizeExtracted repairs run-together sentence boundaries left behind by
// text extraction: a sentence-ending '.', '!' or '?' immediately followed by
// an uppercase letter gets a separating space. A period preceded by an
// uppercase letter is left alone so abbreviations like "U.S.Army" survive
// untouched.
func NormalizeExtracted(text string) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i, r := range runes {
		b.WriteRune(r)
		if i+1 >= len(runes) || !unicode.IsUpper(runes[i+1]) {
			continue
		}
		switch r {
		case '!', '?':
			b.WriteRune(' ')
		case '.':
			if i > 0 && unicode.IsUpper(runes[i-1]) {
				continue // abbreviation pattern
			}
			b.WriteRune(' ')
		}
	}
	return b.String()
}

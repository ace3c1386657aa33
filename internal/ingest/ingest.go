// Package ingest flattens source documents into the plain marker text the
// layout engine consumes: markdown-style heading lines, paragraph blocks
// separated by blank lines, and [FIGURE_URL:...] / [FIGURE ...] marker
// blocks for embedded images.
package ingest

import (
	"fmt"
	"io"
	"strings"
)

// Flattener converts one source format into marker text.
type Flattener interface {
	Flatten(r io.Reader) (string, error)
}

// SupportedFormats lists the formats this service accepts.
var SupportedFormats = map[string]bool{
	"text":     true,
	"markdown": true,
	"html":     true,
}

// ForFormat returns the flattener for a format name. An empty name selects
// plain text.
func ForFormat(format string) (Flattener, error) {
	switch strings.ToLower(format) {
	case "", "text", "txt":
		return &TextFlattener{}, nil
	case "markdown", "md":
		return &MarkdownFlattener{}, nil
	case "html", "htm":
		return &HTMLFlattener{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// blockWriter accumulates blank-line-separated blocks.
type blockWriter struct {
	blocks []string
}

func (w *blockWriter) add(block string) {
	if block = strings.TrimSpace(block); block != "" {
		w.blocks = append(w.blocks, block)
	}
}

func (w *blockWriter) String() string {
	return strings.Join(w.blocks, "\n\n")
}

// figureBlocks renders an image reference as marker blocks.
func figureBlocks(w *blockWriter, src, caption string) {
	if src == "" {
		return
	}
	w.add("[FIGURE_URL:" + src + "]")
	if caption = strings.TrimSpace(caption); caption != "" {
		w.add("[FIGURE " + caption + "]")
	}
}

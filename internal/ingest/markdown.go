package ingest

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownFlattener renders markdown down to marker text using goldmark:
// headings become '#'-prefixed lines, block text becomes paragraphs, and
// images become figure marker blocks with their alt text as the caption.
type MarkdownFlattener struct{}

func (f *MarkdownFlattener) Flatten(r io.Reader) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var w blockWriter
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			level := node.Level
			if level > 6 {
				level = 6
			}
			title := string(node.Text(src))
			w.add(strings.Repeat("#", level) + " " + title)
		default:
			flattenBlock(n, src, &w)
		}
	}
	return w.String(), nil
}

// flattenBlock emits a block node's text, routing any embedded images out as
// their own figure marker blocks.
func flattenBlock(n ast.Node, src []byte, w *blockWriter) {
	var buf bytes.Buffer
	images := collectInline(n, src, &buf)
	w.add(buf.String())
	for _, img := range images {
		figureBlocks(w, img.src, img.caption)
	}
}

type imageRef struct {
	src     string
	caption string
}

// collectInline gathers the text content of a node, returning image
// references found along the way.
func collectInline(n ast.Node, src []byte, buf *bytes.Buffer) []imageRef {
	var images []imageRef

	if img, ok := n.(*ast.Image); ok {
		caption := string(img.Text(src))
		if caption == "" {
			caption = string(img.Title)
		}
		return []imageRef{{src: string(img.Destination), caption: caption}}
	}

	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return nil
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch child := c.(type) {
		case *ast.Text:
			buf.Write(child.Value(src))
			if child.HardLineBreak() || child.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		default:
			images = append(images, collectInline(c, src, buf)...)
		}
	}
	return images
}

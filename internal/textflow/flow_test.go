package textflow

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestFlow_EmptyInput(t *testing.T) {
	if lines := Flow("", Options{}); len(lines) != 0 {
		t.Errorf("expected no lines for empty input, got %d", len(lines))
	}
	if lines := Flow("   \n\n  ", Options{}); len(lines) != 0 {
		t.Errorf("expected no lines for whitespace input, got %d", len(lines))
	}
}

func TestFlow_ParagraphWrapping(t *testing.T) {
	text := strings.Repeat("alpha beta gamma ", 10)
	lines := Flow(text, Options{Width: 30})

	if len(lines) < 2 {
		t.Fatalf("expected multiple wrapped lines, got %d", len(lines))
	}
	var words []string
	for _, line := range lines {
		if line.Type != LineBody {
			t.Errorf("expected body line, got %s", line.Type)
		}
		if w := runewidth.StringWidth(line.Text); w > 30 {
			t.Errorf("line %q exceeds width: %d", line.Text, w)
		}
		words = append(words, strings.Fields(line.Text)...)
	}
	if got, want := len(words), 30; got != want {
		t.Errorf("expected %d words preserved, got %d", want, got)
	}
}

func TestFlow_OverlongWordEmittedAlone(t *testing.T) {
	lines := Flow("a incomprehensibilities z", Options{Width: 5})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %+v", len(lines), lines)
	}
	if lines[1].Text != "incomprehensibilities" {
		t.Errorf("expected the long word alone, got %q", lines[1].Text)
	}
}

func TestFlow_BlankSeparatorBetweenParagraphs(t *testing.T) {
	lines := Flow("Para one.\n\n\n\nPara two.", Options{Width: 40})
	want := []LineType{LineBody, LineBlank, LineBody}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %+v", len(want), len(lines), lines)
	}
	for i, typ := range want {
		if lines[i].Type != typ {
			t.Errorf("line %d: expected %s, got %s", i, typ, lines[i].Type)
		}
	}
}

func TestFlow_Heading(t *testing.T) {
	lines := Flow("## Getting Started\nSome intro text.\n\nNext paragraph.", Options{Width: 40})

	if lines[0].Type != LineHeading || lines[0].Level != 2 || lines[0].Text != "Getting Started" {
		t.Fatalf("unexpected heading line: %+v", lines[0])
	}
	if lines[1].Type != LineBlank {
		t.Errorf("expected blank after heading, got %s", lines[1].Type)
	}
	if lines[2].Type != LineBody || lines[2].Text != "Some intro text." {
		t.Errorf("expected heading block remainder wrapped, got %+v", lines[2])
	}
	// A heading mid-document gets a leading separator too.
	mid := Flow("Intro.\n\n# Title", Options{Width: 40})
	if mid[1].Type != LineBlank || mid[2].Type != LineHeading {
		t.Errorf("expected blank before mid-document heading, got %+v", mid)
	}
}

func TestFlow_SevenHashesIsNotAHeading(t *testing.T) {
	lines := Flow("####### too deep", Options{Width: 40})
	if len(lines) != 1 || lines[0].Type != LineBody {
		t.Errorf("expected plain body line, got %+v", lines)
	}
}

func TestFlow_FigureWithCaption(t *testing.T) {
	text := "[FIGURE:fig3]\n\n[FIGURE The water cycle]"
	lines := Flow(text, Options{Width: 40, AssetBaseURL: "https://cdn.example.com/"})

	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %+v", len(lines), lines)
	}
	fig := lines[0]
	if fig.Type != LineFigure {
		t.Fatalf("expected figure line, got %s", fig.Type)
	}
	if fig.FigureID != "fig3" {
		t.Errorf("figure id: got %q", fig.FigureID)
	}
	if fig.FigureSrc != "https://cdn.example.com/images/fig3.jpg" {
		t.Errorf("figure src: got %q", fig.FigureSrc)
	}
	if fig.Text != "The water cycle" || fig.FigureCaption != "The water cycle" {
		t.Errorf("caption: got %q / %q", fig.Text, fig.FigureCaption)
	}
}

func TestFlow_FigureWithoutCaptionSynthesizesText(t *testing.T) {
	lines := Flow("[FIGURE:fig1]\n\nRegular text after.", Options{Width: 40})
	if lines[0].Type != LineFigure || lines[0].Text != "Figure fig1" {
		t.Errorf("expected synthesized caption, got %+v", lines[0])
	}
	// The following block is untouched.
	if lines[2].Type != LineBody || lines[2].Text != "Regular text after." {
		t.Errorf("expected body after figure, got %+v", lines[2])
	}
}

func TestFlow_FigureURL(t *testing.T) {
	lines := Flow("[FIGURE_URL:https://x.test/pic.png]", Options{Width: 40})
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].FigureSrc != "https://x.test/pic.png" {
		t.Errorf("src: got %q", lines[0].FigureSrc)
	}
	if lines[0].FigureID != "" || lines[0].Text != "Figure" {
		t.Errorf("unexpected figure line: %+v", lines[0])
	}
}

func TestFlow_Equation(t *testing.T) {
	text := "[EQN_IMAGE:7]"
	lines := Flow(text, Options{Width: 40, SourcePath: "books/ch04.txt"})

	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	eq := lines[0]
	if eq.Type != LineFigure || !eq.IsEquation || eq.EquationIndex != 7 {
		t.Fatalf("unexpected equation line: %+v", eq)
	}
	if eq.FigureSrc != "equation-images/ch04/eqn_007.jpg" {
		t.Errorf("src: got %q", eq.FigureSrc)
	}
	if eq.Text != "Equation 7" {
		t.Errorf("display text: got %q", eq.Text)
	}
}

func TestFlow_EquationLabels(t *testing.T) {
	inline := Flow("[EQN_IMAGE:3] [Euler's identity]", Options{Width: 40})
	if inline[0].Text != "Euler's identity" {
		t.Errorf("inline label: got %q", inline[0].Text)
	}

	block := Flow("[EQN_IMAGE:3]\n\n[EQN_LABEL:Euler's identity]", Options{Width: 40})
	if len(block) != 1 {
		t.Fatalf("label block should be consumed, got %d lines: %+v", len(block), block)
	}
	if block[0].Text != "Euler's identity" {
		t.Errorf("label block: got %q", block[0].Text)
	}
}

func TestFlow_MalformedMarkersDegradeToText(t *testing.T) {
	for _, text := range []string{
		"[FIGURE:unclosed",
		"[EQN_IMAGE:notanumber]",
		"[FIGURE:a] trailing junk",
	} {
		lines := Flow(text, Options{Width: 40})
		if len(lines) == 0 {
			t.Errorf("%q: expected wrapped text, got nothing", text)
			continue
		}
		for _, line := range lines {
			if line.Type != LineBody {
				t.Errorf("%q: expected body lines only, got %s", text, line.Type)
			}
		}
	}
}

func TestFlow_CaseInsensitiveMarkers(t *testing.T) {
	lines := Flow("[figure:fig2]", Options{Width: 40})
	if len(lines) != 1 || lines[0].Type != LineFigure {
		t.Errorf("lowercase marker should parse, got %+v", lines)
	}
}

func TestFlow_Deterministic(t *testing.T) {
	text := "# Title\n\nBody text here with several words.\n\n[FIGURE:f]\n\nMore."
	opts := Options{Width: 25, AssetBaseURL: "https://cdn"}
	first := Flow(text, opts)
	second := Flow(text, opts)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different layouts")
	}
}

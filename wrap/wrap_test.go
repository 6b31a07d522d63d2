package wrap

import (
	"strings"
	"testing"

	"github.com/petrel-labs/letterpress/document"
	"github.com/petrel-labs/letterpress/metrics"
)

// fixedFont gives every rune the same width so tests can reason in
// character counts.
type fixedFont struct{ unit float64 }

func (f fixedFont) WidthOf(text string, size float64) float64 {
	return float64(len([]rune(text))) * f.unit * size / 1000
}

func (f fixedFont) PostScriptName() string { return "Fixed" }

type fixedProvider struct{ unit float64 }

func (p fixedProvider) ForStyle(bold, italic bool) metrics.FontMetrics {
	return fixedFont{unit: p.unit}
}

func TestWrapFitsWidth(t *testing.T) {
	runs := []document.Run{{Text: "alpha beta gamma delta epsilon"}}
	// 10 units per char at size 1000; max width fits 12 chars.
	lines := Wrap(runs, 120, 1000, fixedProvider{unit: 10})
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines, got %d", len(lines))
	}
	for i, l := range lines {
		if w := l.TextWidth(); w > 120 {
			t.Fatalf("line %d text width %.1f exceeds 120 (%q)", i, w, l.Text())
		}
	}
	joined := strings.Join(strings.Fields(linesText(lines)), " ")
	if joined != "alpha beta gamma delta epsilon" {
		t.Fatalf("wrapped text lost content: %q", joined)
	}
}

func TestWrapEmptyInput(t *testing.T) {
	lines := Wrap(nil, 100, 10, fixedProvider{unit: 10})
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line for empty input, got %d", len(lines))
	}
	if lines[0].Text() != "" {
		t.Fatalf("expected empty line, got %q", lines[0].Text())
	}
}

func TestWrapOversizedToken(t *testing.T) {
	runs := []document.Run{{Text: "abcdefghij"}}
	// 10 chars at 10 units each, box fits 4 chars per line.
	lines := Wrap(runs, 40, 1000, fixedProvider{unit: 10})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), linesText(lines))
	}
	if lines[0].Text() != "abcd" || lines[1].Text() != "efgh" || lines[2].Text() != "ij" {
		t.Fatalf("unexpected packing: %q %q %q",
			lines[0].Text(), lines[1].Text(), lines[2].Text())
	}
}

func TestWrapPreservesStyle(t *testing.T) {
	runs := []document.Run{
		{Text: "plain "},
		{Text: "bold", Bold: true},
	}
	lines := Wrap(runs, 10000, 12, fixedProvider{unit: 10})
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	var sawBold bool
	for _, f := range lines[0].Fragments {
		if f.Text == "bold" {
			sawBold = true
			if !f.Bold {
				t.Fatalf("bold run lost its style")
			}
		}
	}
	if !sawBold {
		t.Fatalf("bold fragment missing: %q", lines[0].Text())
	}
}

func TestWrapSpaceAtBoundary(t *testing.T) {
	// "aaaa bbbb": box fits exactly 4 chars, the space between words must
	// not generate a line of its own.
	runs := []document.Run{{Text: "aaaa bbbb"}}
	lines := Wrap(runs, 40, 1000, fixedProvider{unit: 10})
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), linesText(lines))
	}
	if got := strings.TrimSpace(lines[0].Text()); got != "aaaa" {
		t.Fatalf("first line = %q", got)
	}
	if got := strings.TrimSpace(lines[1].Text()); got != "bbbb" {
		t.Fatalf("second line = %q", got)
	}
}

func TestJustifyGaps(t *testing.T) {
	runs := []document.Run{{Text: "aa bb cc"}}
	lines := Wrap(runs, 10000, 1000, fixedProvider{unit: 10})
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	// Text width is 8 chars * 10 = 80; stretch to 100 leaves 20 over two
	// single-char gaps, 10 each.
	gaps := JustifyGaps(line, 100)
	if gaps == nil {
		t.Fatalf("expected gaps")
	}
	total := 0.0
	for i, g := range gaps {
		if g > 0 && !line.Fragments[i].IsSpace {
			t.Fatalf("gap assigned to non-space fragment %d", i)
		}
		total += g
	}
	if total < 19.99 || total > 20.01 {
		t.Fatalf("gap total = %.2f, want 20", total)
	}
}

func TestJustifyGapsNoInteriorSpace(t *testing.T) {
	runs := []document.Run{{Text: "solo"}}
	lines := Wrap(runs, 10000, 1000, fixedProvider{unit: 10})
	if gaps := JustifyGaps(lines[0], 500); gaps != nil {
		t.Fatalf("expected nil gaps for single word, got %v", gaps)
	}
}

func linesText(lines []Line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Text()
	}
	return strings.Join(parts, "\n")
}

// Package wrap breaks styled runs into measured lines that fit a maximum
// width. The same wrapping decisions back both height estimation and
// drawing, so page breaks never diverge from measured breaks. Wrapping has
// no side effects and may be called repeatedly.
package wrap

import (
	"strings"

	"github.com/petrel-labs/letterpress/document"
	"github.com/petrel-labs/letterpress/metrics"
)

// Fragment is a measured piece of one line sharing a single style. Space
// fragments are kept so justification can widen them later.
type Fragment struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Width     float64
	IsSpace   bool
}

// Line is an ordered sequence of fragments.
type Line struct {
	Fragments []Fragment
}

// Width sums all fragment widths, including trailing whitespace.
func (l Line) Width() float64 {
	w := 0.0
	for _, f := range l.Fragments {
		w += f.Width
	}
	return w
}

// TextWidth sums fragment widths ignoring leading and trailing whitespace.
func (l Line) TextWidth() float64 {
	frags := l.trimmed()
	w := 0.0
	for _, f := range frags {
		w += f.Width
	}
	return w
}

// Text concatenates the fragment texts.
func (l Line) Text() string {
	var sb strings.Builder
	for _, f := range l.Fragments {
		sb.WriteString(f.Text)
	}
	return sb.String()
}

func (l Line) trimmed() []Fragment {
	frags := l.Fragments
	for len(frags) > 0 && frags[0].IsSpace {
		frags = frags[1:]
	}
	for len(frags) > 0 && frags[len(frags)-1].IsSpace {
		frags = frags[:len(frags)-1]
	}
	return frags
}

// Wrap breaks runs into lines no wider than maxWidth. Tokens split on
// whitespace; a single token wider than maxWidth is packed character by
// character rather than truncated. The result always holds at least one
// (possibly empty) line.
func Wrap(runs []document.Run, maxWidth, size float64, p metrics.Provider) []Line {
	w := &wrapper{maxWidth: maxWidth, size: size, provider: p}
	for _, run := range runs {
		w.addRun(run)
	}
	w.closeLine()
	if len(w.lines) == 0 {
		w.lines = append(w.lines, Line{})
	}
	return w.lines
}

type wrapper struct {
	maxWidth float64
	size     float64
	provider metrics.Provider

	lines     []Line
	current   []Fragment
	lineWidth float64
}

func (w *wrapper) closeLine() {
	if len(w.current) == 0 && len(w.lines) > 0 {
		return
	}
	w.lines = append(w.lines, Line{Fragments: w.current})
	w.current = nil
	w.lineWidth = 0
}

// flush closes the current line only when it holds something.
func (w *wrapper) flush() {
	if len(w.current) == 0 {
		return
	}
	w.lines = append(w.lines, Line{Fragments: w.current})
	w.current = nil
	w.lineWidth = 0
}

func (w *wrapper) addRun(run document.Run) {
	if run.Text == "" {
		return
	}
	font := w.provider.ForStyle(run.Bold, run.Italic)
	for _, tok := range tokenize(run.Text) {
		width := font.WidthOf(tok, w.size)
		frag := Fragment{
			Text:      tok,
			Bold:      run.Bold,
			Italic:    run.Italic,
			Underline: run.Underline,
			Width:     width,
			IsSpace:   isSpaceToken(tok),
		}
		w.addToken(frag, font)
	}
}

func (w *wrapper) addToken(frag Fragment, font metrics.FontMetrics) {
	if frag.IsSpace {
		// Whitespace never forces a break by itself; past the edge it
		// just ends the line.
		if w.lineWidth+frag.Width > w.maxWidth && len(w.current) > 0 {
			w.flush()
			return
		}
		w.current = append(w.current, frag)
		w.lineWidth += frag.Width
		return
	}

	if w.lineWidth+frag.Width <= w.maxWidth || len(w.current) == 0 && frag.Width <= w.maxWidth {
		w.current = append(w.current, frag)
		w.lineWidth += frag.Width
		return
	}

	if frag.Width > w.maxWidth {
		// Unbreakable token wider than the box: character packing.
		w.flush()
		w.packChars(frag, font)
		return
	}

	w.flush()
	w.current = append(w.current, frag)
	w.lineWidth = frag.Width
}

// packChars splits an oversized token character by character, emitting full
// lines until the remainder fits; the remainder stays on the open line.
func (w *wrapper) packChars(frag Fragment, font metrics.FontMetrics) {
	var sub strings.Builder
	subWidth := 0.0
	for _, r := range frag.Text {
		rw := font.WidthOf(string(r), w.size)
		if subWidth+rw > w.maxWidth && sub.Len() > 0 {
			w.current = append(w.current, Fragment{
				Text: sub.String(), Bold: frag.Bold, Italic: frag.Italic,
				Underline: frag.Underline, Width: subWidth,
			})
			w.flush()
			sub.Reset()
			subWidth = 0
		}
		sub.WriteRune(r)
		subWidth += rw
	}
	if sub.Len() > 0 {
		w.current = append(w.current, Fragment{
			Text: sub.String(), Bold: frag.Bold, Italic: frag.Italic,
			Underline: frag.Underline, Width: subWidth,
		})
		w.lineWidth = subWidth
	}
}

// tokenize splits text into alternating whitespace and word tokens,
// preserving every character.
func tokenize(text string) []string {
	var tokens []string
	var current strings.Builder
	currentSpace := false
	for _, r := range text {
		space := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if current.Len() > 0 && space != currentSpace {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		currentSpace = space
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isSpaceToken(tok string) bool {
	for _, r := range tok {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return len(tok) > 0
}

// JustifyGaps returns per-fragment extra advance so the line's text exactly
// fills boxWidth. Leftover width spreads across interior whitespace
// fragments proportionally to their character counts. Returns nil when the
// line has no interior whitespace or already overflows. Callers must not
// stretch the last line of a paragraph.
func JustifyGaps(l Line, boxWidth float64) []float64 {
	frags := l.trimmed()
	if len(frags) == 0 {
		return nil
	}
	textWidth := 0.0
	spaceChars := 0
	for i, f := range frags {
		textWidth += f.Width
		if f.IsSpace && i > 0 && i < len(frags)-1 {
			spaceChars += len(f.Text)
		}
	}
	leftover := boxWidth - textWidth
	if leftover <= 0 || spaceChars == 0 {
		return nil
	}
	perChar := leftover / float64(spaceChars)

	gaps := make([]float64, len(l.Fragments))
	offset := fragOffset(l, frags)
	for i, f := range frags {
		if f.IsSpace && i > 0 && i < len(frags)-1 {
			gaps[offset+i] = perChar * float64(len(f.Text))
		}
	}
	return gaps
}

// fragOffset locates the trimmed slice inside the raw fragment list.
func fragOffset(l Line, trimmed []Fragment) int {
	lead := 0
	for lead < len(l.Fragments) && l.Fragments[lead].IsSpace {
		lead++
	}
	if lead+len(trimmed) > len(l.Fragments) {
		return 0
	}
	return lead
}

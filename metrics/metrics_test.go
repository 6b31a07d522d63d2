package metrics

import "testing"

func TestHelveticaWidths(t *testing.T) {
	m := Helvetica().ForStyle(false, false)
	// "iii" must be narrower than "mmm" at any size.
	if wi, wm := m.WidthOf("iii", 12), m.WidthOf("mmm", 12); wi >= wm {
		t.Fatalf("iii (%f) should be narrower than mmm (%f)", wi, wm)
	}
	// Width scales linearly with size.
	if w1, w2 := m.WidthOf("Hello", 10), m.WidthOf("Hello", 20); w2 < w1*1.99 || w2 > w1*2.01 {
		t.Fatalf("width not linear in size: %f vs %f", w1, w2)
	}
	// Space advance is the AFM value.
	if got := m.WidthOf(" ", 1000); got != 278 {
		t.Fatalf("space width = %f, want 278", got)
	}
}

func TestStyleSelection(t *testing.T) {
	p := Helvetica()
	cases := []struct {
		bold, italic bool
		want         string
	}{
		{false, false, "Helvetica"},
		{true, false, "Helvetica-Bold"},
		{false, true, "Helvetica-Oblique"},
		{true, true, "Helvetica-BoldOblique"},
	}
	for _, c := range cases {
		if got := p.ForStyle(c.bold, c.italic).PostScriptName(); got != c.want {
			t.Fatalf("ForStyle(%v,%v) = %q, want %q", c.bold, c.italic, got, c.want)
		}
	}
	// Bold letters are at least as wide as regular ones.
	reg := p.ForStyle(false, false).WidthOf("word", 12)
	bold := p.ForStyle(true, false).WidthOf("word", 12)
	if bold < reg {
		t.Fatalf("bold (%f) narrower than regular (%f)", bold, reg)
	}
}

func TestWidthOfEmpty(t *testing.T) {
	m := Helvetica().ForStyle(false, false)
	if got := m.WidthOf("", 12); got != 0 {
		t.Fatalf("empty width = %f, want 0", got)
	}
}

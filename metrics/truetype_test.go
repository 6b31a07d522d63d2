package metrics

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestLoadTrueType(t *testing.T) {
	f, err := LoadTrueType("Go-Regular", goregular.TTF)
	if err != nil {
		t.Fatalf("LoadTrueType: %v", err)
	}
	if f.PostScriptName() != "Go-Regular" {
		t.Fatalf("name = %q", f.PostScriptName())
	}
	// Proportional face: narrow letters advance less than wide ones.
	if wi, wm := f.WidthOf("iii", 12), f.WidthOf("mmm", 12); wi >= wm {
		t.Fatalf("iii (%f) should be narrower than mmm (%f)", wi, wm)
	}
	// Width scales linearly with size.
	if w1, w2 := f.WidthOf("Hello", 10), f.WidthOf("Hello", 20); w2 < w1*1.99 || w2 > w1*2.01 {
		t.Fatalf("width not linear in size: %f vs %f", w1, w2)
	}
	if got := f.WidthOf("", 12); got != 0 {
		t.Fatalf("empty width = %f, want 0", got)
	}
}

func TestLoadTrueTypeRejectsGarbage(t *testing.T) {
	if _, err := LoadTrueType("bad", []byte("definitely not a font")); err == nil {
		t.Fatalf("garbage data must not parse")
	}
}

func TestSingleFaceStyles(t *testing.T) {
	f, err := LoadTrueType("Go-Regular", goregular.TTF)
	if err != nil {
		t.Fatalf("LoadTrueType: %v", err)
	}
	p := SingleFace{Font: f}
	// Every style request resolves to the same face.
	for _, c := range []struct{ bold, italic bool }{
		{false, false}, {true, false}, {false, true}, {true, true},
	} {
		if got := p.ForStyle(c.bold, c.italic); got != f {
			t.Fatalf("ForStyle(%v,%v) returned a different face", c.bold, c.italic)
		}
	}
}

package metrics

import (
	"bytes"
	"fmt"

	gofont "github.com/go-text/typesetting/font"
	"golang.org/x/image/math/fixed"
)

// TrueTypeFont measures text with metrics parsed from an embedded TrueType
// or OpenType font, for brands that ship their own typeface instead of the
// core Helvetica set.
type TrueTypeFont struct {
	name string
	face *gofont.Face
	upem fixed.Int26_6
}

// LoadTrueType parses font data and returns a metrics provider backed by
// its horizontal advances.
func LoadTrueType(name string, data []byte) (*TrueTypeFont, error) {
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse truetype %q: %w", name, err)
	}
	upem := fixed.I(int(face.Upem()))
	if upem == 0 {
		upem = fixed.I(1000)
	}
	return &TrueTypeFont{name: name, face: face, upem: upem}, nil
}

func (f *TrueTypeFont) PostScriptName() string { return f.name }

func (f *TrueTypeFont) WidthOf(text string, size float64) float64 {
	var total fixed.Int26_6
	for _, r := range text {
		gid, ok := f.face.NominalGlyph(r)
		if !ok {
			// Missing glyphs advance by half an em, matching the
			// renderer's .notdef behavior.
			total += f.upem / 2
			continue
		}
		total += fixed.Int26_6(f.face.HorizontalAdvance(gid) * 64)
	}
	return float64(total) / 64 / (float64(f.upem) / 64) * size
}

// SingleFace adapts one TrueType font to the Provider interface; style
// variation requests fall back to the same face.
type SingleFace struct{ Font *TrueTypeFont }

func (s SingleFace) ForStyle(bool, bool) FontMetrics { return s.Font }

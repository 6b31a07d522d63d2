// Package metrics provides text width measurement for the layout engines.
// Widths come either from the builtin Type1 core-font tables (Helvetica
// family) or from an embedded TrueType font. Measurement is the single
// source of truth shared by wrapping, pagination and drawing; the engines
// never approximate widths on their own.
package metrics

// FontMetrics measures text in page points for a given font size.
type FontMetrics interface {
	// WidthOf returns the advance width of text at the given size.
	WidthOf(text string, size float64) float64
	// PostScriptName identifies the font for PDF resource dictionaries.
	PostScriptName() string
}

// Provider selects the metrics matching a run's style flags.
type Provider interface {
	ForStyle(bold, italic bool) FontMetrics
}

// coreFont measures using a 1/1000-em width table.
type coreFont struct {
	name   string
	widths [224]int16 // runes 32..255, WinAnsi subset
}

func (f *coreFont) PostScriptName() string { return f.name }

func (f *coreFont) WidthOf(text string, size float64) float64 {
	sum := 0
	for _, r := range text {
		sum += f.widthOfRune(r)
	}
	return float64(sum) / 1000 * size
}

func (f *coreFont) widthOfRune(r rune) int {
	if r >= 32 && r < 256 {
		if w := f.widths[r-32]; w > 0 {
			return int(w)
		}
	}
	// Unmapped runes fall back to the average lowercase advance so that
	// measurement stays monotone instead of collapsing to zero.
	return 556
}

// helvetica bundles the four style variants of the core sans family.
type helvetica struct{}

// Helvetica returns the builtin core-font provider. Oblique variants share
// the upright width tables, as in the Adobe AFM data.
func Helvetica() Provider { return helvetica{} }

func (helvetica) ForStyle(bold, italic bool) FontMetrics {
	switch {
	case bold && italic:
		return &helveticaBoldOblique
	case bold:
		return &helveticaBold
	case italic:
		return &helveticaOblique
	default:
		return &helveticaRegular
	}
}

package pdf

import (
	"bytes"
	"fmt"
)

// Canvas accumulates content-stream operators for one page. Coordinates are
// PDF points with the origin at the lower left.
type Canvas struct {
	buf bytes.Buffer
}

// Bytes returns the accumulated content stream.
func (c *Canvas) Bytes() []byte { return c.buf.Bytes() }

// DrawXObject paints a named form XObject at the page origin, used for the
// template background.
func (c *Canvas) DrawXObject(name Name) {
	fmt.Fprintf(&c.buf, "q /%s Do Q\n", name)
}

// DrawImage paints a named image XObject scaled into the given rectangle.
func (c *Canvas) DrawImage(name Name, x, y, w, h float64) {
	fmt.Fprintf(&c.buf, "q %s 0 0 %s %s %s cm /%s Do Q\n",
		num(w), num(h), num(x), num(y), name)
}

// SetFillRGB sets the nonstroking color from 0..255 components.
func (c *Canvas) SetFillRGB(r, g, b uint8) {
	fmt.Fprintf(&c.buf, "%s %s %s rg\n",
		num(float64(r)/255), num(float64(g)/255), num(float64(b)/255))
}

// SetStrokeRGB sets the stroking color from 0..255 components.
func (c *Canvas) SetStrokeRGB(r, g, b uint8) {
	fmt.Fprintf(&c.buf, "%s %s %s RG\n",
		num(float64(r)/255), num(float64(g)/255), num(float64(b)/255))
}

// FillRect fills a rectangle with the current fill color.
func (c *Canvas) FillRect(x, y, w, h float64) {
	fmt.Fprintf(&c.buf, "%s %s %s %s re f\n", num(x), num(y), num(w), num(h))
}

// StrokeRect outlines a rectangle.
func (c *Canvas) StrokeRect(x, y, w, h, lineWidth float64) {
	fmt.Fprintf(&c.buf, "q %s w %s %s %s %s re S Q\n",
		num(lineWidth), num(x), num(y), num(w), num(h))
}

// DrawLine strokes a straight line segment.
func (c *Canvas) DrawLine(x1, y1, x2, y2, lineWidth float64) {
	fmt.Fprintf(&c.buf, "q %s w %s %s m %s %s l S Q\n",
		num(lineWidth), num(x1), num(y1), num(x2), num(y2))
}

// DrawText places a single text run at the baseline position using the
// named font resource. Text is transcoded to WinAnsi.
func (c *Canvas) DrawText(font Name, size, x, y float64, text string) {
	c.buf.WriteString("BT ")
	fmt.Fprintf(&c.buf, "/%s %s Tf %s %s Td ", font, num(size), num(x), num(y))
	Str(EncodeWinAnsi(text)).encode(&c.buf)
	c.buf.WriteString(" Tj ET\n")
}

func num(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.3f", f)
}

// EncodeWinAnsi maps a UTF-8 string onto the WinAnsi (cp1252) byte set the
// standard fonts expect. Unmappable runes degrade to '?'.
func EncodeWinAnsi(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r < 0x80:
			out = append(out, byte(r))
		case r >= 0xA0 && r <= 0xFF:
			out = append(out, byte(r))
		default:
			if b, ok := winAnsiExtra[r]; ok {
				out = append(out, b)
			} else {
				out = append(out, '?')
			}
		}
	}
	return out
}

// winAnsiExtra covers the cp1252 0x80..0x9F block plus nothing else.
var winAnsiExtra = map[rune]byte{
	'€': 0x80, // euro
	'‚': 0x82,
	'ƒ': 0x83,
	'„': 0x84,
	'…': 0x85, // ellipsis
	'†': 0x86,
	'‡': 0x87,
	'ˆ': 0x88,
	'‰': 0x89,
	'Š': 0x8A,
	'‹': 0x8B,
	'Œ': 0x8C,
	'Ž': 0x8E,
	'‘': 0x91, // left single quote
	'’': 0x92, // right single quote
	'“': 0x93, // left double quote
	'”': 0x94, // right double quote
	'•': 0x95, // bullet
	'–': 0x96, // en dash
	'—': 0x97, // em dash
	'˜': 0x98,
	'™': 0x99, // trademark
	'š': 0x9A,
	'›': 0x9B,
	'œ': 0x9C,
	'ž': 0x9E,
	'Ÿ': 0x9F,
}

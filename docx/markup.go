package docx

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/petrel-labs/letterpress/document"
	"github.com/petrel-labs/letterpress/flatten"
	"github.com/petrel-labs/letterpress/numbering"
	"github.com/petrel-labs/letterpress/observability"
)

// emuPerPixel converts pixel dimensions to English Metric Units at 96 dpi.
const emuPerPixel = 9525

// tableWidthTwips is the nominal grid width the column entries divide. It
// matches a US Letter body with one-inch margins.
const tableWidthTwips = 9360

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escapeText strips control characters below 0x20 (whitespace excepted) and
// escapes the markup's reserved characters. A raw control byte in a text
// node makes the whole package unreadable.
func escapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return escaper.Replace(b.String())
}

// markupBuilder accumulates WordprocessingML fragments for one render.
// Counters and id allocation are scoped to the builder; never share one
// across renders.
type markupBuilder struct {
	buf      strings.Builder
	counters numbering.LevelCounters
	pkg      *pkg
	imageSeq int
	log      observability.Logger
}

func newMarkupBuilder(p *pkg, log observability.Logger) *markupBuilder {
	return &markupBuilder{pkg: p, imageSeq: p.nextImageID(), log: log}
}

func (b *markupBuilder) build(blocks []flatten.Block) (string, error) {
	for _, blk := range blocks {
		switch blk.Kind {
		case flatten.KindParagraph:
			b.paragraph(*blk.Paragraph, true)
		case flatten.KindImage:
			if err := b.image(*blk.Image); err != nil {
				return "", err
			}
		case flatten.KindTable:
			b.table(*blk.Table)
		}
	}
	return b.buf.String(), nil
}

// paragraph emits one <w:p>. Heading-ness is re-derived from the text here
// rather than trusted from upstream flags, so pasted pre-numbered content
// still picks up heading styles and sequential numbers.
func (b *markupBuilder) paragraph(p flatten.Paragraph, detectHeadings bool) {
	if detectHeadings {
		if level := numbering.HeadingLevel(p.Text()); level > 0 {
			b.heading(level, numbering.HeadingTitle(p.Text()), p.Alignment)
			return
		}
	}
	b.buf.WriteString("<w:p>")
	b.paragraphProps(p.Alignment, 0)
	for _, r := range p.Runs {
		b.run(r)
	}
	b.buf.WriteString("</w:p>")
}

func (b *markupBuilder) heading(level int, title string, align document.Alignment) {
	number := b.counters.Next(level)
	sz := 32 - 2*(level-1)
	if sz < 24 {
		sz = 24
	}
	b.buf.WriteString("<w:p>")
	b.paragraphProps(align, level)
	fmt.Fprintf(&b.buf, `<w:r><w:rPr><w:b/><w:sz w:val="%d"/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r>`,
		sz, escapeText(number+" "+title))
	b.buf.WriteString("</w:p>")
}

func (b *markupBuilder) paragraphProps(align document.Alignment, headingLevel int) {
	style := ""
	if headingLevel > 0 {
		if headingLevel > 6 {
			headingLevel = 6
		}
		style = fmt.Sprintf(`<w:pStyle w:val="Heading%d"/>`, headingLevel)
	}
	jc := jcValue(align)
	if style == "" && jc == "" {
		return
	}
	b.buf.WriteString("<w:pPr>")
	b.buf.WriteString(style)
	if jc != "" {
		fmt.Fprintf(&b.buf, `<w:jc w:val=%q/>`, jc)
	}
	b.buf.WriteString("</w:pPr>")
}

func jcValue(align document.Alignment) string {
	switch align {
	case document.AlignCenter:
		return "center"
	case document.AlignRight:
		return "right"
	case document.AlignJustify:
		return "both"
	}
	return ""
}

func (b *markupBuilder) run(r document.Run) {
	b.buf.WriteString("<w:r>")
	var props strings.Builder
	if r.Bold {
		props.WriteString("<w:b/>")
	}
	if r.Italic {
		props.WriteString("<w:i/>")
	}
	if r.Underline {
		props.WriteString(`<w:u w:val="single"/>`)
	}
	if props.Len() > 0 {
		b.buf.WriteString("<w:rPr>")
		b.buf.WriteString(props.String())
		b.buf.WriteString("</w:rPr>")
	}
	fmt.Fprintf(&b.buf, `<w:t xml:space="preserve">%s</w:t>`, escapeText(r.Text))
	b.buf.WriteString("</w:r>")
}

// table emits a bordered grid. Column-span cells carry gridSpan; rowspan is
// not representable in this simplified output, so spanning cells repeat in
// each covered row instead of merging.
func (b *markupBuilder) table(t flatten.Table) {
	if t.Columns < 1 {
		return
	}
	b.buf.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/>` +
		`<w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:space="0"/>` +
		`<w:left w:val="single" w:sz="4" w:space="0"/>` +
		`<w:bottom w:val="single" w:sz="4" w:space="0"/>` +
		`<w:right w:val="single" w:sz="4" w:space="0"/>` +
		`<w:insideH w:val="single" w:sz="4" w:space="0"/>` +
		`<w:insideV w:val="single" w:sz="4" w:space="0"/>` +
		`</w:tblBorders></w:tblPr>`)
	colW := tableWidthTwips / t.Columns
	b.buf.WriteString("<w:tblGrid>")
	for i := 0; i < t.Columns; i++ {
		fmt.Fprintf(&b.buf, `<w:gridCol w:w="%d"/>`, colW)
	}
	b.buf.WriteString("</w:tblGrid>")
	for _, row := range t.Rows {
		b.buf.WriteString("<w:tr>")
		for _, cell := range row.Cells {
			b.buf.WriteString("<w:tc><w:tcPr>")
			fmt.Fprintf(&b.buf, `<w:tcW w:w="%d" w:type="dxa"/>`, colW*cell.ColSpan)
			if cell.ColSpan > 1 {
				fmt.Fprintf(&b.buf, `<w:gridSpan w:val="%d"/>`, cell.ColSpan)
			}
			b.buf.WriteString("</w:tcPr>")
			for _, p := range cell.Paragraphs {
				b.paragraph(p, false)
			}
			b.buf.WriteString("</w:tc>")
		}
		b.buf.WriteString("</w:tr>")
	}
	b.buf.WriteString("</w:tbl>")
}

// image decodes the embedded payload, stores it as a media part, and emits
// inline drawing markup. A bad payload is skipped with a warning so one
// corrupt image does not void the whole document.
func (b *markupBuilder) image(img flatten.Image) error {
	payload, ext, w, h, err := decodeImagePayload(img.Source)
	if err != nil {
		b.log.Warn("skipping undecodable image", observability.Error("error", err))
		return nil
	}
	seq := b.imageSeq
	b.imageSeq++
	relID, err := b.pkg.addImagePart(seq, ext, payload)
	if err != nil {
		return err
	}
	cx := emu(w)
	cy := emu(h)
	fmt.Fprintf(&b.buf,
		`<w:p><w:r><w:drawing>`+
			`<wp:inline distT="0" distB="0" distL="0" distR="0" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">`+
			`<wp:extent cx="%d" cy="%d"/>`+
			`<wp:docPr id="%d" name="image%d"/>`+
			`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
			`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
			`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
			`<pic:nvPicPr><pic:cNvPr id="%d" name="image%d.%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
			`<pic:blipFill><a:blip r:embed=%q xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
			`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
			`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`,
		cx, cy, seq, seq, seq, seq, ext, relID, cx, cy)
	return nil
}

// emu converts pixels to English Metric Units, flooring and never dropping
// below 1 so a degenerate dimension stays representable.
func emu(px int) int {
	v := px * emuPerPixel
	if v < 1 {
		v = 1
	}
	return v
}

// decodeImagePayload parses a base64 data URI and reads the image header
// for pixel dimensions.
func decodeImagePayload(src string) (payload []byte, ext string, w, h int, err error) {
	const prefix = "data:"
	if !strings.HasPrefix(src, prefix) {
		return nil, "", 0, 0, fmt.Errorf("image source is not a data URI")
	}
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return nil, "", 0, 0, fmt.Errorf("malformed data URI")
	}
	meta := src[len(prefix):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", 0, 0, fmt.Errorf("unsupported data URI encoding %q", meta)
	}
	payload, err = base64.StdEncoding.DecodeString(src[comma+1:])
	if err != nil {
		return nil, "", 0, 0, fmt.Errorf("decode image payload: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(payload))
	if err != nil {
		return nil, "", 0, 0, fmt.Errorf("read image header: %w", err)
	}
	return payload, format, cfg.Width, cfg.Height, nil
}

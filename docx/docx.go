// Package docx serializes the flattened block model into a word-processing
// package by splicing generated markup into a cloned brand template. The
// template supplies styles, headers, and page geometry; this engine only
// replaces placeholder text and injects content parts.
package docx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/petrel-labs/letterpress/brand"
	"github.com/petrel-labs/letterpress/document"
	"github.com/petrel-labs/letterpress/flatten"
	"github.com/petrel-labs/letterpress/metrics"
	"github.com/petrel-labs/letterpress/observability"
	"github.com/petrel-labs/letterpress/wrap"
)

// MIMEType is the content type of the produced package.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const documentPath = "word/document.xml"

// ErrPlaceholderMissing reports a template without the required content
// placeholder paragraph. This is a configuration error; the render aborts.
var ErrPlaceholderMissing = errors.New("content placeholder not found in template")

// Engine renders flattened blocks into a word package. The zero value is
// usable; Metrics falls back to Helvetica and Log to a no-op logger.
type Engine struct {
	Metrics metrics.Provider
	Log     observability.Logger
}

// Params carries the per-render inputs. Template is the brand's .docx blob;
// it is never mutated, output is always a fresh copy.
type Params struct {
	Template []byte
	Layout   brand.Layout
	Brand    brand.Brand
	Title    string
	Subtitle string
}

// Render clones the template package, replaces the {{content}} paragraph
// with generated block markup, rewrites {{title}}/{{subtitle}} runs, and
// returns the rebuilt zip.
func (e *Engine) Render(ctx context.Context, p Params, blocks []flatten.Block) ([]byte, error) {
	log := e.Log
	if log == nil {
		log = observability.NopLogger{}
	}
	m := e.Metrics
	if m == nil {
		m = metrics.Helvetica()
	}

	pk, err := readPackage(p.Template)
	if err != nil {
		return nil, err
	}
	raw, ok := pk.files[documentPath]
	if !ok {
		return nil, fmt.Errorf("template package has no %s", documentPath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mb := newMarkupBuilder(pk, log)
	body, err := mb.build(blocks)
	if err != nil {
		return nil, err
	}

	doc := string(raw)
	doc, ok = replaceParagraph(doc, "{{content}}", body)
	if !ok {
		return nil, fmt.Errorf("splice document body: %w", ErrPlaceholderMissing)
	}
	doc, titles := replaceInline(doc, "{{title}}", titleRuns(p, m))
	doc, subtitles := replaceInline(doc, "{{subtitle}}", subtitleRuns(p.Subtitle))
	log.Debug("spliced word template",
		observability.Int("blocks", len(blocks)),
		observability.Int("titleRuns", titles),
		observability.Int("subtitleRuns", subtitles))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pk.set(documentPath, []byte(doc))
	return pk.write()
}

// titleRuns builds the replacement runs for a {{title}} placeholder: brand
// primary color, bold, and forced line breaks when the title exceeds the
// layout's title box width.
func titleRuns(p Params, m metrics.Provider) string {
	region := p.Layout.Title
	lines := wrap.Wrap([]document.Run{{Text: p.Title, Bold: true}}, region.Width, region.FontSize, m)
	sz := int(region.FontSize * 2)
	hex := p.Brand.Primary.Hex()

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString(`<w:r><w:br/></w:r>`)
		}
		fmt.Fprintf(&b,
			`<w:r><w:rPr><w:b/><w:color w:val=%q/><w:sz w:val="%d"/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r>`,
			hex, sz, escapeText(line.Text()))
	}
	return b.String()
}

func subtitleRuns(subtitle string) string {
	return fmt.Sprintf(`<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, escapeText(subtitle))
}

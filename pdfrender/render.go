// Package pdfrender paginates flattened blocks onto branded template pages
// and serializes the result. Page 1 carries the wrapped title block over the
// template's first page; overflow pages reuse the template's second page
// (or the first when the template has only one) with a compact header and a
// page-number box stamped in a second pass.
package pdfrender

import (
	"bytes"
	"context"
	"fmt"

	"github.com/petrel-labs/letterpress/brand"
	"github.com/petrel-labs/letterpress/document"
	"github.com/petrel-labs/letterpress/flatten"
	"github.com/petrel-labs/letterpress/metrics"
	"github.com/petrel-labs/letterpress/observability"
	"github.com/petrel-labs/letterpress/pdf"
	"github.com/petrel-labs/letterpress/wrap"
)

const (
	cellPadding   = 4.0
	imageGap      = 8.0
	paragraphGap  = 6.0
	subtitleGap   = 10.0
	borderWidth   = 0.5
	pxToPoint     = 0.75 // CSS reference pixel at 96dpi to PDF point
)

// Engine renders one export at a time; it holds no per-render state itself.
type Engine struct {
	Metrics metrics.Provider
	Log     observability.Logger
}

// Params carries the per-render inputs. Layout coordinates are top-left
// based; conversion to PDF's bottom-left space happens at draw time.
type Params struct {
	Template []byte
	Layout   brand.Layout
	Brand    brand.Brand
	Title    string
	Subtitle string
}

// Render paginates blocks and returns the finished PDF bytes.
func (e *Engine) Render(ctx context.Context, p Params, blocks []flatten.Block) ([]byte, error) {
	log := e.Log
	if log == nil {
		log = observability.NopLogger{}
	}
	tpl, err := pdf.Parse(p.Template)
	if err != nil {
		return nil, fmt.Errorf("pdfrender: parse template: %w", err)
	}
	tplPages, err := tpl.Pages()
	if err != nil {
		return nil, fmt.Errorf("pdfrender: template pages: %w", err)
	}

	r := &renderer{
		w:       pdf.NewWriter(),
		metrics: e.Metrics,
		layout:  p.Layout,
		brand:   p.Brand,
		log:     log,
	}
	if r.metrics == nil {
		r.metrics = metrics.Helvetica()
	}

	first, _, err := r.w.ImportPageXObject(tpl, tplPages[0])
	if err != nil {
		return nil, fmt.Errorf("pdfrender: import cover page: %w", err)
	}
	overflowSrc := tplPages[0]
	if len(tplPages) > 1 {
		overflowSrc = tplPages[1]
	}
	overflow, _, err := r.w.ImportPageXObject(tpl, overflowSrc)
	if err != nil {
		return nil, fmt.Errorf("pdfrender: import overflow page: %w", err)
	}
	r.coverTpl, r.overflowTpl = first, overflow
	r.addFonts()

	r.startCoverPage(p.Title, p.Subtitle)
	for i, b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.drawBlock(b); err != nil {
			return nil, fmt.Errorf("pdfrender: block %d: %w", i, err)
		}
	}
	r.stampPageNumbers()
	log.Debug("pdf render paginated",
		observability.Int("pages", len(r.pages)),
		observability.Int("blocks", len(blocks)))
	return r.assemble()
}

type pageState struct {
	canvas   pdf.Canvas
	xobjects pdf.Dict
	imgSeq   int
}

type renderer struct {
	w       *pdf.Writer
	metrics metrics.Provider
	layout  brand.Layout
	brand   brand.Brand
	log     observability.Logger

	coverTpl    pdf.Ref
	overflowTpl pdf.Ref
	fonts       pdf.Dict
	fontNames   map[string]pdf.Name

	pages   []*pageState
	cur     *pageState
	cursorY float64 // distance from the page top
	header  [2]string
}

// addFonts registers the four standard Helvetica variants once; every page
// shares the same font resource dictionary.
func (r *renderer) addFonts() {
	r.fonts = pdf.Dict{}
	r.fontNames = make(map[string]pdf.Name)
	variants := []struct {
		res  pdf.Name
		base string
	}{
		{"F1", "Helvetica"},
		{"F2", "Helvetica-Bold"},
		{"F3", "Helvetica-Oblique"},
		{"F4", "Helvetica-BoldOblique"},
	}
	for _, v := range variants {
		r.fonts[v.res] = r.w.StandardFont(v.base)
		r.fontNames[v.base] = v.res
	}
}

func (r *renderer) fontFor(bold, italic bool) (pdf.Name, metrics.FontMetrics) {
	m := r.metrics.ForStyle(bold, italic)
	name, ok := r.fontNames[m.PostScriptName()]
	if !ok {
		name = "F1"
	}
	return name, m
}

// toPDF converts a top-based y coordinate to PDF space.
func (r *renderer) toPDF(topY float64) float64 { return r.layout.PageHeight - topY }

func (r *renderer) bodyBottom() float64 {
	return r.layout.Body.Y + r.layout.Body.Height
}

// startCoverPage draws the template background, the wrapped title, and the
// subtitle whose vertical position depends on how many lines the title
// wrapped into.
func (r *renderer) startCoverPage(title, subtitle string) {
	page := &pageState{xobjects: pdf.Dict{"Bg": r.coverTpl}}
	page.canvas.DrawXObject("Bg")
	r.pages = append(r.pages, page)
	r.cur = page

	tr := r.layout.Title
	titleRuns := []document.Run{{Text: title, Bold: tr.Bold}}
	titleLines := wrap.Wrap(titleRuns, tr.Width, tr.FontSize, r.metrics)
	y := tr.Y
	for _, line := range titleLines {
		r.drawLineAt(line, tr.X, y, tr.FontSize, tr.Color, document.AlignLeft, tr.Width, false)
		y += tr.LineHeight
	}

	if subtitle != "" {
		sr := r.layout.Subtitle
		y += subtitleGap
		subLines := wrap.Wrap([]document.Run{{Text: subtitle, Bold: sr.Bold}}, sr.Width, sr.FontSize, r.metrics)
		for _, line := range subLines {
			r.drawLineAt(line, sr.X, y, sr.FontSize, sr.Color, document.AlignLeft, sr.Width, false)
			y += sr.LineHeight
		}
	}

	r.header = [2]string{title, subtitle}
	// Flowing content starts below the title block, never above the body
	// region's own top edge.
	r.cursorY = r.layout.Body.Y
	if y+paragraphGap > r.cursorY {
		r.cursorY = y + paragraphGap
	}
}

// newOverflowPage opens a fresh page backed by the overflow template and
// draws the right-aligned header.
func (r *renderer) newOverflowPage() {
	page := &pageState{xobjects: pdf.Dict{"Bg": r.overflowTpl}}
	page.canvas.DrawXObject("Bg")
	r.pages = append(r.pages, page)
	r.cur = page
	r.cursorY = r.layout.Body.Y

	ht := r.layout.HeaderTitle
	r.drawHeaderLine(r.header[0], ht)
	if r.header[1] != "" {
		r.drawHeaderLine(r.header[1], r.layout.HeaderSubtitle)
	}
}

// drawHeaderLine draws a single unwrapped right-aligned line in a header
// region.
func (r *renderer) drawHeaderLine(text string, reg brand.Region) {
	if text == "" {
		return
	}
	name, m := r.fontFor(reg.Bold, false)
	width := m.WidthOf(text, reg.FontSize)
	x := reg.X + reg.Width - width
	if x < reg.X {
		x = reg.X
	}
	r.cur.canvas.SetFillRGB(reg.Color.R, reg.Color.G, reg.Color.B)
	r.cur.canvas.DrawText(name, reg.FontSize, x, r.toPDF(reg.Y+reg.FontSize), text)
}

// ensureSpace opens an overflow page when the block cannot fit below the
// cursor. A block taller than the whole body region is placed at the top of
// a fresh page and allowed to overdraw; the cursor is clamped afterwards so
// pagination always terminates.
func (r *renderer) ensureSpace(blockHeight float64) {
	if r.cursorY+blockHeight <= r.bodyBottom() {
		return
	}
	if r.cursorY > r.layout.Body.Y {
		r.newOverflowPage()
	}
}

// advance moves the cursor down, clamped to the body bottom.
func (r *renderer) advance(h float64) {
	r.cursorY += h
	if r.cursorY > r.bodyBottom() {
		r.cursorY = r.bodyBottom()
	}
}

func (r *renderer) drawBlock(b flatten.Block) error {
	switch b.Kind {
	case flatten.KindParagraph:
		r.drawParagraph(*b.Paragraph)
	case flatten.KindImage:
		r.drawImage(*b.Image)
	case flatten.KindTable:
		r.drawTable(*b.Table)
	}
	return nil
}

func (r *renderer) drawParagraph(p flatten.Paragraph) {
	body := r.layout.Body
	size := body.FontSize
	if p.IsHeading {
		size = body.FontSize + 2
	}
	lines := wrap.Wrap(p.Runs, body.Width, size, r.metrics)
	height := float64(len(lines))*body.LineHeight + paragraphGap
	r.ensureSpace(height)
	for i, line := range lines {
		lastLine := i == len(lines)-1
		r.drawLineAt(line, body.X, r.cursorY, size, body.Color, p.Alignment, body.Width, !lastLine)
		r.cursorY += body.LineHeight
	}
	r.advance(paragraphGap)
}

// drawLineAt draws one wrapped line into the current page at a top-based y.
// justify stretches interior whitespace when requested; other alignments
// shift the whole line.
func (r *renderer) drawLineAt(line wrap.Line, x, topY, size float64, color brand.Color, align document.Alignment, boxWidth float64, allowJustify bool) {
	textWidth := line.TextWidth()
	startX := x
	var gaps []float64
	switch align {
	case document.AlignCenter:
		startX = x + (boxWidth-textWidth)/2
	case document.AlignRight:
		startX = x + boxWidth - textWidth
	case document.AlignJustify:
		if allowJustify {
			gaps = wrap.JustifyGaps(line, boxWidth)
		}
	}
	if startX < x {
		startX = x
	}
	baseline := r.toPDF(topY + size)
	c := &r.cur.canvas
	c.SetFillRGB(color.R, color.G, color.B)
	curX := startX
	for i, f := range line.Fragments {
		if !f.IsSpace && f.Text != "" {
			name, _ := r.fontFor(f.Bold, f.Italic)
			c.DrawText(name, size, curX, baseline, f.Text)
			if f.Underline {
				c.SetStrokeRGB(color.R, color.G, color.B)
				c.DrawLine(curX, baseline-1.5, curX+f.Width, baseline-1.5, 0.6)
			}
		}
		curX += f.Width
		if gaps != nil && i < len(gaps) {
			curX += gaps[i]
		}
	}
}

// drawImage decodes the embedded payload, scales it down to the body width
// when needed, and advances the cursor. Undecodable images are skipped so a
// single bad payload cannot void the document.
func (r *renderer) drawImage(img flatten.Image) {
	decoded, err := pdf.DecodeDataURI(img.Source)
	if err != nil {
		r.log.Warn("skipping undecodable image", observability.Error("error", err))
		return
	}
	w := float64(decoded.Width) * pxToPoint
	h := float64(decoded.Height) * pxToPoint
	if w <= 0 || h <= 0 {
		return
	}
	body := r.layout.Body
	if w > body.Width {
		scale := body.Width / w
		w *= scale
		h *= scale
	}
	r.ensureSpace(h + imageGap)

	ref := decoded.AddTo(r.w)
	r.cur.imgSeq++
	name := pdf.Name(fmt.Sprintf("Im%d", r.cur.imgSeq))
	r.cur.xobjects[name] = ref
	r.cur.canvas.DrawImage(name, body.X, r.toPDF(r.cursorY+h), w, h)
	r.advance(h + imageGap)
}

func (r *renderer) drawTable(t flatten.Table) {
	if t.Columns == 0 || len(t.Rows) == 0 {
		return
	}
	body := r.layout.Body
	colWidth := body.Width / float64(t.Columns)
	rowHeights := r.measureRows(t, colWidth)

	total := 0.0
	for _, h := range rowHeights {
		total += h
	}
	r.ensureSpace(total + paragraphGap)

	top := r.cursorY
	// reserved[i] counts later rows still covered by a spanning cell in
	// column i, so following rows skip past the spanned columns.
	reserved := make([]int, t.Columns)
	for rowIdx, row := range t.Rows {
		col := 0
		for _, cell := range row.Cells {
			for col < t.Columns && reserved[col] > 0 {
				col++
			}
			if col >= t.Columns {
				break
			}
			x := body.X + float64(col)*colWidth
			cw := colWidth * float64(cell.ColSpan)
			ch := 0.0
			for i := 0; i < cell.RowSpan && rowIdx+i < len(rowHeights); i++ {
				ch += rowHeights[rowIdx+i]
			}
			r.cur.canvas.SetStrokeRGB(0xB0, 0xB0, 0xB0)
			r.cur.canvas.StrokeRect(x, r.toPDF(top+ch), cw, ch, borderWidth)

			cellY := top + cellPadding
			for _, para := range cell.Paragraphs {
				lines := wrap.Wrap(para.Runs, cw-2*cellPadding, body.FontSize, r.metrics)
				for i, line := range lines {
					lastLine := i == len(lines)-1
					r.drawLineAt(line, x+cellPadding, cellY, body.FontSize, body.Color,
						para.Alignment, cw-2*cellPadding, !lastLine)
					cellY += body.LineHeight
				}
			}
			if cell.RowSpan > 1 {
				for i := col; i < col+cell.ColSpan && i < t.Columns; i++ {
					reserved[i] = cell.RowSpan - 1
				}
			}
			col += cell.ColSpan
		}
		for i := range reserved {
			if reserved[i] > 0 {
				reserved[i]--
			}
		}
		top += rowHeights[rowIdx]
	}
	r.cursorY = top
	r.advance(paragraphGap)
}

// measureRows computes per-row heights. A cell's wrapped height spreads
// evenly across its rowspan so rows under a tall spanning cell do not
// double-count it.
func (r *renderer) measureRows(t flatten.Table, colWidth float64) []float64 {
	body := r.layout.Body
	heights := make([]float64, len(t.Rows))
	for rowIdx, row := range t.Rows {
		for _, cell := range row.Cells {
			cw := colWidth*float64(cell.ColSpan) - 2*cellPadding
			lineCount := 0
			for _, para := range cell.Paragraphs {
				lineCount += len(wrap.Wrap(para.Runs, cw, body.FontSize, r.metrics))
			}
			cellH := float64(lineCount)*body.LineHeight + 2*cellPadding
			share := cellH / float64(cell.RowSpan)
			for i := 0; i < cell.RowSpan && rowIdx+i < len(heights); i++ {
				if share > heights[rowIdx+i] {
					heights[rowIdx+i] = share
				}
			}
		}
	}
	return heights
}

// stampPageNumbers paints the "Page i of N" box on every overflow page. It
// runs after pagination because N is unknown until then; the white backing
// rectangle erases template artwork under the label.
func (r *renderer) stampPageNumbers() {
	total := len(r.pages)
	reg := r.layout.PageNumber
	name, m := r.fontFor(false, false)
	for i, page := range r.pages {
		if i == 0 {
			continue
		}
		label := fmt.Sprintf("Page %d of %d", i+1, total)
		width := m.WidthOf(label, reg.FontSize)
		x := reg.X + reg.Width - width
		if x < reg.X {
			x = reg.X
		}
		page.canvas.SetFillRGB(0xFF, 0xFF, 0xFF)
		page.canvas.FillRect(reg.X-2, r.toPDF(reg.Y+reg.Height), reg.Width+4, reg.Height)
		page.canvas.SetFillRGB(reg.Color.R, reg.Color.G, reg.Color.B)
		page.canvas.DrawText(name, reg.FontSize, x, r.toPDF(reg.Y+reg.FontSize), label)
	}
}

// assemble builds the page tree and serializes the document.
func (r *renderer) assemble() ([]byte, error) {
	pagesRef := r.w.Reserve()
	kids := make(pdf.Array, 0, len(r.pages))
	for _, page := range r.pages {
		content := r.w.AddFlateStream(pdf.Dict{}, page.canvas.Bytes())
		pageDict := pdf.Dict{
			"Type":     pdf.Name("Page"),
			"Parent":   pagesRef,
			"MediaBox": pdf.Array{pdf.Int(0), pdf.Int(0), pdf.Real(r.layout.PageWidth), pdf.Real(r.layout.PageHeight)},
			"Resources": pdf.Dict{
				"Font":    r.fonts,
				"XObject": page.xobjects,
			},
			"Contents": content,
		}
		kids = append(kids, r.w.Add(pageDict))
	}
	r.w.Set(pagesRef, pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Kids":  kids,
		"Count": pdf.Int(len(kids)),
	})
	root := r.w.Add(pdf.Dict{"Type": pdf.Name("Catalog"), "Pages": pagesRef})

	var out bytes.Buffer
	if err := r.w.Write(&out, root); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

package pdfrender

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/petrel-labs/letterpress/brand"
	"github.com/petrel-labs/letterpress/document"
	"github.com/petrel-labs/letterpress/flatten"
	"github.com/petrel-labs/letterpress/metrics"
	"github.com/petrel-labs/letterpress/numbering"
	"github.com/petrel-labs/letterpress/pdf"
)

// buildTemplate produces a minimal n-page template document.
func buildTemplate(t *testing.T, n int) []byte {
	t.Helper()
	w := pdf.NewWriter()
	font := w.StandardFont("Helvetica")
	pagesRef := w.Reserve()
	var kids pdf.Array
	for i := 0; i < n; i++ {
		var c pdf.Canvas
		c.DrawText("F1", 9, 40, 40, "template artwork")
		content := w.Add(&pdf.Stream{Dict: pdf.Dict{}, Data: c.Bytes()})
		kids = append(kids, w.Add(pdf.Dict{
			"Type":      pdf.Name("Page"),
			"Parent":    pagesRef,
			"MediaBox":  pdf.Array{pdf.Int(0), pdf.Int(0), pdf.Real(595.28), pdf.Real(841.89)},
			"Resources": pdf.Dict{"Font": pdf.Dict{"F1": font}},
			"Contents":  content,
		}))
	}
	w.Set(pagesRef, pdf.Dict{"Type": pdf.Name("Pages"), "Kids": kids, "Count": pdf.Int(n)})
	root := w.Add(pdf.Dict{"Type": pdf.Name("Catalog"), "Pages": pagesRef})
	var buf bytes.Buffer
	if err := w.Write(&buf, root); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return buf.Bytes()
}

func testParams(t *testing.T) Params {
	return Params{
		Template: buildTemplate(t, 2),
		Layout:   brand.DefaultLayout(brand.Portrait),
		Title:    "Quarterly Report",
		Subtitle: "Engineering",
	}
}

func para(text string) flatten.Block {
	return flatten.Block{Kind: flatten.KindParagraph, Paragraph: &flatten.Paragraph{
		Runs:      []document.Run{{Text: text}},
		Alignment: document.AlignLeft,
	}}
}

// pageContents parses the rendered output and returns each page's decoded
// content stream as a string.
func pageContents(t *testing.T, data []byte) []string {
	t.Helper()
	f, err := pdf.Parse(data)
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	pages, err := f.Pages()
	if err != nil {
		t.Fatalf("output pages: %v", err)
	}
	out := make([]string, len(pages))
	for i, p := range pages {
		content, err := f.ContentBytes(p)
		if err != nil {
			t.Fatalf("page %d content: %v", i+1, err)
		}
		out[i] = string(content)
	}
	return out
}

func TestRenderSinglePage(t *testing.T) {
	var doc document.Document
	doc.AddParagraph(document.Paragraph{Runs: []document.Run{{Text: "1. Intro"}}})
	doc.AddParagraph(document.Paragraph{Runs: []document.Run{{Text: "Hello world"}}})
	doc.AddTable(document.Table{Rows: []document.Row{
		{Cells: []document.Cell{{ColSpan: 2, RowSpan: 1, Paragraphs: []document.Paragraph{{Runs: []document.Run{{Text: "A"}}}}}}},
		{Cells: []document.Cell{
			{ColSpan: 1, RowSpan: 1, Paragraphs: []document.Paragraph{{Runs: []document.Run{{Text: "b"}}}}},
			{ColSpan: 1, RowSpan: 1, Paragraphs: []document.Paragraph{{Runs: []document.Run{{Text: "c"}}}}},
		}},
	}})
	blocks := flatten.Flatten(&doc, document.AlignLeft, numbering.NewNormalizer())

	e := &Engine{}
	out, err := e.Render(context.Background(), testParams(t), blocks)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	contents := pageContents(t, out)
	if len(contents) != 1 {
		t.Fatalf("expected 1 page, got %d", len(contents))
	}
	if !strings.Contains(contents[0], "(1. Intro)") {
		t.Fatalf("heading text missing from page 1")
	}
	if !strings.Contains(contents[0], "(Quarterly Report)") {
		t.Fatalf("title missing from page 1")
	}
	if !strings.Contains(contents[0], "re S") {
		t.Fatalf("table borders missing")
	}
}

func TestRenderOverflowPageNumbers(t *testing.T) {
	// One paragraph tall enough to spill over a single body region.
	words := strings.Repeat("lorem ipsum dolor sit amet consectetur ", 400)
	blocks := []flatten.Block{para(words)}

	e := &Engine{}
	out, err := e.Render(context.Background(), testParams(t), blocks)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	contents := pageContents(t, out)
	if len(contents) < 2 {
		t.Fatalf("expected overflow, got %d page(s)", len(contents))
	}
	last := contents[len(contents)-1]
	n := strconv.Itoa(len(contents))
	wantLabel := "(Page " + n + " of " + n + ")"
	if !strings.Contains(last, wantLabel) {
		t.Fatalf("last page missing %q", wantLabel)
	}
	if strings.Contains(contents[0], "(Page 1 of") {
		t.Fatalf("cover page must not carry a page number")
	}
	// Overflow header is the unwrapped title.
	if !strings.Contains(contents[1], "(Quarterly Report)") {
		t.Fatalf("overflow header missing title")
	}
}

func TestRenderDeterministic(t *testing.T) {
	blocks := []flatten.Block{
		para("alpha beta gamma"),
		para(strings.Repeat("delta epsilon ", 200)),
	}
	e := &Engine{}
	p := testParams(t)
	out1, err := e.Render(context.Background(), p, blocks)
	if err != nil {
		t.Fatalf("render 1: %v", err)
	}
	out2, err := e.Render(context.Background(), p, blocks)
	if err != nil {
		t.Fatalf("render 2: %v", err)
	}
	if !bytes.Equal(out1, out2) {
		t.Fatalf("same input produced different output bytes")
	}
}

func TestRenderSkipsBadImage(t *testing.T) {
	blocks := []flatten.Block{
		para("before"),
		{Kind: flatten.KindImage, Image: &flatten.Image{Source: "data:image/png;base64,not-base64"}},
		para("after"),
	}
	e := &Engine{}
	out, err := e.Render(context.Background(), testParams(t), blocks)
	if err != nil {
		t.Fatalf("bad image must not fail render: %v", err)
	}
	contents := pageContents(t, out)
	if !strings.Contains(contents[0], "(after)") {
		t.Fatalf("content after bad image lost")
	}
}

func TestRenderBrokenTemplateFails(t *testing.T) {
	e := &Engine{}
	p := testParams(t)
	p.Template = []byte("not a pdf at all")
	if _, err := e.Render(context.Background(), p, nil); err == nil {
		t.Fatalf("broken template must abort the render")
	}
}

func TestMeasureRowsRowspan(t *testing.T) {
	r := &renderer{metrics: metrics.Helvetica(), layout: brand.DefaultLayout(brand.Portrait)}
	cellPara := func(text string) []flatten.Paragraph {
		return []flatten.Paragraph{{Runs: []document.Run{{Text: text}}}}
	}
	tbl := flatten.Table{
		Columns: 2,
		Rows: []flatten.Row{
			{Cells: []flatten.Cell{
				{ColSpan: 1, RowSpan: 2, Paragraphs: []flatten.Paragraph{
					{Runs: []document.Run{{Text: "tall"}}},
					{Runs: []document.Run{{Text: "cell"}}},
					{Runs: []document.Run{{Text: "body"}}},
					{Runs: []document.Run{{Text: "text"}}},
				}},
				{ColSpan: 1, RowSpan: 1, Paragraphs: cellPara("a")},
			}},
			{Cells: []flatten.Cell{
				{ColSpan: 1, RowSpan: 1, Paragraphs: cellPara("b")},
			}},
		},
	}
	colWidth := r.layout.Body.Width / 2
	heights := r.measureRows(tbl, colWidth)
	if len(heights) != 2 {
		t.Fatalf("expected 2 row heights")
	}
	lineH := r.layout.Body.LineHeight
	tallCellHeight := 4*lineH + 2*cellPadding
	if heights[0]+heights[1] < tallCellHeight {
		t.Fatalf("spanned rows sum %.1f < spanning cell height %.1f",
			heights[0]+heights[1], tallCellHeight)
	}
	// Each row also satisfies the single-line floor from its own cells.
	floor := lineH + 2*cellPadding
	for i, h := range heights {
		if h < floor {
			t.Fatalf("row %d height %.1f below single-line floor %.1f", i, h, floor)
		}
	}
}

func TestRenderTableRowspanColumnOffset(t *testing.T) {
	cell := func(text string, colSpan, rowSpan int) flatten.Cell {
		return flatten.Cell{ColSpan: colSpan, RowSpan: rowSpan,
			Paragraphs: []flatten.Paragraph{{Runs: []document.Run{{Text: text}}}}}
	}
	blocks := []flatten.Block{{Kind: flatten.KindTable, Table: &flatten.Table{
		Columns: 2,
		Rows: []flatten.Row{
			{Cells: []flatten.Cell{cell("tall", 1, 2), cell("beside", 1, 1)}},
			{Cells: []flatten.Cell{cell("under", 1, 1)}},
		},
	}}}

	e := &Engine{}
	p := testParams(t)
	out, err := e.Render(context.Background(), p, blocks)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	content := pageContents(t, out)[0]

	// Row 2's only cell sits under the rowspanning first column, so it
	// must be drawn in the second column, not at the body's left edge.
	colWidth := p.Layout.Body.Width / 2
	x := textX(t, content, "(under)")
	if want := p.Layout.Body.X + colWidth; x < want {
		t.Fatalf("cell under a rowspan drawn at x=%.1f, want >= %.1f", x, want)
	}
	if x2 := textX(t, content, "(beside)"); x2 < p.Layout.Body.X+colWidth {
		t.Fatalf("second-column cell drawn at x=%.1f", x2)
	}
}

// textX returns the Td x coordinate of the text op that draws s.
func textX(t *testing.T, content, s string) float64 {
	t.Helper()
	i := strings.Index(content, s+" Tj")
	if i < 0 {
		t.Fatalf("text %s not drawn", s)
	}
	fields := strings.Fields(content[strings.LastIndex(content[:i], "BT "):i])
	if len(fields) < 7 || fields[6] != "Td" {
		t.Fatalf("unexpected text op %q", fields)
	}
	x, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		t.Fatalf("parse text x: %v", err)
	}
	return x
}

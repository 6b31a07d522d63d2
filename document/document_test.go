package document

import (
	"strings"
	"testing"
)

func TestTableColumnCount(t *testing.T) {
	tbl := Table{Rows: []Row{
		{Cells: []Cell{{ColSpan: 2, RowSpan: 1}, {ColSpan: 1, RowSpan: 1}}},
		{Cells: []Cell{{ColSpan: 1, RowSpan: 1}, {ColSpan: 1, RowSpan: 1}}},
	}}
	if got := tbl.ColumnCount(); got != 3 {
		t.Fatalf("ColumnCount = %d, want 3", got)
	}
}

func TestParagraphText(t *testing.T) {
	p := Paragraph{Runs: []Run{{Text: "Hello "}, {Text: "world", Bold: true}}}
	if got := p.Text(); got != "Hello world" {
		t.Fatalf("Text = %q", got)
	}
	if p.IsEmpty() {
		t.Fatal("IsEmpty = true for non-empty paragraph")
	}
}

func TestFromHTML(t *testing.T) {
	src := `
<h1>1. Scope</h1>
<p style="text-align:justify">Plain <b>bold</b> and <i>italic</i> text.</p>
<ul>
  <li>first</li>
  <li>second
    <ol><li>nested</li></ol>
  </li>
</ul>
<table>
  <tr><td colspan="2">A</td></tr>
  <tr><td>B</td><td>C</td></tr>
</table>
<img src="data:image/png;base64,AAAA"/>
`
	doc, err := FromHTML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("FromHTML failed: %v", err)
	}
	if len(doc.Blocks) != 5 {
		t.Fatalf("got %d blocks, want 5", len(doc.Blocks))
	}

	h := doc.Blocks[0]
	if h.Kind != KindParagraph || !h.Paragraph.IsHeading {
		t.Fatalf("block 0: expected heading paragraph, got kind %v", h.Kind)
	}
	if h.Paragraph.Text() != "1. Scope" {
		t.Fatalf("heading text = %q", h.Paragraph.Text())
	}

	p := doc.Blocks[1].Paragraph
	if p.Alignment != AlignJustify {
		t.Fatalf("alignment = %q, want justify", p.Alignment)
	}
	var sawBold, sawItalic bool
	for _, r := range p.Runs {
		if r.Bold {
			sawBold = true
		}
		if r.Italic {
			sawItalic = true
		}
	}
	if !sawBold || !sawItalic {
		t.Fatalf("expected bold and italic runs, runs: %+v", p.Runs)
	}

	l := doc.Blocks[2]
	if l.Kind != KindBulletList || len(l.List.Items) != 2 {
		t.Fatalf("expected 2-item bullet list, got %+v", l)
	}
	if len(l.List.Items[1].Children) != 1 || !l.List.Items[1].Children[0].Ordered {
		t.Fatalf("expected nested ordered list in second item")
	}

	tbl := doc.Blocks[3]
	if tbl.Kind != KindTable {
		t.Fatalf("block 3 kind = %v, want table", tbl.Kind)
	}
	if tbl.Table.Rows[0].Cells[0].ColSpan != 2 {
		t.Fatalf("colspan = %d, want 2", tbl.Table.Rows[0].Cells[0].ColSpan)
	}
	if tbl.Table.ColumnCount() != 2 {
		t.Fatalf("column count = %d, want 2", tbl.Table.ColumnCount())
	}

	if doc.Blocks[4].Kind != KindImage || !strings.HasPrefix(doc.Blocks[4].Image.Source, "data:image/png") {
		t.Fatalf("block 4: expected data-URI image")
	}
}

func TestFromMarkdown(t *testing.T) {
	src := []byte(`# Title

A paragraph with **bold** words.

- one
- two
`)
	doc, err := FromMarkdown(src)
	if err != nil {
		t.Fatalf("FromMarkdown failed: %v", err)
	}
	if len(doc.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(doc.Blocks))
	}
	if !doc.Blocks[0].Paragraph.IsHeading {
		t.Fatal("first block should be a heading")
	}
	para := doc.Blocks[1].Paragraph
	var bold bool
	for _, r := range para.Runs {
		if r.Bold && strings.Contains(r.Text, "bold") {
			bold = true
		}
	}
	if !bold {
		t.Fatalf("expected a bold run, got %+v", para.Runs)
	}
	if doc.Blocks[2].Kind != KindBulletList {
		t.Fatal("third block should be a bullet list")
	}
}

func TestPlainTextOrder(t *testing.T) {
	doc := &Document{}
	doc.AddParagraph(Paragraph{Runs: []Run{{Text: "first"}}})
	doc.AddList(List{Items: []ListItem{{Paragraphs: []Paragraph{{Runs: []Run{{Text: "second"}}}}}}})
	doc.AddTable(Table{Rows: []Row{{Cells: []Cell{{ColSpan: 1, RowSpan: 1, Paragraphs: []Paragraph{{Runs: []Run{{Text: "third"}}}}}}}}})

	got := doc.PlainText()
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

package flatten

import (
	"testing"

	"github.com/petrel-labs/letterpress/document"
	"github.com/petrel-labs/letterpress/numbering"
)

func para(text string) document.Paragraph {
	return document.Paragraph{Runs: []document.Run{{Text: text}}}
}

func TestFlattenHeadingRenumbered(t *testing.T) {
	var doc document.Document
	doc.AddParagraph(para("7. Introduction"))
	doc.AddParagraph(para("Body text follows."))
	doc.AddParagraph(para("9.4 Details"))

	blocks := Flatten(&doc, document.AlignLeft, numbering.NewNormalizer())
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	h := blocks[0].Paragraph
	if !h.IsHeading || h.Text() != "1. Introduction" {
		t.Fatalf("first heading = %q (heading=%v)", h.Text(), h.IsHeading)
	}
	if len(h.Runs) != 1 || !h.Runs[0].Bold {
		t.Fatalf("heading must be a single bold run, got %+v", h.Runs)
	}
	if blocks[1].Paragraph.IsHeading {
		t.Fatalf("body paragraph misclassified as heading")
	}
	if got := blocks[2].Paragraph.Text(); got != "1.1 Details" {
		t.Fatalf("second heading = %q", got)
	}
}

func TestFlattenEmptyParagraphPreserved(t *testing.T) {
	var doc document.Document
	doc.AddParagraph(document.Paragraph{})

	blocks := Flatten(&doc, document.AlignLeft, numbering.NewNormalizer())
	if len(blocks) != 1 || blocks[0].Kind != KindParagraph {
		t.Fatalf("empty paragraph must still produce a block, got %d blocks", len(blocks))
	}
	if blocks[0].Paragraph.Text() != "" {
		t.Fatalf("blank block carries text %q", blocks[0].Paragraph.Text())
	}
}

func TestFlattenOrderedListCounters(t *testing.T) {
	list := document.List{Ordered: true, Items: []document.ListItem{
		{Paragraphs: []document.Paragraph{para("first")}},
		{
			Paragraphs: []document.Paragraph{para("second")},
			Children: []document.List{{Ordered: true, Items: []document.ListItem{
				{Paragraphs: []document.Paragraph{para("nested")}},
			}}},
		},
		{Paragraphs: []document.Paragraph{para("third")}},
	}}
	var doc document.Document
	doc.AddList(list)
	// A second top-level ordered list restarts at 1.
	doc.AddList(document.List{Ordered: true, Items: []document.ListItem{
		{Paragraphs: []document.Paragraph{para("restart")}},
	}})

	blocks := Flatten(&doc, document.AlignLeft, numbering.NewNormalizer())
	want := []string{"1. first", "2. second", "3. nested", "4. third", "1. restart"}
	if len(blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d", len(want), len(blocks))
	}
	for i, w := range want {
		if got := blocks[i].Paragraph.Text(); got != w {
			t.Fatalf("block %d = %q, want %q", i, got, w)
		}
	}
}

func TestFlattenBulletMarkers(t *testing.T) {
	list := document.List{Items: []document.ListItem{
		{Paragraphs: []document.Paragraph{para("one")}},
		{Paragraphs: []document.Paragraph{para("two")}},
	}}
	var doc document.Document
	doc.AddList(list)

	blocks := Flatten(&doc, document.AlignLeft, numbering.NewNormalizer())
	for i, b := range blocks {
		if got := b.Paragraph.Text(); got != "• "+[]string{"one", "two"}[i] {
			t.Fatalf("block %d = %q", i, got)
		}
	}
}

func TestFlattenTableEmptyCell(t *testing.T) {
	tbl := document.Table{Rows: []document.Row{
		{Cells: []document.Cell{
			{ColSpan: 2, RowSpan: 1, Paragraphs: []document.Paragraph{para("wide")}},
		}},
		{Cells: []document.Cell{
			{ColSpan: 1, RowSpan: 1},
			{ColSpan: 1, RowSpan: 1, Paragraphs: []document.Paragraph{para("b")}},
		}},
	}}
	var doc document.Document
	doc.AddTable(tbl)

	blocks := Flatten(&doc, document.AlignJustify, numbering.NewNormalizer())
	if len(blocks) != 1 || blocks[0].Kind != KindTable {
		t.Fatalf("expected single table block")
	}
	out := blocks[0].Table
	if out.Columns != 2 {
		t.Fatalf("columns = %d, want 2", out.Columns)
	}
	empty := out.Rows[1].Cells[0]
	if len(empty.Paragraphs) != 1 || empty.Paragraphs[0].Text() != "" {
		t.Fatalf("empty cell must yield one empty paragraph, got %+v", empty.Paragraphs)
	}
	if out.Rows[0].Cells[0].Paragraphs[0].Alignment != document.AlignJustify {
		t.Fatalf("default alignment not applied to cell paragraphs")
	}
}

func TestFlattenSkipsEmptyImage(t *testing.T) {
	var doc document.Document
	doc.AddImage(document.Image{Source: ""})
	doc.AddImage(document.Image{Source: "data:image/png;base64,AAAA"})

	blocks := Flatten(&doc, document.AlignLeft, numbering.NewNormalizer())
	if len(blocks) != 1 || blocks[0].Kind != KindImage {
		t.Fatalf("expected exactly the non-empty image, got %d blocks", len(blocks))
	}
}

func TestFlattenParserTaggedHeading(t *testing.T) {
	var doc document.Document
	doc.AddParagraph(document.Paragraph{
		Runs:      []document.Run{{Text: "Overview"}},
		IsHeading: true,
	})
	doc.AddParagraph(para("Body text follows."))

	blocks := Flatten(&doc, document.AlignLeft, numbering.NewNormalizer())
	h := blocks[0].Paragraph
	if !h.IsHeading {
		t.Fatalf("parser-tagged heading lost its style")
	}
	// No numeric prefix, so the text stays verbatim but renders bold.
	if h.Text() != "Overview" {
		t.Fatalf("heading text = %q", h.Text())
	}
	if len(h.Runs) != 1 || !h.Runs[0].Bold {
		t.Fatalf("heading must be a single bold run, got %+v", h.Runs)
	}
	if blocks[1].Paragraph.IsHeading {
		t.Fatalf("body paragraph misclassified as heading")
	}
}

func TestFlattenParserTaggedHeadingRenumbered(t *testing.T) {
	var doc document.Document
	doc.AddParagraph(document.Paragraph{
		Runs:      []document.Run{{Text: "5. Scope"}},
		IsHeading: true,
	})

	blocks := Flatten(&doc, document.AlignLeft, numbering.NewNormalizer())
	if got := blocks[0].Paragraph.Text(); got != "1. Scope" {
		t.Fatalf("numbered heading = %q, want renumbered", got)
	}
}

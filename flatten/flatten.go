// Package flatten converts the rich-document tree into the ordered block
// sequence both rendering back ends consume. Lists collapse into marked
// sibling paragraphs, headings get renumbered, and every block ends up with
// a resolved alignment.
package flatten

import (
	"strconv"
	"strings"

	"github.com/petrel-labs/letterpress/document"
	"github.com/petrel-labs/letterpress/numbering"
)

// Kind discriminates the flattened block union.
type Kind int

const (
	KindParagraph Kind = iota
	KindImage
	KindTable
)

// Paragraph is a renderable paragraph with resolved alignment.
type Paragraph struct {
	Runs      []document.Run
	Alignment document.Alignment
	IsHeading bool
}

// Text concatenates the paragraph's run texts.
func (p Paragraph) Text() string {
	s := ""
	for _, r := range p.Runs {
		s += r.Text
	}
	return s
}

// Cell is a flattened table cell. An empty source cell still carries one
// empty paragraph so it renders with nonzero height.
type Cell struct {
	ColSpan    int
	RowSpan    int
	Paragraphs []Paragraph
}

// Row is an ordered sequence of cells.
type Row struct {
	Cells []Cell
}

// Table is a flattened table plus its resolved column count.
type Table struct {
	Rows    []Row
	Columns int
}

// Image carries the embedded payload reference through to the back ends.
type Image struct {
	Source string
}

// Block is a tagged union; exactly one payload matching Kind is set.
type Block struct {
	Kind      Kind
	Paragraph *Paragraph
	Image     *Image
	Table     *Table
}

// Flatten walks the document in reading order and produces renderable
// blocks. The normalizer carries heading counters across the whole walk;
// pass a fresh one per render.
func Flatten(doc *document.Document, defaultAlign document.Alignment, norm *numbering.Normalizer) []Block {
	f := &flattener{defaultAlign: defaultAlign, norm: norm}
	for _, b := range doc.Blocks {
		switch b.Kind {
		case document.KindParagraph:
			f.paragraph(*b.Paragraph)
		case document.KindBulletList:
			f.list(b.List, nil)
		case document.KindOrderedList:
			counter := 0
			f.list(b.List, &counter)
		case document.KindImage:
			if b.Image.Source != "" {
				f.blocks = append(f.blocks, Block{Kind: KindImage, Image: &Image{Source: b.Image.Source}})
			}
		case document.KindTable:
			f.table(b.Table)
		}
		// Unknown kinds fall through untouched.
	}
	return f.blocks
}

type flattener struct {
	defaultAlign document.Alignment
	norm         *numbering.Normalizer
	blocks       []Block
}

func (f *flattener) align(a document.Alignment) document.Alignment {
	if a == "" {
		return f.defaultAlign
	}
	return a
}

// paragraph flattens a top-level paragraph, renumbering it when the
// normalizer recognizes a heading. Paragraphs the parser tagged as headings
// (h1-h6, markdown #) keep heading styling even without a numeric prefix.
// Empty paragraphs still emit a blank block to preserve vertical spacing.
func (f *flattener) paragraph(p document.Paragraph) {
	text := p.Text()
	normalized, heading := f.norm.Normalize(text)
	if !heading && p.IsHeading && strings.TrimSpace(text) != "" {
		heading = true
		normalized = text
	}
	out := Paragraph{
		Runs:      p.Runs,
		Alignment: f.align(p.Alignment),
		IsHeading: heading,
	}
	if heading {
		out.Runs = []document.Run{{Text: normalized, Bold: true}}
	}
	f.blocks = append(f.blocks, Block{Kind: KindParagraph, Paragraph: &out})
}

// list flattens items to sibling paragraphs, each carrying its own marker
// run. counter is non-nil for ordered lists; it persists across nested
// sub-items in encounter order rather than per level.
func (f *flattener) list(l *document.List, counter *int) {
	for _, item := range l.Items {
		for i, p := range item.Paragraphs {
			marker := ""
			if i == 0 {
				if counter != nil {
					*counter++
					marker = strconv.Itoa(*counter) + ". "
				} else {
					marker = "• "
				}
			}
			runs := p.Runs
			if marker != "" {
				runs = append([]document.Run{{Text: marker}}, runs...)
			}
			out := Paragraph{Runs: runs, Alignment: f.align(p.Alignment)}
			f.blocks = append(f.blocks, Block{Kind: KindParagraph, Paragraph: &out})
		}
		for i := range item.Children {
			child := &item.Children[i]
			if child.Ordered && counter == nil {
				nested := 0
				f.list(child, &nested)
			} else if !child.Ordered {
				f.list(child, nil)
			} else {
				f.list(child, counter)
			}
		}
	}
}

func (f *flattener) table(t *document.Table) {
	out := &Table{Columns: t.ColumnCount()}
	for _, row := range t.Rows {
		var cells []Cell
		for _, c := range row.Cells {
			cell := Cell{ColSpan: c.ColSpan, RowSpan: c.RowSpan}
			if cell.ColSpan < 1 {
				cell.ColSpan = 1
			}
			if cell.RowSpan < 1 {
				cell.RowSpan = 1
			}
			for _, p := range c.Paragraphs {
				cell.Paragraphs = append(cell.Paragraphs, Paragraph{
					Runs:      p.Runs,
					Alignment: f.align(p.Alignment),
				})
			}
			if len(cell.Paragraphs) == 0 {
				cell.Paragraphs = []Paragraph{{Alignment: f.defaultAlign}}
			}
			cells = append(cells, cell)
		}
		out.Rows = append(out.Rows, Row{Cells: cells})
	}
	f.blocks = append(f.blocks, Block{Kind: KindTable, Table: out})
}

// Package document defines the normalized rich-text document tree consumed
// by the rendering engines: an ordered sequence of blocks (paragraphs,
// headings, lists, images, tables) holding styled text runs. The tree is
// pure data; the only behavior is text extraction.
package document

import "strings"

// Alignment is a paragraph-level horizontal alignment.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// Run is a span of text sharing one style combination. The style attributes
// are independent; a run may be bold and italic at once.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
}

// Paragraph is an ordered sequence of runs plus paragraph-level style.
// IsHeading is set by the HTML and markdown parsers for explicit heading
// markup; flattening additionally derives headings from numbered prefixes.
type Paragraph struct {
	Runs      []Run
	Alignment Alignment
	IsHeading bool
}

// Text concatenates the paragraph's run texts.
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// IsEmpty reports whether the paragraph carries no text at all.
func (p Paragraph) IsEmpty() bool {
	for _, r := range p.Runs {
		if r.Text != "" {
			return false
		}
	}
	return true
}

// ListItem holds one or more paragraphs and optional nested lists. Nested
// lists are flattened to sibling paragraphs during block flattening.
type ListItem struct {
	Paragraphs []Paragraph
	Children   []List
}

// List is a bullet or ordered list.
type List struct {
	Ordered bool
	Items   []ListItem
}

// Cell is a table cell. ColSpan and RowSpan are always >= 1.
type Cell struct {
	ColSpan    int
	RowSpan    int
	Paragraphs []Paragraph
}

// Row is an ordered sequence of cells.
type Row struct {
	Cells []Cell
}

// Table is an ordered sequence of rows. The column count is the maximum sum
// of colspans across all rows.
type Table struct {
	Rows []Row
}

// ColumnCount returns the table's column count.
func (t Table) ColumnCount() int {
	max := 0
	for _, row := range t.Rows {
		n := 0
		for _, c := range row.Cells {
			span := c.ColSpan
			if span < 1 {
				span = 1
			}
			n += span
		}
		if n > max {
			max = n
		}
	}
	return max
}

// Image references a self-contained embedded payload, typically a
// data:<mime>;base64,... URI produced by the editing surface.
type Image struct {
	Source string
}

// Kind discriminates the block union.
type Kind int

const (
	KindParagraph Kind = iota
	KindBulletList
	KindOrderedList
	KindImage
	KindTable
)

// Block is a tagged union of the top-level node types. Exactly one payload
// field matching Kind is set.
type Block struct {
	Kind      Kind
	Paragraph *Paragraph
	List      *List
	Image     *Image
	Table     *Table
}

// Document is the root node. Block order is document reading order.
type Document struct {
	Blocks []Block
}

// AddParagraph appends a paragraph block.
func (d *Document) AddParagraph(p Paragraph) {
	d.Blocks = append(d.Blocks, Block{Kind: KindParagraph, Paragraph: &p})
}

// AddList appends a list block.
func (d *Document) AddList(l List) {
	k := KindBulletList
	if l.Ordered {
		k = KindOrderedList
	}
	d.Blocks = append(d.Blocks, Block{Kind: k, List: &l})
}

// AddImage appends an image block.
func (d *Document) AddImage(img Image) {
	d.Blocks = append(d.Blocks, Block{Kind: KindImage, Image: &img})
}

// AddTable appends a table block.
func (d *Document) AddTable(t Table) {
	d.Blocks = append(d.Blocks, Block{Kind: KindTable, Table: &t})
}

// PlainText extracts all paragraph text in reading order, one line per
// paragraph, including list and table cell paragraphs.
func (d *Document) PlainText() []string {
	var lines []string
	var fromList func(l *List)
	fromList = func(l *List) {
		for _, item := range l.Items {
			for _, p := range item.Paragraphs {
				lines = append(lines, p.Text())
			}
			for i := range item.Children {
				fromList(&item.Children[i])
			}
		}
	}
	for _, b := range d.Blocks {
		switch b.Kind {
		case KindParagraph:
			lines = append(lines, b.Paragraph.Text())
		case KindBulletList, KindOrderedList:
			fromList(b.List)
		case KindTable:
			for _, row := range b.Table.Rows {
				for _, cell := range row.Cells {
					for _, p := range cell.Paragraphs {
						lines = append(lines, p.Text())
					}
				}
			}
		}
	}
	return lines
}

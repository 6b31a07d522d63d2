package document

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FromHTML builds a Document from the HTML emitted by a rich-text editing
// surface. Recognized elements: h1-h6, p, ul/ol/li, table/tr/td/th, img.
// Inline b/strong, i/em and u toggle run styles. Unknown elements are
// traversed so their text is not lost.
func FromHTML(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	doc := &Document{}
	walkHTML(root, doc)
	return doc, nil
}

func walkHTML(n *html.Node, doc *Document) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			p := paragraphFromNode(n, runStyle{bold: true})
			p.IsHeading = true
			doc.AddParagraph(p)
			return
		case atom.P:
			doc.AddParagraph(paragraphFromNode(n, runStyle{}))
			return
		case atom.Ul:
			doc.AddList(listFromNode(n, false))
			return
		case atom.Ol:
			doc.AddList(listFromNode(n, true))
			return
		case atom.Table:
			doc.AddTable(tableFromNode(n))
			return
		case atom.Img:
			if src := attrValue(n, "src"); src != "" {
				doc.AddImage(Image{Source: src})
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, doc)
	}
}

type runStyle struct {
	bold      bool
	italic    bool
	underline bool
}

func paragraphFromNode(n *html.Node, base runStyle) Paragraph {
	p := Paragraph{Alignment: alignmentFromNode(n)}
	collectRuns(n, base, &p.Runs)
	return p
}

func collectRuns(n *html.Node, style runStyle, runs *[]Run) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			text := strings.ReplaceAll(c.Data, "\n", " ")
			if text == "" {
				continue
			}
			*runs = append(*runs, Run{
				Text:      text,
				Bold:      style.bold,
				Italic:    style.italic,
				Underline: style.underline,
			})
		case html.ElementNode:
			next := style
			switch c.DataAtom {
			case atom.B, atom.Strong:
				next.bold = true
			case atom.I, atom.Em:
				next.italic = true
			case atom.U:
				next.underline = true
			case atom.Br:
				*runs = append(*runs, Run{Text: " "})
				continue
			}
			collectRuns(c, next, runs)
		}
	}
}

func listFromNode(n *html.Node, ordered bool) List {
	l := List{Ordered: ordered}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		item := ListItem{}
		// A li may hold bare inline content, explicit paragraphs, and
		// nested lists in any order.
		var inline []Run
		flushInline := func() {
			if len(inline) == 0 {
				return
			}
			item.Paragraphs = append(item.Paragraphs, Paragraph{Runs: inline, Alignment: AlignLeft})
			inline = nil
		}
		for g := c.FirstChild; g != nil; g = g.NextSibling {
			if g.Type == html.ElementNode {
				switch g.DataAtom {
				case atom.P:
					flushInline()
					item.Paragraphs = append(item.Paragraphs, paragraphFromNode(g, runStyle{}))
					continue
				case atom.Ul:
					flushInline()
					item.Children = append(item.Children, listFromNode(g, false))
					continue
				case atom.Ol:
					flushInline()
					item.Children = append(item.Children, listFromNode(g, true))
					continue
				}
			}
			collectRunsSingle(g, runStyle{}, &inline)
		}
		flushInline()
		if len(item.Paragraphs) == 0 && len(item.Children) == 0 {
			item.Paragraphs = []Paragraph{{Alignment: AlignLeft}}
		}
		l.Items = append(l.Items, item)
	}
	return l
}

// collectRunsSingle collects runs from one node (itself plus children),
// unlike collectRuns which starts at the children.
func collectRunsSingle(n *html.Node, style runStyle, runs *[]Run) {
	switch n.Type {
	case html.TextNode:
		text := strings.ReplaceAll(n.Data, "\n", " ")
		if strings.TrimSpace(text) == "" {
			return
		}
		*runs = append(*runs, Run{
			Text:      text,
			Bold:      style.bold,
			Italic:    style.italic,
			Underline: style.underline,
		})
	case html.ElementNode:
		next := style
		switch n.DataAtom {
		case atom.B, atom.Strong:
			next.bold = true
		case atom.I, atom.Em:
			next.italic = true
		case atom.U:
			next.underline = true
		}
		collectRuns(n, next, runs)
	}
}

func tableFromNode(n *html.Node) Table {
	t := Table{}
	var visitRows func(*html.Node)
	visitRows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				t.Rows = append(t.Rows, rowFromNode(c))
			case atom.Thead, atom.Tbody, atom.Tfoot:
				visitRows(c)
			}
		}
	}
	visitRows(n)
	return t
}

func rowFromNode(n *html.Node) Row {
	row := Row{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom != atom.Td && c.DataAtom != atom.Th {
			continue
		}
		cell := Cell{
			ColSpan: spanAttr(c, "colspan"),
			RowSpan: spanAttr(c, "rowspan"),
		}
		base := runStyle{bold: c.DataAtom == atom.Th}
		hasChildPara := false
		for g := c.FirstChild; g != nil; g = g.NextSibling {
			if g.Type == html.ElementNode && g.DataAtom == atom.P {
				cell.Paragraphs = append(cell.Paragraphs, paragraphFromNode(g, base))
				hasChildPara = true
			}
		}
		if !hasChildPara {
			cell.Paragraphs = append(cell.Paragraphs, paragraphFromNode(c, base))
		}
		row.Cells = append(row.Cells, cell)
	}
	return row
}

func spanAttr(n *html.Node, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(attrValue(n, key)))
	if err != nil || v < 1 {
		return 1
	}
	return v
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func alignmentFromNode(n *html.Node) Alignment {
	if v := attrValue(n, "align"); v != "" {
		if a, ok := parseAlignment(v); ok {
			return a
		}
	}
	for _, decl := range strings.Split(attrValue(n, "style"), ";") {
		k, v, found := strings.Cut(decl, ":")
		if !found || strings.TrimSpace(k) != "text-align" {
			continue
		}
		if a, ok := parseAlignment(strings.TrimSpace(v)); ok {
			return a
		}
	}
	return AlignLeft
}

func parseAlignment(s string) (Alignment, bool) {
	switch Alignment(strings.ToLower(s)) {
	case AlignLeft:
		return AlignLeft, true
	case AlignCenter:
		return AlignCenter, true
	case AlignRight:
		return AlignRight, true
	case AlignJustify:
		return AlignJustify, true
	}
	return AlignLeft, false
}

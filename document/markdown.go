package document

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FromMarkdown builds a Document from markdown source using goldmark.
// Headings, paragraphs with emphasis, and nested lists are mapped; other
// node kinds contribute their plain text as paragraphs.
func FromMarkdown(source []byte) (*Document, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))

	doc := &Document{}
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		appendMarkdownBlock(doc, child, source)
	}
	return doc, nil
}

func appendMarkdownBlock(doc *Document, node ast.Node, source []byte) {
	switch n := node.(type) {
	case *ast.Heading:
		doc.AddParagraph(Paragraph{
			Runs:      []Run{{Text: string(n.Text(source)), Bold: true}},
			Alignment: AlignLeft,
			IsHeading: true,
		})
	case *ast.Paragraph:
		doc.AddParagraph(Paragraph{
			Runs:      markdownRuns(n, source, runStyle{}),
			Alignment: AlignLeft,
		})
	case *ast.List:
		doc.AddList(markdownList(n, source))
	default:
		if txt := string(node.Text(source)); txt != "" {
			doc.AddParagraph(Paragraph{Runs: []Run{{Text: txt}}, Alignment: AlignLeft})
		}
	}
}

func markdownList(n *ast.List, source []byte) List {
	l := List{Ordered: n.IsOrdered()}
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		li := ListItem{}
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch cn := c.(type) {
			case *ast.List:
				li.Children = append(li.Children, markdownList(cn, source))
			case *ast.Paragraph, *ast.TextBlock:
				li.Paragraphs = append(li.Paragraphs, Paragraph{
					Runs:      markdownRuns(c, source, runStyle{}),
					Alignment: AlignLeft,
				})
			}
		}
		if len(li.Paragraphs) == 0 && len(li.Children) == 0 {
			li.Paragraphs = []Paragraph{{Alignment: AlignLeft}}
		}
		l.Items = append(l.Items, li)
	}
	return l
}

func markdownRuns(n ast.Node, source []byte, style runStyle) []Run {
	var runs []Run
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch cn := c.(type) {
		case *ast.Text:
			txt := string(cn.Segment.Value(source))
			if cn.SoftLineBreak() || cn.HardLineBreak() {
				txt += " "
			}
			if txt != "" {
				runs = append(runs, Run{Text: txt, Bold: style.bold, Italic: style.italic})
			}
		case *ast.Emphasis:
			next := style
			if cn.Level >= 2 {
				next.bold = true
			} else {
				next.italic = true
			}
			runs = append(runs, markdownRuns(cn, source, next)...)
		case *ast.CodeSpan:
			runs = append(runs, Run{Text: string(cn.Text(source)), Bold: style.bold, Italic: style.italic})
		default:
			if txt := string(c.Text(source)); txt != "" {
				runs = append(runs, Run{Text: txt, Bold: style.bold, Italic: style.italic})
			}
		}
	}
	return runs
}

package export

import (
	"context"
	"strings"

	"github.com/petrel-labs/letterpress/ai"
	"github.com/petrel-labs/letterpress/document"
)

// DocumentFromText builds a single-style document from plain text. Lines
// are labeled by the configured classification service when present; the
// local heuristic otherwise. Heading lines become bold paragraphs the
// numbering pass will renumber, blank lines become empty paragraphs so
// vertical spacing survives.
func (e *Exporter) DocumentFromText(ctx context.Context, text string) *document.Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	labels := ai.ClassifyLines(ctx, e.Classifier, e.logger(), lines)

	var doc document.Document
	for i, line := range lines {
		switch labels[i] {
		case ai.LabelBlank:
			doc.AddParagraph(document.Paragraph{})
		case ai.LabelHeading:
			doc.AddParagraph(document.Paragraph{Runs: []document.Run{{Text: strings.TrimSpace(line), Bold: true}}})
		default:
			doc.AddParagraph(document.Paragraph{Runs: []document.Run{{Text: line}}})
		}
	}
	return &doc
}

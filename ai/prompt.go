package ai

import (
	"fmt"
	"strings"
)

const classifySystem = `You label lines of a plain-text document. For every input line, output exactly one word on its own line: "heading", "body", or "blank". Keep the input order. Output nothing else.`

const generateSystem = `You write clear, well-structured document body text. Use numbered section headings like "1. Overview" where structure helps. Output plain text only, no markup.`

func classifyUserPrompt(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

func generateUserPrompt(prompt, title, subtitle string) string {
	return fmt.Sprintf("Document title: %s\nDocument subtitle: %s\n\n%s", title, subtitle, prompt)
}

// parseLabels maps a one-word-per-line response back to labels. A response
// whose usable line count differs from want is an error; the caller falls
// back to the heuristic.
func parseLabels(response string, want int) ([]Label, error) {
	var labels []Label
	for _, line := range strings.Split(response, "\n") {
		word := strings.ToLower(strings.TrimSpace(line))
		if word == "" {
			continue
		}
		switch Label(word) {
		case LabelHeading, LabelBody, LabelBlank:
			labels = append(labels, Label(word))
		default:
			return nil, fmt.Errorf("unexpected label %q in response", word)
		}
	}
	if len(labels) != want {
		return nil, fmt.Errorf("response has %d labels, want %d", len(labels), want)
	}
	return labels, nil
}

// Package ai integrates optional language-model services: line
// classification for the plain-text import path and prompt-driven content
// generation. Both are best-effort; classification always degrades to the
// local heuristic and never fails a render.
package ai

import (
	"context"
	"strings"

	"github.com/petrel-labs/letterpress/numbering"
	"github.com/petrel-labs/letterpress/observability"
)

// Label is the classification of one input line.
type Label string

const (
	LabelHeading Label = "heading"
	LabelBody    Label = "body"
	LabelBlank   Label = "blank"
)

// Classifier labels document lines. The returned slice must have the same
// length as the input.
type Classifier interface {
	Classify(ctx context.Context, lines []string) ([]Label, error)
}

// Generator produces document body text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, title, subtitle string) (string, error)
}

// ClassifyLines labels lines via the classifier, falling back to the local
// heuristic when the classifier is absent, errors, or returns a slice of
// the wrong length. It never fails.
func ClassifyLines(ctx context.Context, c Classifier, log observability.Logger, lines []string) []Label {
	if log == nil {
		log = observability.NopLogger{}
	}
	if c != nil {
		labels, err := c.Classify(ctx, lines)
		if err == nil && len(labels) == len(lines) {
			return labels
		}
		if err != nil {
			log.Warn("line classification failed, using heuristic", observability.Error("error", err))
		} else {
			log.Warn("line classification returned mismatched length, using heuristic",
				observability.Int("lines", len(lines)),
				observability.Int("labels", len(labels)))
		}
	}
	return HeuristicLabels(lines)
}

// HeuristicLabels is the deterministic local fallback.
func HeuristicLabels(lines []string) []Label {
	labels := make([]Label, len(lines))
	for i, line := range lines {
		switch {
		case strings.TrimSpace(line) == "":
			labels[i] = LabelBlank
		case numbering.Heuristic(line):
			labels[i] = LabelHeading
		default:
			labels[i] = LabelBody
		}
	}
	return labels
}

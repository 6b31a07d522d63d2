// Package numbering assigns hierarchical section numbers ("2.3") to lines
// recognized as headings. State is scoped to one render: construct a fresh
// Normalizer per export and feed it lines in document order.
package numbering

import (
	"regexp"
	"strconv"
	"strings"
)

// headingPattern matches an explicit leading numeric path: one or more
// dot-separated integers, an optional trailing period, whitespace, then the
// heading title.
var headingPattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)(\.?)\s+(\S.*)$`)

// Normalizer renumbers headings with a growable counter stack, one counter
// per heading depth. No lookahead: a line's heading-ness depends only on its
// own text.
type Normalizer struct {
	counters []int
}

// NewNormalizer returns a normalizer with empty counters.
func NewNormalizer() *Normalizer { return &Normalizer{} }

// Normalize consumes one logical line. If the line is in numbered-heading
// form, the author's numeric prefix is replaced with the renumbered path and
// heading=true is returned; otherwise the line passes through unchanged.
// The author's separator style survives: "1. Intro" renumbers to "1. Intro",
// not "1 Intro", so already-correct documents round-trip verbatim.
func (n *Normalizer) Normalize(line string) (string, bool) {
	m := headingPattern.FindStringSubmatch(line)
	if m == nil {
		return line, false
	}
	level := strings.Count(m[1], ".") + 1
	sep := m[2]
	title := m[3]
	n.bump(level)

	parts := make([]string, len(n.counters))
	for i, c := range n.counters {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ".") + sep + " " + title, true
}

// bump advances the counter stack for a heading at the given 1-based level.
// Advancing level L drops all counters deeper than L; a heading that skips
// levels downward is padded with 1's rather than inventing deeper counters.
func (n *Normalizer) bump(level int) {
	switch {
	case level <= 1:
		if len(n.counters) == 0 {
			n.counters = []int{1}
		} else {
			n.counters = []int{n.counters[0] + 1}
		}
	case len(n.counters) < level-1:
		for len(n.counters) < level-1 {
			n.counters = append(n.counters, 1)
		}
	case len(n.counters) == level-1:
		n.counters = append(n.counters, 1)
	default:
		n.counters = n.counters[:level]
		n.counters[level-1]++
	}
}

// MaxLevels bounds the fixed-size counter variant used by the word-package
// serializer.
const MaxLevels = 6

// LevelCounters is the fixed-size per-level counter array maintained by the
// docx path. Semantics match Normalizer for levels 1..6.
type LevelCounters struct {
	counts [MaxLevels]int
	depth  int
}

// Next advances the counters for a heading at the given level (clamped to
// 1..6) and returns the dotted number path.
func (c *LevelCounters) Next(level int) string {
	if level < 1 {
		level = 1
	}
	if level > MaxLevels {
		level = MaxLevels
	}
	switch {
	case level == 1:
		c.counts[0]++
		c.depth = 1
	case c.depth < level-1:
		for c.depth < level-1 {
			c.counts[c.depth] = 1
			c.depth++
		}
	case c.depth == level-1:
		c.counts[level-1] = 1
		c.depth = level
	default:
		c.counts[level-1]++
		c.depth = level
	}
	for i := c.depth; i < MaxLevels; i++ {
		c.counts[i] = 0
	}

	parts := make([]string, c.depth)
	for i := 0; i < c.depth; i++ {
		parts[i] = strconv.Itoa(c.counts[i])
	}
	return strings.Join(parts, ".")
}

// HeadingLevel reports the numeric-path level of a line, or 0 when the line
// is not in numbered-heading form. An optional leading "section" word is
// tolerated (the word-processor path sees author text like "Section 2.1
// Details").
func HeadingLevel(line string) int {
	trimmed := strings.TrimSpace(line)
	if rest, ok := cutSectionWord(trimmed); ok {
		trimmed = rest
	}
	m := headingPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return 0
	}
	if !looksLikeTitle(m[3]) {
		return 0
	}
	return strings.Count(m[1], ".") + 1
}

// HeadingTitle returns the title part of a numbered heading line (without
// the numeric prefix), or the line itself when it is not numbered.
func HeadingTitle(line string) string {
	trimmed := strings.TrimSpace(line)
	if rest, ok := cutSectionWord(trimmed); ok {
		trimmed = rest
	}
	if m := headingPattern.FindStringSubmatch(trimmed); m != nil {
		return m[3]
	}
	return trimmed
}

func cutSectionWord(s string) (string, bool) {
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "section ") {
		return strings.TrimSpace(s[len("section "):]), true
	}
	return s, false
}

package numbering

import (
	"strings"
	"unicode"
)

const (
	maxHeadingRunes = 90
	maxHeadingWords = 12
)

// Heuristic reports whether a line looks like a heading candidate without
// any external classifier: short, few words, no sentence punctuation, and
// either a numeric prefix or title-like casing.
func Heuristic(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if HeadingLevel(trimmed) > 0 {
		return true
	}
	if !looksLikeTitle(trimmed) {
		return false
	}
	// Without a numeric prefix, require an uppercase start to reject
	// stray short body fragments.
	first := []rune(trimmed)[0]
	return unicode.IsUpper(first)
}

// looksLikeTitle rejects sentence-like text: too long, too many words, or
// ending in sentence punctuation.
func looksLikeTitle(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if len([]rune(s)) > maxHeadingRunes {
		return false
	}
	if len(strings.Fields(s)) > maxHeadingWords {
		return false
	}
	switch s[len(s)-1] {
	case '.', ',', ';', ':', '!', '?':
		return false
	}
	return true
}

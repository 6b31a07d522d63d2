package docx

import "strings"

// maxSpliceRuns bounds how many text-run boundaries a placeholder match may
// cross. Editors routinely split "{{title}}" into several adjacent runs
// (spell-check and revision marks fragment text), but matches that roam
// further than this are virtually always false positives.
const maxSpliceRuns = 8

// findPlaceholder locates the visible text of a placeholder inside raw
// document markup, tolerating XML tags interleaved between its characters.
// It returns the byte span covering the first match, including any tags the
// match crossed. A match never crosses a paragraph end.
func findPlaceholder(doc, placeholder string) (int, int, bool) {
	if placeholder == "" {
		return 0, 0, false
	}
	inTag := false
	for pos := 0; pos < len(doc); pos++ {
		switch doc[pos] {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag && doc[pos] == placeholder[0] {
				if end, ok := matchAt(doc, pos, placeholder); ok {
					return pos, end, true
				}
			}
		}
	}
	return 0, 0, false
}

// matchAt attempts a placeholder match starting at a visible character,
// skipping complete tags between characters. It fails when the paragraph
// ends or the run window is exhausted before the placeholder completes.
func matchAt(doc string, start int, placeholder string) (int, bool) {
	i := 0
	pos := start
	crossings := 0
	for pos < len(doc) && i < len(placeholder) {
		if doc[pos] == '<' {
			rel := strings.IndexByte(doc[pos:], '>')
			if rel < 0 {
				return 0, false
			}
			tag := doc[pos : pos+rel+1]
			if tag == "</w:p>" || strings.HasPrefix(tag, "</w:p ") {
				return 0, false
			}
			if strings.HasPrefix(tag, "</w:t") {
				crossings++
				if crossings > maxSpliceRuns {
					return 0, false
				}
			}
			pos += rel + 1
			continue
		}
		if doc[pos] != placeholder[i] {
			return 0, false
		}
		i++
		pos++
	}
	if i == len(placeholder) {
		return pos, true
	}
	return 0, false
}

// replaceInline substitutes every occurrence of the placeholder with run
// markup. The matched span always starts and ends inside a <w:t> text node,
// so the splice closes the current run, injects the replacement runs, and
// reopens a plain run for any trailing text. Returns the rewritten document
// and the number of substitutions.
func replaceInline(doc, placeholder, runs string) (string, int) {
	count := 0
	for {
		start, end, ok := findPlaceholder(doc, placeholder)
		if !ok {
			return doc, count
		}
		splice := `</w:t></w:r>` + runs + `<w:r><w:t xml:space="preserve">`
		doc = doc[:start] + splice + doc[end:]
		count++
	}
}

// replaceParagraph substitutes the entire paragraph element containing the
// placeholder with the given fragment.
func replaceParagraph(doc, placeholder, fragment string) (string, bool) {
	start, end, ok := findPlaceholder(doc, placeholder)
	if !ok {
		return doc, false
	}
	pStart := paragraphStartBefore(doc, start)
	if pStart < 0 {
		return doc, false
	}
	rel := strings.Index(doc[end:], "</w:p>")
	if rel < 0 {
		return doc, false
	}
	pEnd := end + rel + len("</w:p>")
	return doc[:pStart] + fragment + doc[pEnd:], true
}

// paragraphStartBefore finds the opening <w:p> tag enclosing the offset.
// "<w:pPr" and friends share the prefix, so the next byte must terminate
// the tag name.
func paragraphStartBefore(doc string, from int) int {
	search := doc[:from]
	for {
		i := strings.LastIndex(search, "<w:p")
		if i < 0 {
			return -1
		}
		rest := doc[i+len("<w:p"):]
		if len(rest) > 0 && (rest[0] == '>' || rest[0] == ' ') {
			return i
		}
		search = doc[:i]
	}
}

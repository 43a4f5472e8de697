// Package description builds the annotation blocks appended to Strava
// activity descriptions and merges them into the user's notes.
//
// A block starts with a header line (e.g. "Movescount data:") and runs until
// the next blank line or the end of the text. Merging replaces an existing
// block with the same header instead of appending a second copy.
package description

import "strings"

// FindSection locates the block starting with headerPrefix.
// Returns start index, end index (exclusive) and whether it was found.
func FindSection(text, headerPrefix string) (start, end int, found bool) {
	if text == "" || headerPrefix == "" {
		return 0, 0, false
	}

	start = strings.Index(text, headerPrefix)
	if start == -1 {
		return 0, 0, false
	}
	// Only a header at the beginning of a line opens a block.
	if start > 0 && text[start-1] != '\n' {
		return 0, 0, false
	}

	rest := text[start:]
	if idx := strings.Index(rest, "\n\n"); idx != -1 {
		end = start + idx
	} else {
		end = len(text)
	}
	for end > start && (text[end-1] == '\n' || text[end-1] == ' ' || text[end-1] == '\r') {
		end--
	}
	return start, end, true
}

// ReplaceSection swaps the block starting with headerPrefix for block.
// When no such block exists, block is appended after a blank line.
func ReplaceSection(text, headerPrefix, block string) string {
	start, end, found := FindSection(text, headerPrefix)
	if !found {
		text = strings.TrimRight(text, "\n ")
		if text == "" {
			return block
		}
		return text + "\n\n" + block
	}

	before := strings.TrimRight(text[:start], "\n ")
	after := strings.TrimLeft(text[end:], "\n ")

	var b strings.Builder
	if before != "" {
		b.WriteString(before)
		b.WriteString("\n\n")
	}
	b.WriteString(block)
	if after != "" {
		b.WriteString("\n\n")
		b.WriteString(after)
	}
	return b.String()
}

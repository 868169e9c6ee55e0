// Package sanitize turns arbitrary user-controlled strings into strings
// that are safe to use as a single path segment on common filesystems.
package sanitize

import (
	"strings"
	"unicode"
)

// maxSegmentRunes bounds a sanitized segment so that the composed path
// stays well under common filesystem name limits.
const maxSegmentRunes = 160

// reserved covers path separators plus the characters Windows refuses
// in file names. Stripping the superset keeps paths portable.
const reserved = `/\:*?"<>|`

// Filename returns a form of s that is safe to embed as a single path
// segment: reserved characters and control characters are removed,
// whitespace runs collapse to a single space, leading and trailing
// dots and spaces are trimmed, and the result is length-bounded.
// It is a total function; the zero value in is the zero value out.
func Filename(s string) string {
	// Multi-line captions keep only their first line.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch {
		// Tab is both whitespace and a control rune; classify it as
		// whitespace so it collapses instead of vanishing.
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		case strings.ContainsRune(reserved, r) || unicode.IsControl(r):
			continue
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}

	out := strings.Trim(b.String(), ". ")
	if runes := []rune(out); len(runes) > maxSegmentRunes {
		out = strings.Trim(string(runes[:maxSegmentRunes]), ". ")
	}
	return out
}

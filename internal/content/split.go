// Package content splits a note's raw text into a YAML header and a body.
package content

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// BOM is the byte order mark some editors prepend to UTF-8 files.
	BOM = "\ufeff"

	// DefaultMaxIgnoredChars is the number of characters that may precede
	// a front matter block which does not start at the first byte.
	DefaultMaxIgnoredChars = 1024

	startMarker    = "---"
	preambleMarker = "\n\n---"
)

// Split separates s into a trimmed header and an untrimmed body using
// DefaultFormat. It never fails: content without a recognisable header is
// returned whole as body.
func Split(s string) (header, body string) {
	return DefaultFormat.Split(s)
}

// Split separates s into a trimmed header and an untrimmed body.
func (f Format) Split(s string) (header, body string) {
	s = strings.TrimPrefix(s, BOM)
	hs, he, bs := f.bounds(s)
	return s[hs:he], s[bs:]
}

// bounds locates the header and body inside s, which must already be free
// of a BOM. header is s[hs:he], body is s[bs:].
func (f Format) bounds(s string) (hs, he, bs int) {
	if s == "" || IsHTML(s) {
		return 0, 0, 0
	}

	var start int
	if strings.HasPrefix(s, startMarker) {
		start = len(startMarker)
	} else {
		// The marker must begin within the first MaxIgnoredChars characters.
		limit := byteOffset(s, f.maxIgnoredChars())
		window := s[:min(len(s), limit+len(preambleMarker)-1)]
		i := strings.Index(window, preambleMarker)
		if i < 0 {
			return 0, 0, 0
		}
		start = i + len(preambleMarker)
	}

	// "---" must be followed by whitespace, otherwise "---first" would open a header.
	r, size := utf8.DecodeRuneInString(s[start:])
	if size == 0 || !unicode.IsSpace(r) {
		return 0, 0, 0
	}

	rest := s[start:]
	end := strings.Index(rest, "\n---")
	if i := strings.Index(rest, "\n..."); i >= 0 && (end < 0 || i < end) {
		end = i
	}
	if end < 0 {
		return 0, 0, 0
	}
	end += start

	bs = end + len("\n---")
	for bs < len(s) && (s[bs] == ' ' || s[bs] == '\t') {
		bs++
	}
	if bs < len(s) && s[bs] == '\n' {
		bs++
	}

	raw := s[start:end]
	lead := len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
	trail := len(strings.TrimRightFunc(raw, unicode.IsSpace))
	if trail <= lead {
		return start, start, bs
	}
	return start + lead, start + trail, bs
}

func (f Format) maxIgnoredChars() int {
	if f.MaxIgnoredChars <= 0 {
		return DefaultMaxIgnoredChars
	}
	return f.MaxIgnoredChars
}

// byteOffset returns the byte index of the n-th rune of s, or len(s).
func byteOffset(s string, n int) int {
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}

// IsHTML reports whether s looks like an HTML document. HTML never carries
// a YAML header.
func IsHTML(s string) bool {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	line, _, _ := strings.Cut(s, "\n")
	line = strings.ToLower(strings.TrimSpace(line))
	return strings.HasPrefix(line, "<!doctype html") || strings.HasPrefix(line, "<html")
}

// isEmptyHTML reports whether s holds nothing but an HTML doctype.
func isEmptyHTML(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < len("<!doctype html") || !strings.EqualFold(s[:len("<!doctype html")], "<!doctype html") {
		return false
	}
	rest := strings.TrimSpace(s[len("<!doctype html"):])
	return rest == ">"
}

// Package filename turns arbitrary strings into portable file names and
// resolves name collisions with copy counters.
package filename

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Sanitizer maps arbitrary text to a string that is safe as a path
// segment on Windows, Unix and in URLs at the same time.
type Sanitizer struct {
	// ToUnderscore lists characters replaced by '_'.
	ToUnderscore string `yaml:"to_underscore"`
	// ToSpace lists characters replaced by ' '.
	ToSpace string `yaml:"to_space"`
	// LineJoin joins the sanitised lines of multi-line input.
	LineJoin string `yaml:"line_join"`
	// AlphaMarker is prepended by AlphaPath when the result starts with a digit.
	AlphaMarker string `yaml:"alpha_marker"`
}

// DefaultSanitizer holds the default character classes.
var DefaultSanitizer = Sanitizer{
	ToUnderscore: `:\/|?~,;=`,
	ToSpace:      "<>\"*#%{}^[]+`",
	LineJoin:     "-",
	AlphaMarker:  "'",
}

// Path sanitises s. Lines are processed one by one: whitespace becomes a
// plain space, control characters are dropped, the two character classes
// are replaced, and every line is trimmed of whitespace, '_' and '-'
// before the lines are joined and trimmed again.
func (s Sanitizer) Path(in string) string {
	var out []string
	for _, line := range strings.Split(in, "\n") {
		var b strings.Builder
		b.Grow(len(line))
		for _, r := range line {
			switch {
			case unicode.IsSpace(r):
				b.WriteByte(' ')
			case unicode.IsControl(r):
			case strings.ContainsRune(s.ToUnderscore, r):
				b.WriteByte('_')
			case strings.ContainsRune(s.ToSpace, r):
				b.WriteByte(' ')
			default:
				b.WriteRune(r)
			}
		}
		if l := trimSeparators(b.String()); l != "" {
			out = append(out, l)
		}
	}
	return norm.NFC.String(trimSeparators(strings.Join(out, s.LineJoin)))
}

// AlphaPath is Path, prefixed with AlphaMarker when the result starts with
// a decimal digit, so that it can never be mistaken for a number or a
// sort tag.
func (s Sanitizer) AlphaPath(in string) string {
	p := s.Path(in)
	if p != "" && p[0] >= '0' && p[0] <= '9' {
		return s.AlphaMarker + p
	}
	return p
}

func trimSeparators(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	})
}

// SplitSortTag separates a leading sort tag (digits, '_' and '-') from the
// rest of a file stem. A run without any digit is not a sort tag. The
// separator after the tag and a following alpha marker are removed.
func SplitSortTag(stem, alphaMarker string) (tag, rest string) {
	i := strings.IndexFunc(stem, func(r rune) bool { return !isSortTagRune(r) })
	if i < 0 {
		i = len(stem)
	}
	tag, rest = stem[:i], stem[i:]
	if strings.IndexFunc(tag, unicode.IsDigit) < 0 {
		tag, rest = "", stem
	}
	tag = strings.TrimRight(tag, "_-")
	if alphaMarker != "" {
		rest = strings.TrimPrefix(rest, alphaMarker)
	}
	return tag, rest
}

func isSortTagRune(r rune) bool {
	return (r >= '0' && r <= '9') || r == '_' || r == '-'
}

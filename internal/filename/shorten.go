package filename

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultLenMax bounds the byte length of a file name. Most file systems
// allow 255 bytes; the rest is kept free for a copy counter.
const DefaultLenMax = 240

// unnamed replaces a stem that sanitising left empty.
const unnamed = "Unnamed"

// illegal lists characters no file name may contain on any target system.
const illegal = `/\:*?"<>|`

var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// Shorten makes a rendered file name safe to create: it drops illegal and
// control characters, trims surrounding spaces and trailing dots, escapes
// Windows device names, and cuts the stem on a rune boundary so that the
// whole name fits in lenMax bytes.
func Shorten(name string, lenMax int) string {
	if lenMax <= 0 {
		lenMax = DefaultLenMax
	}

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(illegal, r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimRight(strings.TrimSpace(name), ". ")

	_, stem, ext := splitPath(name)
	if utf8.RuneCountInString(ext) > 1 && strings.ContainsRune(ext, ' ') {
		// "Dr. Who" has no extension.
		stem, ext = stem+ext, ""
	}
	stem = strings.TrimSpace(stem)
	if stem == "" {
		stem = unnamed
	}
	if _, ok := reservedNames[strings.ToUpper(stem)]; ok {
		stem = "_" + stem
	}

	budget := lenMax - len(ext)
	if budget < 1 {
		budget = 1
	}
	if len(stem) > budget {
		cut := 0
		for i := range stem {
			if i > budget {
				break
			}
			cut = i
		}
		if cut == 0 {
			_, size := utf8.DecodeRuneInString(stem)
			cut = size
		}
		stem = strings.TrimSpace(stem[:cut])
	}
	return stem + ext
}

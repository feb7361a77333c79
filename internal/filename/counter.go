package filename

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// NoFreeFileNameError is returned when every copy counter up to the
// maximum is taken. It is not retried; the directory needs cleaning up.
type NoFreeFileNameError struct {
	Dir string
}

func (e *NoFreeFileNameError) Error() string {
	return fmt.Sprintf("no free file name left in directory %s; remove or rename some of its copies", e.Dir)
}

// CopyCounter is the numeric suffix inserted before the file extension to
// tell otherwise identical names apart: "note.md", "note--1.md", ...
type CopyCounter struct {
	Separator string `yaml:"separator"`
	Max       int    `yaml:"max"`
}

// DefaultCopyCounter is the default counter format.
var DefaultCopyCounter = CopyCounter{Separator: "--", Max: 400}

// Split separates the counter from stem. ok is false when stem carries none.
func (c CopyCounter) Split(stem string) (base string, n int, ok bool) {
	i := strings.LastIndex(stem, c.Separator)
	if c.Separator == "" || i < 0 {
		return stem, 0, false
	}
	digits := stem[i+len(c.Separator):]
	if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return stem, 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return stem, 0, false
	}
	return stem[:i], n, true
}

// Strip removes the counter from the file name in path.
func (c CopyCounter) Strip(path string) string {
	dir, stem, ext := splitPath(path)
	base, _, _ := c.Split(stem)
	return filepath.Join(dir, base+ext)
}

// With returns path with its counter replaced by n.
func (c CopyCounter) With(path string, n int) string {
	dir, stem, ext := splitPath(path)
	base, _, _ := c.Split(stem)
	return filepath.Join(dir, base+c.Separator+strconv.Itoa(n)+ext)
}

// EqualIgnoringCounter reports whether a and b name the same file once
// their copy counters are removed.
func (c CopyCounter) EqualIgnoringCounter(a, b string) bool {
	return filepath.Clean(c.Strip(a)) == filepath.Clean(c.Strip(b))
}

// NextUnused returns path when nothing exists there. Otherwise it tries
// counters 1..Max on the counter-free name and returns the first unused
// one.
func (c CopyCounter) NextUnused(path string, exists func(string) (bool, error)) (string, error) {
	taken, err := exists(path)
	if err != nil {
		return "", err
	}
	if !taken {
		return path, nil
	}
	for n := 1; n <= c.Max; n++ {
		candidate := c.With(path, n)
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", &NoFreeFileNameError{Dir: filepath.Dir(path)}
}

// splitPath splits path into directory, stem and extension (with dot).
func splitPath(path string) (dir, stem, ext string) {
	dir, name := filepath.Split(path)
	ext = filepath.Ext(name)
	return dir, strings.TrimSuffix(name, ext), ext
}

package filename

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestPath(t *testing.T) {
	s := DefaultSanitizer
	cases := map[string]string{
		"abc:\\/|?~,;=efg":       "abc_________efg",
		"My  first\tchapter":     "My  first chapter",
		"<a>\"b\"*#%{c}^[d]+`e`": "a  b     c   d   e",
		"  --_title_--  ":        "title",
		"line one\nline two":     "line one-line two",
		"line one\n\n-two-\n":    "line one-two",
		"bell\x07char":           "bellchar",
		"Cafe\u0301":             "Caf\u00e9",
		"":                       "",
	}
	for in, want := range cases {
		if got := s.Path(in); got != want {
			t.Errorf("Path(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAlphaPath(t *testing.T) {
	s := DefaultSanitizer
	got := s.AlphaPath("1. My first: chapter")
	if !strings.HasPrefix(got, "'") {
		t.Errorf("AlphaPath = %q, want leading quote", got)
	}
	if got != "'1. My first_ chapter" {
		t.Errorf("AlphaPath = %q", got)
	}
	if got := s.AlphaPath("My chapter 1"); got != "My chapter 1" {
		t.Errorf("AlphaPath = %q", got)
	}
	if got := s.AlphaPath(""); got != "" {
		t.Errorf("AlphaPath(empty) = %q", got)
	}
}

func TestSplitSortTag(t *testing.T) {
	cases := []struct {
		stem, tag, rest string
	}{
		{"20231018-My note", "20231018", "My note"},
		{"2023-10-18-'1. chapter", "2023-10-18", "1. chapter"},
		{"'1. chapter", "", "1. chapter"},
		{"My note", "", "My note"},
		{"-_-note", "", "-_-note"},
		{"123", "123", ""},
	}
	for _, tc := range cases {
		tag, rest := SplitSortTag(tc.stem, "'")
		if tag != tc.tag || rest != tc.rest {
			t.Errorf("SplitSortTag(%q) = (%q, %q), want (%q, %q)", tc.stem, tag, rest, tc.tag, tc.rest)
		}
	}
}

func TestCopyCounter_Split(t *testing.T) {
	c := DefaultCopyCounter
	cases := []struct {
		stem string
		base string
		n    int
		ok   bool
	}{
		{"note--2", "note", 2, true},
		{"note", "note", 0, false},
		{"title--subtitle", "title--subtitle", 0, false},
		{"title--subtitle--12", "title--subtitle", 12, true},
		{"note--", "note--", 0, false},
	}
	for _, tc := range cases {
		base, n, ok := c.Split(tc.stem)
		if base != tc.base || n != tc.n || ok != tc.ok {
			t.Errorf("Split(%q) = (%q, %d, %v)", tc.stem, base, n, ok)
		}
	}
}

func TestCopyCounter_WithAndEqual(t *testing.T) {
	c := DefaultCopyCounter
	p := filepath.Join("dir", "note--2.md")
	if got := c.With(p, 5); got != filepath.Join("dir", "note--5.md") {
		t.Errorf("With = %q", got)
	}
	if got := c.Strip(p); got != filepath.Join("dir", "note.md") {
		t.Errorf("Strip = %q", got)
	}
	if !c.EqualIgnoringCounter(p, filepath.Join("dir", "note.md")) {
		t.Error("note--2.md and note.md should be equal ignoring counter")
	}
	if c.EqualIgnoringCounter(p, filepath.Join("dir", "other--2.md")) {
		t.Error("different stems must not be equal")
	}
	if c.EqualIgnoringCounter(p, filepath.Join("dir", "note--2.txt")) {
		t.Error("different extensions must not be equal")
	}
}

func TestCopyCounter_NextUnused(t *testing.T) {
	c := CopyCounter{Separator: "--", Max: 3}
	taken := map[string]bool{
		"note.md":    true,
		"note--1.md": true,
		"note--3.md": true,
	}
	exists := func(p string) (bool, error) { return taken[p], nil }

	if got, _ := c.NextUnused("free.md", exists); got != "free.md" {
		t.Errorf("unused path should be kept, got %q", got)
	}
	got, err := c.NextUnused("note.md", exists)
	if err != nil || got != "note--2.md" {
		t.Errorf("NextUnused = %q, %v; want lowest gap note--2.md", got, err)
	}
	got, err = c.NextUnused("note--1.md", exists)
	if err != nil || got != "note--2.md" {
		t.Errorf("NextUnused from counter = %q, %v", got, err)
	}

	taken["note--2.md"] = true
	_, err = c.NextUnused("note.md", exists)
	var nf *NoFreeFileNameError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NoFreeFileNameError", err)
	}
	if nf.Dir != "." {
		t.Errorf("Dir = %q", nf.Dir)
	}
}

func TestCopyCounter_NextUnusedPropagatesErrors(t *testing.T) {
	boom := errors.New("permission denied")
	_, err := DefaultCopyCounter.NextUnused("x.md", func(string) (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestShorten(t *testing.T) {
	cases := map[string]string{
		"note.md":          "note.md",
		"  a:b*c?.md ":     "abc.md",
		"con.md":           "_con.md",
		".md":              "Unnamed.md",
		"trailing dots...": "trailing dots",
		"Dr. Who":          "Dr. Who",
		"tab\there.md":     "tabhere.md",
	}
	for in, want := range cases {
		if got := Shorten(in, 0); got != want {
			t.Errorf("Shorten(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShorten_Length(t *testing.T) {
	long := strings.Repeat("ä", 100) + ".md"
	got := Shorten(long, 21)
	if len(got) > 21 {
		t.Errorf("len = %d > 21: %q", len(got), got)
	}
	if !strings.HasSuffix(got, ".md") {
		t.Errorf("extension lost: %q", got)
	}
	if got != strings.Repeat("ä", 9)+".md" {
		t.Errorf("Shorten = %q", got)
	}
}

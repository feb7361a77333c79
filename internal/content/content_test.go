package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		header string
		body   string
	}{
		{"empty", "", "", ""},
		{"bom only", BOM, "", ""},
		{"plain text", "plain text", "", "plain text"},
		{"simple", "---\nfirst\n---\nsecond\nthird", "first", "second\nthird"},
		{"bom stripped", BOM + "---\nfirst\n---\nsecond", "first", "second"},
		{"marker without whitespace", "---first\n---\nsecond\nthird", "", "---first\n---\nsecond\nthird"},
		{"tab after marker", "---\tfirst\n---\nsecond\nthird", "first", "second\nthird"},
		{"space after marker, dots end", "--- first\n...\nsecond\nthird", "first", "second\nthird"},
		{"header trimmed", "---\n\nfirst\n\n---\nsecond\nthird", "first", "second\nthird"},
		{"body not trimmed", "---\nfirst\n---\n\nsecond\nthird\n", "first", "\nsecond\nthird\n"},
		{"spaces after end marker", "---\nfirst\n---  \t\nsecond", "first", "second"},
		{"no end marker", "---\nfirst\nsecond", "", "---\nfirst\nsecond"},
		{"empty lines before header", "\n\n\n\n---\nfirst\n---\nsecond\nthird", "first", "second\nthird"},
		{"text before header", "preamble\n\n---\nfirst\n---\nsecond", "first", "second"},
		{"empty header", "---\n---\nbody", "", "body"},
		{"earliest end marker wins", "---\nfirst\n...\nmid\n---\nlast", "first", "mid\n---\nlast"},
		{"html is never split", "<!DOCTYPE html>\n---\na: b\n---\n", "", "<!DOCTYPE html>\n---\na: b\n---\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, b := Split(tc.input)
			if h != tc.header {
				t.Errorf("header = %q, want %q", h, tc.header)
			}
			if b != tc.body {
				t.Errorf("body = %q, want %q", b, tc.body)
			}
		})
	}
}

func TestSplit_PreambleBound(t *testing.T) {
	const doc = "\n\n---\nfirst\n---\nsecond"

	for _, f := range []Format{DefaultFormat, {MaxIgnoredChars: 10}} {
		n := f.maxIgnoredChars()

		in := strings.Repeat(" ", n-1) + doc
		if h, b := f.Split(in); h != "first" || b != "second" {
			t.Errorf("n=%d, %d chars before marker: got (%q, %q)", n, n-1, h, b)
		}

		in = strings.Repeat(" ", n) + doc
		if h, b := f.Split(in); h != "" || b != in {
			t.Errorf("n=%d, %d chars before marker: header %q should be empty", n, n, h)
		}
	}
}

func TestSplit_PreambleBoundCountsCharacters(t *testing.T) {
	f := Format{MaxIgnoredChars: 10}
	in := strings.Repeat("ä", 9) + "\n\n---\nfirst\n---\nsecond"
	if h, _ := f.Split(in); h != "first" {
		t.Errorf("multi-byte preamble: header = %q, want %q", h, "first")
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	docs := []string{
		"---\ntitle: a\n---\nbody\n",
		"---\n\ntitle: a\nsubtitle: b\n\n---\n\n\nbody\nmore",
		BOM + "--- \ntitle: \"x\"\n...\n# heading\n",
	}
	for _, d := range docs {
		h, b := Split(d)
		if h == "" {
			t.Fatalf("expected a header in %q", d)
		}
		rebuilt := BOM + "---\n" + h + "\n---\n" + b
		h2, b2 := Split(rebuilt)
		if h2 != h || b2 != b {
			t.Errorf("round trip of %q: got (%q, %q), want (%q, %q)", d, h2, b2, h, b)
		}
	}
}

func TestFromString_NormalisesCRLF(t *testing.T) {
	d := FromString(BOM + "---\r\ntitle: a\r\n---\r\nline1\r\nline2\r\n")
	if d.Header() != "title: a" {
		t.Errorf("header = %q", d.Header())
	}
	if d.Body() != "line1\nline2\n" {
		t.Errorf("body = %q", d.Body())
	}
	if strings.HasPrefix(d.String(), BOM) {
		t.Error("BOM should be stripped from the buffer")
	}
}

func TestIsEmpty(t *testing.T) {
	cases := map[string]bool{
		"":                        true,
		BOM:                       true,
		"<!DOCTYPE html>":         true,
		"<!doctype html>\n":       true,
		"<!DOCTYPE html><p>x</p>": false,
		"---\ntitle: a\n---\n":    false,
		"body":                    false,
		"---\n---\n":              true,
	}
	for in, want := range cases {
		if got := FromString(in).IsEmpty(); got != want {
			t.Errorf("IsEmpty(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestBytes_NewlinePolicy(t *testing.T) {
	lf := Format{Newline: NewlineLF}.FromString("---\ntitle: a\n---\nbody\nmore")
	if got := string(lf.Bytes()); got != BOM+"---\ntitle: a\n---\nbody\nmore\n" {
		t.Errorf("lf = %q", got)
	}

	crlf := Format{Newline: NewlineCRLF}.FromString("---\ntitle: a\n---\nbody\n")
	if got := string(crlf.Bytes()); got != BOM+"---\r\ntitle: a\r\n---\r\nbody\r\n" {
		t.Errorf("crlf = %q", got)
	}

	noHeader := Format{Newline: NewlineLF}.FromString("just body\n")
	if got := string(noHeader.Bytes()); got != BOM+"just body\n" {
		t.Errorf("no header = %q", got)
	}
}

func TestSaveAsAndOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "note.md")
	f := Format{Newline: NewlineCRLF}
	d := f.FromParts("title: Hello", "# Hello\n\ntext\n")
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(raw), BOM+"---\r\n") {
		t.Errorf("saved file should start with BOM and CRLF delimiter: %q", raw)
	}

	back, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if back.Header() != "title: Hello" {
		t.Errorf("header = %q", back.Header())
	}
	if back.Body() != "# Hello\n\ntext\n" {
		t.Errorf("body = %q", back.Body())
	}
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(filepath.Join(dir, "missing.md")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.md")
	_ = os.WriteFile(bad, []byte{0xff, 0xfe, 0x00, 'a'}, 0o644)
	if _, err := Open(bad); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("err = %v, want ErrInvalidUTF8", err)
	}
}

func TestIsHTML(t *testing.T) {
	if !IsHTML("  \n<!DOCTYPE HTML>\n<html>") {
		t.Error("doctype should be detected")
	}
	if !IsHTML("<html lang=\"en\">") {
		t.Error("html tag should be detected")
	}
	if IsHTML("# <html>") {
		t.Error("markdown heading is not HTML")
	}
}

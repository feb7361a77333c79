package render

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/fmnote/internal/apperr"
	"github.com/starford/fmnote/internal/config"
	"github.com/starford/fmnote/internal/content"
	"github.com/starford/fmnote/internal/filename"
	"github.com/starford/fmnote/internal/note"
	"github.com/starford/fmnote/internal/notectx"
	"github.com/starford/fmnote/internal/templatekind"
)

func loadNote(t *testing.T, cfg *config.Config, path, text string) *note.Note {
	t.Helper()
	ctx := notectx.New(path, false, filename.DefaultSanitizer)
	n, err := note.FromTextFile(note.NewEnv(cfg), ctx, content.FromString(text), templatekind.None)
	if err != nil {
		t.Fatalf("FromTextFile: %v", err)
	}
	return n
}

func TestBody_Markdown(t *testing.T) {
	cfg := config.NewDefaultConfig()
	r := New(cfg)
	n := loadNote(t, cfg, "/n/a.md", "---\ntitle: A\n---\n# Heading\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\nText[^1]\n\n[^1]: note\n")

	body, err := r.Body(n, "/n/a.md")
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	for _, want := range []string{`<h1 id="heading">Heading</h1>`, "<table>", "footnote"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestBody_Families(t *testing.T) {
	cfg := config.NewDefaultConfig()
	r := New(cfg)

	n := loadNote(t, cfg, "/n/a.txt", "a < b\n")
	body, err := r.Body(n, "/n/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "a &lt; b") || !strings.HasPrefix(string(body), "<pre") {
		t.Errorf("text body = %q", body)
	}

	n = loadNote(t, cfg, "/n/a.htmlnote", "<p>raw</p>")
	if body, _ := r.Body(n, "/n/a.htmlnote"); string(body) != "<p>raw</p>" {
		t.Errorf("html body = %q", body)
	}

	n = loadNote(t, cfg, "/n/a.adoc", "= Title")
	if _, err := r.Body(n, "/n/a.adoc"); !errors.Is(err, apperr.ErrNoViewer) {
		t.Errorf("err = %v, want ErrNoViewer", err)
	}
	if _, err := r.Body(n, "/n/a.jpg"); !errors.Is(err, apperr.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestPage(t *testing.T) {
	cfg := config.NewDefaultConfig()
	r := New(cfg)
	n := loadNote(t, cfg, "/n/a.md", "---\ntitle: \"Tom & Jerry\"\nsubtitle: Note\nlang: de-DE\n---\nhello\n")

	page, err := r.Page(n, "/n/a.md", PageOptions{EventsURL: "/events"})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	s := string(page)
	for _, want := range []string{
		"<title>Tom &amp; Jerry</title>",
		`<html lang="de-DE">`,
		`<p class="subtitle">Note</p>`,
		"<p>hello</p>",
		"EventSource",
		`<pre id="note-error">`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("page missing %q", want)
		}
	}

	plain, err := r.Page(n, "/n/a.md", PageOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(plain), "EventSource") || strings.Contains(string(plain), "note-error") {
		t.Error("live reload script without events URL")
	}
}

func TestExport(t *testing.T) {
	cfg := config.NewDefaultConfig()
	r := New(cfg)
	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	n := loadNote(t, cfg, path, "---\ntitle: A\n---\n*x*\n")

	out, err := r.Export(n, path, "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if out != path+".html" {
		t.Errorf("out = %q", out)
	}

	target := filepath.Join(t.TempDir(), "site")
	out, err = r.Export(n, path, target)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(out) != target || !strings.Contains(string(data), "<em>x</em>") {
		t.Errorf("export %q = %q", out, data)
	}
}

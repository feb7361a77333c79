package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/fmnote/internal/content"
	"github.com/starford/fmnote/internal/templatekind"
	pkgconfig "github.com/starford/fmnote/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestHTTPConfig_Validate(t *testing.T) {
	for _, port := range []int{0, 8080, 65535} {
		c := HTTPConfig{Port: port}
		if err := c.Validate(); err != nil {
			t.Errorf("port %d should pass: %v", port, err)
		}
	}
	for _, port := range []int{-1, 65536} {
		c := HTTPConfig{Port: port}
		if err := c.Validate(); err == nil {
			t.Errorf("port %d should fail", port)
		}
	}
	c := HTTPConfig{Host: "127.0.0.1", Port: 3000}
	if c.Address() != "127.0.0.1:3000" {
		t.Errorf("Address = %q", c.Address())
	}
}

func TestContentConfig_Validate(t *testing.T) {
	c := ContentConfig{MaxIgnoredChars: 10, Newline: "cr"}
	if err := c.Validate(); err == nil {
		t.Error("unknown newline should fail")
	}
	c = ContentConfig{MaxIgnoredChars: 0, Newline: content.NewlineLF}
	if err := c.Validate(); err == nil {
		t.Error("zero preamble bound should fail")
	}
	c = ContentConfig{MaxIgnoredChars: 10, Newline: content.NewlineCRLF}
	if f := c.Format(); f.MaxIgnoredChars != 10 || f.Newline != content.NewlineCRLF {
		t.Errorf("Format = %+v", f)
	}
}

func TestFilenameConfig_Validate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Filename.CopyCounterSeparator = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty copy counter separator should fail")
	}

	cfg = NewDefaultConfig()
	cfg.Filename.LenMax = 1000
	if err := cfg.Validate(); err == nil {
		t.Error("len_max above 255 should fail")
	}

	cfg = NewDefaultConfig()
	cfg.Filename.ExtensionDefault = "docx"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "docx") {
		t.Errorf("unregistered default extension should fail, got %v", err)
	}
}

func TestExtensions(t *testing.T) {
	e := NewDefaultConfig().Extensions
	cases := map[string]Family{
		"md":       FamilyMarkdown,
		".MD":      FamilyMarkdown,
		"rst":      FamilyRestructuredText,
		"htmlnote": FamilyHTML,
		"txt":      FamilyText,
		"adoc":     FamilyNoViewer,
		"jpg":      FamilyUnknown,
		"":         FamilyUnknown,
	}
	for ext, want := range cases {
		if got := e.Family(ext); got != want {
			t.Errorf("Family(%q) = %q, want %q", ext, got, want)
		}
	}
	if !e.IsNote("markdown") || e.IsNote("png") {
		t.Error("IsNote mismatch")
	}
	if len(e.All()) == 0 {
		t.Error("All should list the defaults")
	}
}

func TestExtensions_Validate(t *testing.T) {
	e := ExtensionsConfig{Markdown: []string{"md"}, Text: []string{"md"}}
	if err := e.Validate(); err == nil {
		t.Error("duplicate extension should fail")
	}
	e = ExtensionsConfig{Markdown: []string{".md"}}
	if err := e.Validate(); err == nil {
		t.Error("leading dot should fail")
	}
	e = ExtensionsConfig{}
	if err := e.Validate(); err == nil {
		t.Error("markdown extensions are required")
	}
}

func TestRules(t *testing.T) {
	cfg := NewDefaultConfig()
	r := cfg.Rules()
	if r.CompulsoryField != "title" {
		t.Errorf("CompulsoryField = %q", r.CompulsoryField)
	}
	if len(r.Extensions) != len(cfg.Extensions.All()) {
		t.Errorf("Extensions = %v", r.Extensions)
	}
}

func TestTemplates_Get(t *testing.T) {
	tc := DefaultTemplates()
	for k := templatekind.None; k <= templatekind.SyncFilename; k++ {
		for _, key := range []string{k.ContentTemplateVar(), k.FilenameTemplateVar()} {
			if key == "" {
				continue
			}
			text, err := tc.Get(key)
			if err != nil {
				t.Errorf("Get(%q): %v", key, err)
			}
			if strings.TrimSpace(text) == "" {
				t.Errorf("template %q is empty", key)
			}
		}
	}
	if _, err := tc.Get("templates.unknown"); err == nil {
		t.Error("unknown key should fail")
	}

	cfg := NewDefaultConfig()
	cfg.Templates.SyncFilename = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty template should fail validation")
	}
}

func TestDefaultTemplates_ContentStartsWithHeader(t *testing.T) {
	tc := DefaultTemplates()
	for name, text := range map[string]string{
		"new":                 tc.NewContent,
		"from_clipboard_yaml": tc.FromClipboardYamlContent,
		"from_clipboard":      tc.FromClipboardContent,
		"from_text_file":      tc.FromTextFileContent,
		"annotate_file":       tc.AnnotateFileContent,
	} {
		if !strings.HasPrefix(text, "---\n") {
			t.Errorf("%s content template should start with a header: %q", name, text)
		}
		if strings.Contains(text, "\t") {
			t.Errorf("%s content template should not contain tabs", name)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fmnote.yaml")
	data := "app:\n  log_level: debug\ncontent:\n  newline: crlf\nfront_matter:\n  compulsory_field: \"\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.App.LogLevel)
	}
	if cfg.Content.Newline != content.NewlineCRLF {
		t.Errorf("Newline = %q", cfg.Content.Newline)
	}
	if cfg.FrontMatter.CompulsoryField != "" {
		t.Errorf("CompulsoryField = %q", cfg.FrontMatter.CompulsoryField)
	}
	if cfg.Content.MaxIgnoredChars != content.DefaultMaxIgnoredChars {
		t.Errorf("absent key should keep default, got %d", cfg.Content.MaxIgnoredChars)
	}
	if cfg.Templates.NewContent == "" {
		t.Error("templates should keep their defaults")
	}
}

func TestDumpRoundTrip(t *testing.T) {
	out, err := pkgconfig.Dump(NewDefaultConfig())
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	path := filepath.Join(t.TempDir(), "dump.yaml")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &Config{}
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load dumped config: %v", err)
	}
	if cfg.Templates.SyncFilename != DefaultTemplates().SyncFilename {
		t.Errorf("sync template not preserved: %q", cfg.Templates.SyncFilename)
	}
}

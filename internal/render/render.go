// Package render turns notes into HTML pages for preview and export.
package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/starford/fmnote/internal/apperr"
	"github.com/starford/fmnote/internal/config"
	"github.com/starford/fmnote/internal/note"
	"github.com/starford/fmnote/internal/storage"
)

// ExportExt is appended to a note's file name on export.
const ExportExt = ".html"

// PageOptions controls page decoration.
type PageOptions struct {
	// EventsURL enables the live-reload script listening on this SSE
	// endpoint. Empty disables it.
	EventsURL string
}

// Renderer converts note bodies according to their markup family.
type Renderer struct {
	extensions config.ExtensionsConfig
	md         goldmark.Markdown
}

// New creates a Renderer for the extension registry of cfg.
func New(cfg *config.Config) *Renderer {
	return &Renderer{
		extensions: cfg.Extensions,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.DefinitionList),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// Body renders the body of n, stored at path, to HTML.
func (r *Renderer) Body(n *note.Note, path string) (template.HTML, error) {
	body := n.Content.Body()
	switch fam := r.extensions.Family(filepath.Ext(path)); fam {
	case config.FamilyMarkdown:
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(body), &buf); err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
		return template.HTML(buf.String()), nil
	case config.FamilyHTML:
		return template.HTML(body), nil
	case config.FamilyRestructuredText, config.FamilyText:
		return template.HTML("<pre class=\"note-text\">" + html.EscapeString(body) + "</pre>"), nil
	case config.FamilyNoViewer:
		return "", fmt.Errorf("%s: %w", filepath.Base(path), apperr.ErrNoViewer)
	default:
		return "", fmt.Errorf("%s: %w", filepath.Base(path), apperr.ErrUnsupported)
	}
}

// Page renders n as a complete HTML document.
func (r *Renderer) Page(n *note.Note, path string, opts PageOptions) ([]byte, error) {
	body, err := r.Body(n, path)
	if err != nil {
		return nil, err
	}

	data := pageData{
		Title:     filepath.Base(path),
		FileName:  filepath.Base(path),
		Body:      body,
		EventsURL: opts.EventsURL,
	}
	if n.FrontMatter != nil {
		if t, ok := n.FrontMatter.String("title"); ok && t != "" {
			data.Title = t
		}
		data.Subtitle, _ = n.FrontMatter.String("subtitle")
		data.Author, _ = n.FrontMatter.String("author")
		data.Date, _ = n.FrontMatter.String("date")
		data.Lang, _ = n.FrontMatter.String("lang")
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

// Export writes the page of n, stored at path, into dir as
// "<file name>.html". An empty dir exports next to the note.
func (r *Renderer) Export(n *note.Note, path, dir string) (string, error) {
	page, err := r.Page(n, path, PageOptions{})
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = filepath.Dir(path)
	}
	out := filepath.Join(dir, filepath.Base(path)+ExportExt)
	if err := storage.WriteFile(out, page); err != nil {
		return "", err
	}
	return out, nil
}

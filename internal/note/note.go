// Package note builds notes from files or templates and gives them their
// final file names.
package note

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starford/fmnote/internal/config"
	"github.com/starford/fmnote/internal/content"
	"github.com/starford/fmnote/internal/filename"
	"github.com/starford/fmnote/internal/frontmatter"
	"github.com/starford/fmnote/internal/notectx"
	"github.com/starford/fmnote/internal/storage"
	"github.com/starford/fmnote/internal/templatekind"
	"github.com/starford/fmnote/internal/tmpl"
)

// Env carries the collaborators a Note works with.
type Env struct {
	Config    *config.Config
	Store     storage.Provider
	Templates tmpl.Renderer
	// NewContent builds the content of a rendered content template.
	NewContent func(raw string) content.Content
}

// NewEnv wires an Env on the local file system with the template engine
// and document format of cfg.
func NewEnv(cfg *config.Config) Env {
	format := cfg.Content.Format()
	return Env{
		Config:    cfg,
		Store:     storage.NewLocal(),
		Templates: tmpl.NewEngine(cfg.Filename.Sanitizer),
		NewContent: func(raw string) content.Content {
			return format.FromString(raw)
		},
	}
}

// Note is a document together with the variables its templates see.
// RenderedFilename is empty until RenderFilename ran.
type Note struct {
	env Env

	Content          content.Content
	FrontMatter      frontmatter.FrontMatter
	Context          *notectx.Context
	RenderedFilename string
}

// FromTextFile wraps the content of an existing note. Only SyncFilename
// and None are accepted; SyncFilename also enforces the compulsory field.
func FromTextFile(env Env, ctx *notectx.Context, c content.Content, kind templatekind.Kind) (*Note, error) {
	switch kind {
	case templatekind.SyncFilename, templatekind.None:
	default:
		panic(fmt.Sprintf("note: FromTextFile does not support template kind %v", kind))
	}

	n := &Note{env: env, Content: c, Context: ctx}
	if err := n.absorbHeader(kind == templatekind.SyncFilename); err != nil {
		return nil, err
	}
	return n, nil
}

// FromContentTemplate renders the content template of kind against ctx
// and wraps the result.
func FromContentTemplate(env Env, ctx *notectx.Context, kind templatekind.Kind) (*Note, error) {
	switch kind {
	case templatekind.New, templatekind.FromClipboardYaml, templatekind.FromClipboard,
		templatekind.FromTextFile, templatekind.AnnotateFile:
	default:
		panic(fmt.Sprintf("note: FromContentTemplate does not support template kind %v", kind))
	}

	raw, err := render(env, kind.ContentTemplateVar(), ctx)
	if err != nil {
		return nil, err
	}
	n := &Note{env: env, Content: env.NewContent(raw), Context: ctx}
	if err := n.absorbHeader(false); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Note) absorbHeader(compulsory bool) error {
	fm, err := frontmatter.Parse(n.Content.Header())
	if err != nil {
		return err
	}
	if err := fm.Validate(n.env.Config.Rules(), compulsory); err != nil {
		return err
	}
	n.FrontMatter = fm
	n.Context.InsertFrontMatter(fm)
	return nil
}

func render(env Env, key string, ctx *notectx.Context) (string, error) {
	text, err := env.Config.Templates.Get(key)
	if err != nil {
		return "", &tmpl.Error{Var: key, Err: err}
	}
	out, err := env.Templates.Render(key, text, ctx.Data())
	if err != nil {
		return "", &tmpl.Error{Var: key, Err: err}
	}
	return out, nil
}

// RenderFilename evaluates the filename template of kind and stores the
// sanitised result, joined with dir_path, as RenderedFilename. It must be
// called exactly once.
func (n *Note) RenderFilename(kind templatekind.Kind) error {
	if n.RenderedFilename != "" {
		panic("note: RenderFilename called twice")
	}
	key := kind.FilenameTemplateVar()
	if key == "" {
		panic(fmt.Sprintf("note: template kind %v has no filename template", kind))
	}

	out, err := render(n.env, key, n.Context)
	if err != nil {
		return err
	}
	name := filename.Shorten(strings.TrimSpace(out), n.env.Config.Filename.LenMax)
	n.RenderedFilename = filepath.Join(n.Context.String(notectx.KeyDirPath), name)
	return nil
}

// SetNextUnusedRenderedFilename moves RenderedFilename to the lowest copy
// counter not taken on disk.
func (n *Note) SetNextUnusedRenderedFilename() error {
	n.mustBeRendered("SetNextUnusedRenderedFilename")
	p, err := n.counter().NextUnused(n.RenderedFilename, n.env.Store.Exists)
	if err != nil {
		return err
	}
	n.RenderedFilename = p
	return nil
}

// SetNextUnusedRenderedFilenameOr adopts alt when it names the same file
// as RenderedFilename up to their copy counters, so an existing counter
// survives. Otherwise it searches like SetNextUnusedRenderedFilename.
func (n *Note) SetNextUnusedRenderedFilenameOr(alt string) error {
	n.mustBeRendered("SetNextUnusedRenderedFilenameOr")
	if n.counter().EqualIgnoringCounter(n.RenderedFilename, alt) {
		n.RenderedFilename = alt
		return nil
	}
	return n.SetNextUnusedRenderedFilename()
}

// Save writes the note to RenderedFilename.
func (n *Note) Save() error {
	n.mustBeRendered("Save")
	if err := n.Content.SaveAs(n.RenderedFilename); err != nil {
		return fmt.Errorf("save note: %w", err)
	}
	return nil
}

// RenameFileFrom moves from to RenderedFilename. Paths that only differ
// in their copy counter are left alone.
func (n *Note) RenameFileFrom(from string) error {
	n.mustBeRendered("RenameFileFrom")
	if n.counter().EqualIgnoringCounter(from, n.RenderedFilename) {
		return nil
	}
	if err := n.env.Store.Move(from, n.RenderedFilename); err != nil {
		return fmt.Errorf("rename note: %w", err)
	}
	return nil
}

// SaveAndDeleteFrom writes the note first and removes old afterwards, so
// a failure in between leaves both files rather than neither.
func (n *Note) SaveAndDeleteFrom(old string) error {
	if err := n.Save(); err != nil {
		return err
	}
	if filepath.Clean(old) == filepath.Clean(n.RenderedFilename) {
		return nil
	}
	if err := n.env.Store.Delete(old); err != nil {
		return fmt.Errorf("delete %s after saving %s: %w", old, n.RenderedFilename, err)
	}
	return nil
}

func (n *Note) counter() filename.CopyCounter {
	return n.env.Config.Filename.CopyCounter()
}

func (n *Note) mustBeRendered(op string) {
	if n.RenderedFilename == "" {
		panic("note: " + op + " called before RenderFilename")
	}
}

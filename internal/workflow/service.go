// Package workflow decides what to do with a path and carries it out.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/starford/fmnote/internal/apperr"
	"github.com/starford/fmnote/internal/content"
	"github.com/starford/fmnote/internal/frontmatter"
	"github.com/starford/fmnote/internal/note"
	"github.com/starford/fmnote/internal/notectx"
	"github.com/starford/fmnote/internal/templatekind"
)

// Context variable names of the input snapshots.
const (
	VarStdin     = "stdin"
	VarClipboard = "clipboard"
	// VarInput holds stdin when it has content, the clipboard otherwise.
	VarInput = "input"
	// VarDoc holds the existing text of a file gaining a header.
	VarDoc = "doc"
)

// Inputs are the snapshots and switches a run works with. Nil snapshots
// count as empty.
type Inputs struct {
	Stdin     content.Content
	Clipboard content.Content
	// NoFilenameSync leaves existing notes where they are.
	NoFilenameSync bool
}

// Input returns stdin when it has content, the clipboard otherwise.
func (in Inputs) Input() content.Content {
	if in.Stdin != nil && !in.Stdin.IsEmpty() {
		return in.Stdin
	}
	if in.Clipboard != nil && !in.Clipboard.IsEmpty() {
		return in.Clipboard
	}
	return nil
}

// Result describes the outcome of Run. Note is nil when the path is not
// a note.
type Result struct {
	Path string
	Kind templatekind.Kind
	Note *note.Note
}

// Service runs the note workflow.
type Service struct {
	env    note.Env
	getenv func(string) string
}

// NewService creates a workflow service. getenv is used to detect the
// user name and language; nil means os.Getenv.
func NewService(env note.Env, getenv func(string) string) *Service {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Service{env: env, getenv: getenv}
}

// Env returns the note environment the service works with.
func (s *Service) Env() note.Env {
	return s.env
}

// Run resolves path, decides the template kind and executes it.
func (s *Service) Run(ctx context.Context, path string, in Inputs) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%s: %w", abs, apperr.ErrNotFound)
		}
		return Result{}, fmt.Errorf("stat %s: %w", abs, err)
	}

	cfg := s.env.Config
	input := in.Input()
	facts := templatekind.Facts{
		PathIsDir:      info.IsDir(),
		PathIsFile:     info.Mode().IsRegular(),
		InputIsSome:    input != nil,
		InputHasHeader: input != nil && input.Header() != "",
	}

	var existing content.Content
	if facts.PathIsFile && cfg.Extensions.IsNote(filepath.Ext(abs)) {
		facts.PathIsNoteFile = true
		doc, err := cfg.Content.Format().Open(abs)
		if err != nil {
			return Result{}, err
		}
		existing = doc
		facts.PathIsNoteFileWithHeader = doc.Header() != ""
	}

	kind := templatekind.Decide(facts)
	nctx := s.newContext(abs, facts.PathIsDir, in, input)

	switch kind {
	case templatekind.New, templatekind.FromClipboard, templatekind.AnnotateFile:
		return s.create(nctx, kind)

	case templatekind.FromClipboardYaml:
		fm, err := frontmatter.Parse(input.Header())
		if err != nil {
			return Result{}, err
		}
		nctx.InsertFrontMatter(fm)
		return s.create(nctx, kind)

	case templatekind.FromTextFile:
		nctx.InsertContent(VarDoc, existing)
		n, err := note.FromContentTemplate(s.env, nctx, kind)
		if err != nil {
			return Result{}, err
		}
		if err := n.RenderFilename(kind); err != nil {
			return Result{}, err
		}
		if err := n.SetNextUnusedRenderedFilenameOr(abs); err != nil {
			return Result{}, err
		}
		if err := n.SaveAndDeleteFrom(abs); err != nil {
			return Result{}, err
		}
		return Result{Path: n.RenderedFilename, Kind: kind, Note: n}, nil

	case templatekind.SyncFilename:
		return s.sync(nctx, abs, existing, in.NoFilenameSync)

	default:
		res := Result{Path: abs, Kind: templatekind.None}
		if existing != nil {
			n, err := note.FromTextFile(s.env, nctx, existing, templatekind.None)
			if err != nil {
				return Result{}, err
			}
			res.Note = n
		}
		return res, nil
	}
}

// Load reads the note at path for display. Nothing is written and no
// template is applied.
func (s *Service) Load(path string) (*note.Note, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	cfg := s.env.Config
	if !cfg.Extensions.IsNote(filepath.Ext(abs)) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(abs), apperr.ErrUnsupported)
	}
	doc, err := cfg.Content.Format().Open(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", abs, apperr.ErrNotFound)
		}
		return nil, err
	}
	nctx := notectx.New(abs, false, cfg.Filename.Sanitizer)
	return note.FromTextFile(s.env, nctx, doc, templatekind.None)
}

func (s *Service) newContext(abs string, isDir bool, in Inputs, input content.Content) *notectx.Context {
	cfg := s.env.Config
	nctx := notectx.New(abs, isDir, cfg.Filename.Sanitizer)
	nctx.InsertEnvironment(notectx.DetectEnv(s.getenv, cfg.Filename.ExtensionDefault))
	nctx.InsertContent(VarStdin, orEmpty(in.Stdin))
	nctx.InsertContent(VarClipboard, orEmpty(in.Clipboard))
	nctx.InsertContent(VarInput, orEmpty(input))
	return nctx
}

func (s *Service) create(nctx *notectx.Context, kind templatekind.Kind) (Result, error) {
	n, err := note.FromContentTemplate(s.env, nctx, kind)
	if err != nil {
		return Result{}, err
	}
	if err := n.RenderFilename(kind); err != nil {
		return Result{}, err
	}
	if err := n.SetNextUnusedRenderedFilename(); err != nil {
		return Result{}, err
	}
	if err := n.Save(); err != nil {
		return Result{}, err
	}
	return Result{Path: n.RenderedFilename, Kind: kind, Note: n}, nil
}

func (s *Service) sync(nctx *notectx.Context, abs string, existing content.Content, disabled bool) (Result, error) {
	kind := templatekind.SyncFilename
	n, err := note.FromTextFile(s.env, nctx, existing, kind)
	if err != nil {
		return Result{}, err
	}
	if disabled || !n.FrontMatter.FilenameSync() {
		return Result{Path: abs, Kind: kind, Note: n}, nil
	}
	if err := n.RenderFilename(kind); err != nil {
		return Result{}, err
	}
	if err := n.SetNextUnusedRenderedFilenameOr(abs); err != nil {
		return Result{}, err
	}
	if err := n.RenameFileFrom(abs); err != nil {
		return Result{}, err
	}
	return Result{Path: n.RenderedFilename, Kind: kind, Note: n}, nil
}

func orEmpty(c content.Content) content.Content {
	if c == nil {
		return content.FromString("")
	}
	return c
}

// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the note workflow for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/fmnote/internal/apperr"
	"github.com/starford/fmnote/internal/content"
	"github.com/starford/fmnote/internal/pathlock"
	"github.com/starford/fmnote/internal/render"
	"github.com/starford/fmnote/internal/storage"
	"github.com/starford/fmnote/internal/templatekind"
	"github.com/starford/fmnote/internal/workflow"
)

// NoteFormatURI identifies the note format resource.
const NoteFormatURI = "fmnote://note-format"

// Server wraps the MCP server with the note tools. Every path a client
// passes is relative to the root directory.
type Server struct {
	mcp      *server.MCPServer
	svc      *workflow.Service
	renderer *render.Renderer
	root     *storage.Root
	locker   *pathlock.Locker
}

// New creates an MCP server working below root. A nil locker gets a
// private one.
func New(root *storage.Root, svc *workflow.Service, renderer *render.Renderer, locker *pathlock.Locker) *Server {
	if locker == nil {
		locker = &pathlock.Locker{}
	}
	s := &Server{svc: svc, renderer: renderer, root: root, locker: locker}

	s.mcp = server.NewMCPServer(
		"fmnote",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("sync_filename",
		mcp.WithDescription("Rename a note file so that its name matches its front matter "+
			"(sort tag, title, subtitle, file extension). Returns the new relative path."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of a note with a front matter header")),
		mcp.WithDestructiveHintAnnotation(true),
	), s.syncFilename)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note in a directory. Without text an empty note is created; "+
			"text with a YAML header keeps that header; other text becomes the body. "+
			"Read the note format first via get_note_contract or the "+NoteFormatURI+" resource."),
		mcp.WithString("dir", mcp.Description("Relative directory (empty for the root)")),
		mcp.WithString("text", mcp.Description("Optional note text")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("split_note",
		mcp.WithDescription("Split note text into its YAML header and body."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Complete note text")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.splitNote)

	s.mcp.AddTool(mcp.NewTool("render_html",
		mcp.WithDescription("Render a note file to a standalone HTML page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the note")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.renderHTML)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the note format contract. "+
			"Call this before creating notes to get the header fields right."),
	), s.getNoteContract)

	s.mcp.AddResource(
		mcp.NewResource(NoteFormatURI, "Note Format Contract",
			mcp.WithResourceDescription("Note header fields and how they map to file names."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type pathResult struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

func (s *Server) syncFilename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rel, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(s.describe(err)), nil
	}
	abs, err := s.root.Resolve(rel)
	if err != nil {
		return mcp.NewToolResultError(s.describe(err)), nil
	}

	unlock := s.locker.LockAll(filepath.Dir(abs), abs)
	defer unlock()

	doc, err := s.svc.Env().Config.Content.Format().Open(abs)
	if err != nil {
		return mcp.NewToolResultError(s.describe(err)), nil
	}
	if doc.Header() == "" {
		return mcp.NewToolResultError(fmt.Sprintf("%s has no front matter header", rel)), nil
	}

	res, err := s.svc.Run(ctx, abs, workflow.Inputs{})
	if err != nil {
		return mcp.NewToolResultError(s.describe(err)), nil
	}
	if res.Kind != templatekind.SyncFilename {
		return mcp.NewToolResultError(fmt.Sprintf("%s is not a note file", rel)), nil
	}
	return s.pathResult(res)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	abs, err := s.root.Resolve(req.GetString("dir", ""))
	if err != nil {
		return mcp.NewToolResultError(s.describe(err)), nil
	}
	if info, statErr := os.Stat(abs); statErr != nil || !info.IsDir() {
		return mcp.NewToolResultError(fmt.Sprintf("not a directory: %s", req.GetString("dir", ""))), nil
	}

	unlock := s.locker.Lock(abs)
	defer unlock()

	format := s.svc.Env().Config.Content.Format()
	res, err := s.svc.Run(ctx, abs, workflow.Inputs{Stdin: format.FromString(req.GetString("text", ""))})
	if err != nil {
		return mcp.NewToolResultError(s.describe(err)), nil
	}
	return s.pathResult(res)
}

func (s *Server) splitNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(s.describe(err)), nil
	}
	header, body := s.svc.Env().Config.Content.Format().Split(text)
	out, _ := json.MarshalIndent(map[string]string{"header": header, "body": body}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) renderHTML(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rel, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(s.describe(err)), nil
	}
	abs, err := s.root.Resolve(rel)
	if err != nil {
		return mcp.NewToolResultError(s.describe(err)), nil
	}

	unlock := s.locker.Lock(abs)
	defer unlock()

	n, err := s.svc.Load(abs)
	if err != nil {
		return mcp.NewToolResultError(s.describe(err)), nil
	}
	page, err := s.renderer.Page(n, abs, render.PageOptions{})
	if err != nil {
		return mcp.NewToolResultError(s.describe(err)), nil
	}
	return mcp.NewToolResultText(string(page)), nil
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NoteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

func (s *Server) pathResult(res workflow.Result) (*mcp.CallToolResult, error) {
	rel, err := s.root.Rel(res.Path)
	if err != nil {
		return mcp.NewToolResultError(s.describe(err)), nil
	}
	out, _ := json.MarshalIndent(pathResult{Path: rel, Kind: res.Kind.String()}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

// describe turns err into a message without absolute paths of the host.
// Paths below the root are shown relative to it.
func (s *Server) describe(err error) string {
	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return "not found"
	case errors.Is(err, content.ErrInvalidUTF8):
		return "file is not valid UTF-8"
	case errors.Is(err, apperr.ErrAlreadyExists):
		return "target file already exists"
	}
	msg := err.Error()
	dir := s.root.Dir()
	msg = strings.ReplaceAll(msg, dir+string(filepath.Separator), "")
	return strings.ReplaceAll(msg, dir, ".")
}

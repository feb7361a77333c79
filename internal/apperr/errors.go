// Package apperr holds sentinel errors shared by the command line, the
// preview server and the MCP server.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnsupported   = errors.New("unsupported file type")
	ErrNoViewer      = errors.New("no viewer for this markup")
	ErrOutsideRoot   = errors.New("path outside root")
)

package internal

import (
	"io"

	"github.com/starford/fmnote/internal/config"
	"github.com/starford/fmnote/internal/workflow"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *config.Config
	path   string
	inputs workflow.Inputs
	getenv func(string) string
	stdout io.Writer
	stderr io.Writer

	view      bool
	export    bool
	exportDir string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithPath sets the directory or file to work on.
func WithPath(path string) Option {
	return func(a *application) {
		a.path = path
	}
}

// WithInputs sets the stdin and clipboard snapshots and workflow switches.
func WithInputs(in workflow.Inputs) Option {
	return func(a *application) {
		a.inputs = in
	}
}

// WithGetenv replaces os.Getenv for user and language detection.
func WithGetenv(getenv func(string) string) Option {
	return func(a *application) {
		a.getenv = getenv
	}
}

// WithOutput sets where the resulting path is printed and where logs go.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *application) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithView serves a live preview of the resulting note until the context
// is cancelled or a signal arrives.
func WithView() Option {
	return func(a *application) {
		a.view = true
	}
}

// WithExport writes the resulting note as HTML into dir. An empty dir
// exports next to the note.
func WithExport(dir string) Option {
	return func(a *application) {
		a.export = true
		a.exportDir = dir
	}
}

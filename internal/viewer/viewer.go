// Package viewer serves a live-reloading HTML preview of one note and keeps
// its filename in sync while it is being edited.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/starford/fmnote/internal/apperr"
	"github.com/starford/fmnote/internal/checksum"
	"github.com/starford/fmnote/internal/note"
	"github.com/starford/fmnote/internal/pathlock"
	"github.com/starford/fmnote/internal/render"
	"github.com/starford/fmnote/internal/sse"
	"github.com/starford/fmnote/internal/storage"
	"github.com/starford/fmnote/internal/workflow"
)

// EventsPath is the SSE endpoint the preview page listens on.
const EventsPath = "/events"

const defaultDebounce = 100 * time.Millisecond

// Params configures a Viewer.
type Params struct {
	Service  *workflow.Service
	Renderer *render.Renderer
	Broker   *sse.Broker
	Locker   *pathlock.Locker
	Logger   *slog.Logger

	// NoFilenameSync disables renaming while previewing.
	NoFilenameSync bool
	// Debounce delays processing after the last file event. Zero means
	// 100ms.
	Debounce time.Duration
}

// Viewer tracks a single note file. The file may move when its header
// changes; the viewer follows it inside its directory.
type Viewer struct {
	svc      *workflow.Service
	renderer *render.Renderer
	broker   *sse.Broker
	locker   *pathlock.Locker
	logger   *slog.Logger
	root     *storage.Root
	noSync   bool
	debounce time.Duration

	mu   sync.RWMutex
	path string
	note *note.Note
	sum  checksum.Digest
}

// New creates a viewer for the note at path.
func New(path string, p Params) (*Viewer, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("viewer: resolve %s: %w", path, err)
	}
	root, err := storage.NewRoot(filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	if p.Locker == nil {
		p.Locker = &pathlock.Locker{}
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Debounce <= 0 {
		p.Debounce = defaultDebounce
	}
	return &Viewer{
		svc:      p.Service,
		renderer: p.Renderer,
		broker:   p.Broker,
		locker:   p.Locker,
		logger:   p.Logger,
		root:     root,
		noSync:   p.NoFilenameSync,
		debounce: p.Debounce,
		path:     abs,
	}, nil
}

// Path returns the current location of the note.
func (v *Viewer) Path() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.path
}

func (v *Viewer) current() (string, *note.Note) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.path, v.note
}

// Refresh re-reads the note and, when its bytes changed since the last
// refresh, runs the workflow on it and notifies preview clients. A failed
// run keeps the last good rendering.
func (v *Viewer) Refresh(ctx context.Context) error {
	v.mu.RLock()
	path, last := v.path, v.sum
	v.mu.RUnlock()

	unlock := v.locker.Lock(path)
	defer unlock()

	data, err := v.svc.Env().Store.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, apperr.ErrNotFound)
		}
		return err
	}
	sum := checksum.Sum(data)
	if sum == last {
		return nil
	}

	res, err := v.svc.Run(ctx, path, workflow.Inputs{NoFilenameSync: v.noSync})
	if err != nil {
		v.mu.Lock()
		v.sum = sum
		v.mu.Unlock()
		rel, _ := v.root.Rel(path)
		v.broker.NoteError(rel, err.Error())
		return err
	}
	if res.Note == nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), apperr.ErrUnsupported)
	}

	v.mu.Lock()
	v.path = res.Path
	v.note = res.Note
	v.sum = sum
	v.mu.Unlock()

	from, _ := v.root.Rel(path)
	to, _ := v.root.Rel(res.Path)
	if res.Path != path {
		v.logger.Info("viewer: note renamed", slog.String("from", from), slog.String("to", to))
		v.broker.NoteRenamed(from, to)
	} else {
		v.logger.Debug("viewer: note updated", slog.String("path", to))
		v.broker.NoteUpdated(to)
	}
	return nil
}

package viewer

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/fmnote/internal/apperr"
	"github.com/starford/fmnote/internal/frontmatter"
	"github.com/starford/fmnote/internal/render"
)

// Handler returns the preview router:
//
//	GET /             rendered note with live reload
//	GET /events       SSE stream of note.updated and note.renamed
//	GET /health/live  liveness probe
//	GET /*            files next to the note; other notes are rendered
func (v *Viewer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/", v.servePage)
	r.Get(EventsPath, v.broker.ServeHTTP)
	r.Get("/*", v.serveAsset)
	return r
}

func (v *Viewer) servePage(w http.ResponseWriter, r *http.Request) {
	path, n := v.current()
	if n == nil {
		http.Error(w, "note not loaded yet", http.StatusServiceUnavailable)
		return
	}
	page, err := v.renderer.Page(n, path, render.PageOptions{EventsURL: EventsPath})
	if err != nil {
		v.renderError(w, r, err)
		return
	}
	writeHTML(w, page)
}

func (v *Viewer) serveAsset(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if decoded, err := url.PathUnescape(rel); err == nil {
		rel = decoded
	}
	abs, err := v.root.Resolve(rel)
	if err != nil {
		v.renderError(w, r, err)
		return
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	cfg := v.svc.Env().Config
	if !cfg.Extensions.IsNote(filepath.Ext(abs)) {
		http.ServeFile(w, r, abs)
		return
	}

	unlock := v.locker.Lock(abs)
	n, err := v.svc.Load(abs)
	unlock()
	if err != nil {
		v.renderError(w, r, err)
		return
	}
	page, err := v.renderer.Page(n, abs, render.PageOptions{})
	if err != nil {
		v.renderError(w, r, err)
		return
	}
	writeHTML(w, page)
}

func (v *Viewer) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrOutsideRoot):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrNoViewer), errors.Is(err, apperr.ErrUnsupported):
		status = http.StatusUnsupportedMediaType
	default:
		var perr *frontmatter.ParseError
		if errors.As(err, &perr) {
			status = http.StatusUnprocessableEntity
		}
	}
	if status == http.StatusInternalServerError {
		v.logger.Error("viewer: request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	http.Error(w, err.Error(), status)
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

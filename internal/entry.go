// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/fmnote/internal/apperr"
	"github.com/starford/fmnote/internal/mcpserver"
	"github.com/starford/fmnote/internal/note"
	"github.com/starford/fmnote/internal/pathlock"
	"github.com/starford/fmnote/internal/render"
	"github.com/starford/fmnote/internal/sse"
	"github.com/starford/fmnote/internal/storage"
	"github.com/starford/fmnote/internal/viewer"
	"github.com/starford/fmnote/internal/workflow"
)

const shutdownTimeout = 10 * time.Second

func newApplication(opts []Option) (*application, error) {
	app := &application{stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.path == "" {
		app.path = "."
	}
	return app, nil
}

// Run applies the workflow to the configured path, prints the resulting
// path and optionally exports or previews the note.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := NewLogger(app.stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	svc := workflow.NewService(note.NewEnv(cfg), app.getenv)
	res, err := svc.Run(ctx, app.path, app.inputs)
	if err != nil {
		return err
	}
	logger.Debug("workflow finished",
		slog.String("kind", res.Kind.String()),
		slog.String("path", res.Path))
	fmt.Fprintln(app.stdout, res.Path)

	if !app.export && !app.view {
		return nil
	}
	if res.Note == nil {
		return fmt.Errorf("%s is not a note: %w", res.Path, apperr.ErrUnsupported)
	}

	renderer := render.New(cfg)
	if app.export {
		out, err := renderer.Export(res.Note, res.Path, app.exportDir)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		logger.Info("Note exported", slog.String("file", out))
	}
	if app.view {
		return serve(ctx, app, svc, renderer, res.Path, logger)
	}
	return nil
}

func serve(ctx context.Context, app *application, svc *workflow.Service, renderer *render.Renderer, path string, logger *slog.Logger) error {
	cfg := app.config

	broker := sse.NewBroker(0)
	defer broker.Close()

	v, err := viewer.New(path, viewer.Params{
		Service:        svc,
		Renderer:       renderer,
		Broker:         broker,
		Logger:         logger,
		NoFilenameSync: app.inputs.NoFilenameSync,
	})
	if err != nil {
		return err
	}
	if err := v.Refresh(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.App.HTTP.Address())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	httpServer := &http.Server{
		Handler:           v.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Preview available", slog.String("url", "http://"+ln.Addr().String()+"/"))
	fmt.Fprintf(app.stderr, "http://%s/\n", ln.Addr())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return v.Watch(gCtx)
	})

	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		// Open event streams never end on their own.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Preview error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Preview stopped", slog.String("path", v.Path()))
	return nil
}

// errShutdown cancels the watcher once the server is asked to stop.
var errShutdown = errors.New("shutdown")

// ServeMCP serves the MCP tools on stdin/stdout for the configured root
// directory until the client disconnects.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := NewLogger(app.stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	root, err := storage.NewRoot(app.path)
	if err != nil {
		return err
	}
	svc := workflow.NewService(note.NewEnv(cfg), app.getenv)
	srv := mcpserver.New(root, svc, render.New(cfg), &pathlock.Locker{})

	logger.Info("MCP server starting", slog.String("root", root.Dir()))
	return srv.ServeStdio()
}

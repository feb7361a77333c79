// Package testutil provides shared test helpers for note directories and
// asynchronous assertions.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/fmnote/internal/config"
	"github.com/starford/fmnote/internal/content"
)

// Config returns the default configuration with LF line endings, so that
// expected file contents do not depend on the platform.
func Config() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Content.Newline = content.NewlineLF
	return cfg
}

// NoEnv is a getenv that knows no variables.
func NoEnv(string) string { return "" }

// NoteDir creates a temporary directory holding files (name → text) and
// returns its path.
func NoteDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		WriteFile(t, filepath.Join(dir, name), text)
	}
	return dir
}

// WriteFile writes text to path, creating parent directories.
func WriteFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Exists reports whether anything is at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Eventually polls fn every tick until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

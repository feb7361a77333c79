package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/fmnote/internal/apperr"
)

// Local implements Provider backed by the local file system.
type Local struct{}

// NewLocal returns a Provider working on absolute local paths.
func NewLocal() *Local {
	return &Local{}
}

// Read returns the raw bytes of a file.
func (l *Local) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (l *Local) Write(path string, content []byte) error {
	return WriteFile(path, content)
}

// Delete removes a file.
func (l *Local) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Move renames a file, creating the target directory when missing. An
// existing target is never replaced, except when it is the source itself
// (case-only renames on case-insensitive file systems).
func (l *Local) Move(oldPath, newPath string) error {
	if dst, err := os.Stat(newPath); err == nil {
		src, serr := os.Stat(oldPath)
		if serr != nil || !os.SameFile(src, dst) {
			return fmt.Errorf("storage: move to %s: %w", newPath, apperr.ErrAlreadyExists)
		}
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("storage: move: %w", err)
	}
	return nil
}

// Exists reports whether path exists. Permission errors are returned.
func (l *Local) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("storage: stat %s: %w", path, err)
}

// WriteFile atomically writes content to path: tmp file → fsync → rename.
// Missing parent directories are created.
func WriteFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".fmnote-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Root confines request paths to a directory tree. It is used by the
// preview server and the MCP embedding, which receive untrusted relative
// paths.
type Root struct {
	dir string // absolute
}

// NewRoot creates a Root for the given directory, which must exist.
func NewRoot(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &Root{dir: abs}, nil
}

// Dir returns the absolute root directory.
func (r *Root) Dir() string {
	return r.dir
}

// Resolve joins rel onto the root and rejects any result that escapes it
// (directory traversal).
func (r *Root) Resolve(rel string) (string, error) {
	if rel == "" {
		return r.dir, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute path %s: %w", rel, apperr.ErrOutsideRoot)
	}
	abs, err := filepath.Abs(filepath.Join(r.dir, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, r.dir+string(os.PathSeparator)) && abs != r.dir {
		return "", fmt.Errorf("storage: %s escapes root: %w", rel, apperr.ErrOutsideRoot)
	}
	return abs, nil
}

// Rel returns abs relative to the root using forward slashes.
func (r *Root) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(r.dir, abs)
	if err != nil {
		return "", fmt.Errorf("storage: relative path: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// Package storage defines the file-system abstraction used for notes.
package storage

// Provider is the interface for note file operations. All paths are
// absolute; callers resolve them before handing them over.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Exists reports whether anything (file or directory) is at path.
	Exists(path string) (bool, error)
}

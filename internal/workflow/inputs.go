package workflow

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/atotto/clipboard"

	"github.com/starford/fmnote/internal/content"
)

// maxInputBytes bounds a stdin snapshot.
const maxInputBytes = 16 << 20

// ReadStdin snapshots r, which is typically a piped standard input.
func ReadStdin(format content.Format, r io.Reader) (content.Content, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes))
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("stdin: %w", content.ErrInvalidUTF8)
	}
	return format.FromString(string(data)), nil
}

// ReadClipboard snapshots the system clipboard. A clipboard that cannot
// be read on this system is reported as an error; callers treat it as
// empty.
func ReadClipboard(format content.Format) (content.Content, error) {
	if clipboard.Unsupported {
		return nil, fmt.Errorf("clipboard: not supported on this system")
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("clipboard: %w", err)
	}
	return format.FromString(text), nil
}

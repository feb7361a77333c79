package content

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/starford/fmnote/internal/storage"
)

// ErrInvalidUTF8 is returned by Open when a file is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("content is not valid UTF-8")

// Content is the capability the note logic is written against. It is
// implemented by Document; embedding applications may provide their own.
type Content interface {
	// Header returns the trimmed YAML block without its delimiters.
	Header() string
	// Body returns everything after the header, untrimmed.
	Body() string
	// String returns the whole normalised document.
	String() string
	// IsEmpty is true when header and body are both empty.
	IsEmpty() bool
	// SaveAs writes the document to path.
	SaveAs(path string) error
}

// Newline selects the line terminator used when saving.
type Newline string

// Newline policies.
const (
	NewlineLF     Newline = "lf"
	NewlineCRLF   Newline = "crlf"
	NewlineNative Newline = "native"
)

// Sequence returns the terminator for the policy. Native resolves on the
// running system.
func (n Newline) Sequence() string {
	switch n {
	case NewlineCRLF:
		return "\r\n"
	case NewlineLF:
		return "\n"
	default:
		if runtime.GOOS == "windows" {
			return "\r\n"
		}
		return "\n"
	}
}

// Format carries the policies documents are split and saved with.
type Format struct {
	MaxIgnoredChars int
	Newline         Newline
}

// DefaultFormat is used by the package-level helpers.
var DefaultFormat = Format{
	MaxIgnoredChars: DefaultMaxIgnoredChars,
	Newline:         NewlineNative,
}

// Document owns a normalised buffer and remembers where header and body
// are located in it. The views are offsets, recomputed whenever the
// buffer is replaced.
type Document struct {
	raw    string
	format Format

	headerStart int
	headerEnd   int
	bodyStart   int
}

// FromString builds a Document with DefaultFormat.
func FromString(raw string) *Document {
	return DefaultFormat.FromString(raw)
}

// FromString strips a BOM, normalises CRLF line endings and splits raw.
func (f Format) FromString(raw string) *Document {
	d := &Document{format: f}
	d.set(raw)
	return d
}

// FromParts assembles a document from a header and a body.
func (f Format) FromParts(header, body string) *Document {
	if header == "" {
		return f.FromString(body)
	}
	return f.FromString("---\n" + header + "\n---\n" + body)
}

// Open reads path with DefaultFormat.
func Open(path string) (*Document, error) {
	return DefaultFormat.Open(path)
}

// Open reads path, decodes it as UTF-8 and splits it.
func (f Format) Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("content: %s: %w", path, ErrInvalidUTF8)
	}
	return f.FromString(string(data)), nil
}

func (d *Document) set(raw string) {
	raw = strings.TrimPrefix(raw, BOM)
	if strings.IndexByte(raw, '\r') >= 0 {
		raw = strings.ReplaceAll(raw, "\r\n", "\n")
	}
	d.raw = raw
	d.headerStart, d.headerEnd, d.bodyStart = d.format.bounds(raw)
}

// Header returns the trimmed YAML header.
func (d *Document) Header() string {
	return d.raw[d.headerStart:d.headerEnd]
}

// Body returns the untrimmed body.
func (d *Document) Body() string {
	return d.raw[d.bodyStart:]
}

// String returns the normalised buffer.
func (d *Document) String() string {
	return d.raw
}

// IsEmpty is true when both header and body are empty. A body holding only
// an HTML doctype counts as empty.
func (d *Document) IsEmpty() bool {
	if d.Header() != "" {
		return false
	}
	body := d.Body()
	return body == "" || isEmptyHTML(body)
}

// Bytes serialises the document the way SaveAs writes it: a BOM, the
// delimited header when present, then the body, every line terminated
// with the configured newline.
func (d *Document) Bytes() []byte {
	nl := d.format.Newline.Sequence()
	var b strings.Builder
	b.Grow(len(d.raw) + 16)
	b.WriteString(BOM)
	if h := d.Header(); h != "" {
		b.WriteString(startMarker)
		b.WriteString(nl)
		for _, l := range lines(h) {
			b.WriteString(l)
			b.WriteString(nl)
		}
		b.WriteString(startMarker)
		b.WriteString(nl)
	}
	for _, l := range lines(d.Body()) {
		b.WriteString(l)
		b.WriteString(nl)
	}
	return []byte(b.String())
}

// SaveAs creates missing parent directories and atomically writes the
// serialised document to path.
func (d *Document) SaveAs(path string) error {
	if err := storage.WriteFile(path, d.Bytes()); err != nil {
		return fmt.Errorf("content: save %s: %w", path, err)
	}
	return nil
}

// lines splits s on "\n"; a trailing newline does not produce an empty line.
func lines(s string) []string {
	if s == "" {
		return nil
	}
	out := strings.Split(s, "\n")
	if out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

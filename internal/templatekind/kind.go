// Package templatekind decides which workflow applies to an invocation.
package templatekind

// Kind selects the pair of content and filename templates to apply.
type Kind int

// Kinds, in the order of the decision table.
const (
	// None renders the note for viewing only; no template is applied.
	None Kind = iota
	// New creates a note in a directory.
	New
	// FromClipboardYaml creates a note from an input stream carrying a header.
	FromClipboardYaml
	// FromClipboard creates a note from a headerless input stream.
	FromClipboard
	// FromTextFile prepends a header to an existing headerless note file.
	FromTextFile
	// AnnotateFile creates a companion note for a non-note file.
	AnnotateFile
	// SyncFilename renames an existing note after its front matter.
	SyncFilename
)

var names = [...]string{
	None:              "None",
	New:               "New",
	FromClipboardYaml: "FromClipboardYaml",
	FromClipboard:     "FromClipboard",
	FromTextFile:      "FromTextFile",
	AnnotateFile:      "AnnotateFile",
	SyncFilename:      "SyncFilename",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return "Kind(?)"
	}
	return names[k]
}

// Facts are the observations the decision is made from.
type Facts struct {
	PathIsDir bool
	// InputIsSome is true when stdin or the clipboard is non-empty.
	InputIsSome bool
	// InputHasHeader is true when the input stream carries a YAML header.
	InputHasHeader bool
	PathIsFile     bool
	// PathIsNoteFile is true when the file extension is a registered note extension.
	PathIsNoteFile bool
	// PathIsNoteFileWithHeader is true when that note file carries a header.
	PathIsNoteFileWithHeader bool
}

// Decide maps the facts to a Kind. Directory-ness is checked before
// file-ness, file-ness before the extension, the extension before header
// presence.
func Decide(f Facts) Kind {
	switch {
	case f.PathIsDir && !f.PathIsFile:
		switch {
		case !f.InputIsSome:
			return New
		case !f.InputHasHeader:
			return FromClipboard
		default:
			return FromClipboardYaml
		}
	case !f.PathIsDir && f.PathIsFile:
		switch {
		case !f.PathIsNoteFile:
			return AnnotateFile
		case f.PathIsNoteFileWithHeader:
			return SyncFilename
		default:
			return FromTextFile
		}
	default:
		return None
	}
}

// Configuration keys of the templates, as named in the config file.
const (
	VarNewContent                = "templates.new_content"
	VarNewFilename               = "templates.new_filename"
	VarFromClipboardYamlContent  = "templates.from_clipboard_yaml_content"
	VarFromClipboardYamlFilename = "templates.from_clipboard_yaml_filename"
	VarFromClipboardContent      = "templates.from_clipboard_content"
	VarFromClipboardFilename     = "templates.from_clipboard_filename"
	VarFromTextFileContent       = "templates.from_text_file_content"
	VarFromTextFileFilename      = "templates.from_text_file_filename"
	VarAnnotateFileContent       = "templates.annotate_file_content"
	VarAnnotateFileFilename      = "templates.annotate_file_filename"
	VarSyncFilename              = "templates.sync_filename"
)

// ContentTemplateVar names the configuration key holding the content
// template of k, or "" when k has none.
func (k Kind) ContentTemplateVar() string {
	switch k {
	case New:
		return VarNewContent
	case FromClipboardYaml:
		return VarFromClipboardYamlContent
	case FromClipboard:
		return VarFromClipboardContent
	case FromTextFile:
		return VarFromTextFileContent
	case AnnotateFile:
		return VarAnnotateFileContent
	default:
		return ""
	}
}

// FilenameTemplateVar names the configuration key holding the filename
// template of k, or "" when k has none.
func (k Kind) FilenameTemplateVar() string {
	switch k {
	case New:
		return VarNewFilename
	case FromClipboardYaml:
		return VarFromClipboardYamlFilename
	case FromClipboard:
		return VarFromClipboardFilename
	case FromTextFile:
		return VarFromTextFileFilename
	case AnnotateFile:
		return VarAnnotateFileFilename
	case SyncFilename:
		return VarSyncFilename
	default:
		return ""
	}
}

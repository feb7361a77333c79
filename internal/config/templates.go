package config

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/fmnote/internal/templatekind"
)

// TemplatesConfig holds the content and filename templates of every
// template kind. Templates use text/template syntax; see internal/tmpl
// for the helper functions.
type TemplatesConfig struct {
	NewContent                string `yaml:"new_content"`
	NewFilename               string `yaml:"new_filename"`
	FromClipboardYamlContent  string `yaml:"from_clipboard_yaml_content"`
	FromClipboardYamlFilename string `yaml:"from_clipboard_yaml_filename"`
	FromClipboardContent      string `yaml:"from_clipboard_content"`
	FromClipboardFilename     string `yaml:"from_clipboard_filename"`
	FromTextFileContent       string `yaml:"from_text_file_content"`
	FromTextFileFilename      string `yaml:"from_text_file_filename"`
	AnnotateFileContent       string `yaml:"annotate_file_content"`
	AnnotateFileFilename      string `yaml:"annotate_file_filename"`
	SyncFilename              string `yaml:"sync_filename"`
}

// Validate validates the templates.
func (c *TemplatesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.NewContent, validation.Required),
		validation.Field(&c.NewFilename, validation.Required),
		validation.Field(&c.FromClipboardYamlContent, validation.Required),
		validation.Field(&c.FromClipboardYamlFilename, validation.Required),
		validation.Field(&c.FromClipboardContent, validation.Required),
		validation.Field(&c.FromClipboardFilename, validation.Required),
		validation.Field(&c.FromTextFileContent, validation.Required),
		validation.Field(&c.FromTextFileFilename, validation.Required),
		validation.Field(&c.AnnotateFileContent, validation.Required),
		validation.Field(&c.AnnotateFileFilename, validation.Required),
		validation.Field(&c.SyncFilename, validation.Required),
	)
}

// Get returns the template stored under a templatekind Var* key.
func (c *TemplatesConfig) Get(key string) (string, error) {
	switch key {
	case templatekind.VarNewContent:
		return c.NewContent, nil
	case templatekind.VarNewFilename:
		return c.NewFilename, nil
	case templatekind.VarFromClipboardYamlContent:
		return c.FromClipboardYamlContent, nil
	case templatekind.VarFromClipboardYamlFilename:
		return c.FromClipboardYamlFilename, nil
	case templatekind.VarFromClipboardContent:
		return c.FromClipboardContent, nil
	case templatekind.VarFromClipboardFilename:
		return c.FromClipboardFilename, nil
	case templatekind.VarFromTextFileContent:
		return c.FromTextFileContent, nil
	case templatekind.VarFromTextFileFilename:
		return c.FromTextFileFilename, nil
	case templatekind.VarAnnotateFileContent:
		return c.AnnotateFileContent, nil
	case templatekind.VarAnnotateFileFilename:
		return c.AnnotateFileFilename, nil
	case templatekind.VarSyncFilename:
		return c.SyncFilename, nil
	default:
		return "", fmt.Errorf("unknown template %q", key)
	}
}

// Filename template fragments. The title stem separates sort tag, title
// and subtitle so that the sort tag and the copy counter can be told
// apart from the title again.
const (
	titleStem = `{{ with .fm_title__alphapath }}{{ . }}{{ end }}{{ with .fm_subtitle__alphapath }}--{{ . }}{{ end }}`

	datedFilename = `{{ or .fm_sort_tag (now | date "20060102") }}-` + titleStem +
		`.{{ or .fm_file_ext .extension_default }}`
)

// DefaultTemplates returns the built-in templates.
func DefaultTemplates() TemplatesConfig {
	return TemplatesConfig{
		NewContent: heredoc.Doc(`
			---
			title:      {{ or .dir_name "Note" | yaml }}
			subtitle:   {{ "Note" | yaml }}
			author:     {{ .username | yaml }}
			date:       {{ now | date "2006-01-02" | yaml }}
			lang:       {{ .lang | yaml }}
			---


			`),
		NewFilename: datedFilename,

		FromClipboardYamlContent: heredoc.Doc(`
			---
			{{ .input_header }}
			{{- if not .fm_title }}
			title:      {{ heading .input | yaml }}
			{{- end }}
			{{- if not .fm_date }}
			date:       {{ now | date "2006-01-02" | yaml }}
			{{- end }}
			{{- if not .fm_lang }}
			lang:       {{ .lang | yaml }}
			{{- end }}
			---

			{{ .input -}}
			`),
		FromClipboardYamlFilename: datedFilename,

		FromClipboardContent: heredoc.Doc(`
			---
			title:      {{ heading .input | yaml }}
			subtitle:   {{ "Note" | yaml }}
			author:     {{ .username | yaml }}
			date:       {{ now | date "2006-01-02" | yaml }}
			lang:       {{ .lang | yaml }}
			---

			{{ .input -}}
			`),
		FromClipboardFilename: datedFilename,

		FromTextFileContent: heredoc.Doc(`
			---
			title:      {{ stripSortTag .file_stem | yaml }}
			subtitle:   {{ "Note" | yaml }}
			author:     {{ .username | yaml }}
			date:       {{ now | date "2006-01-02" | yaml }}
			lang:       {{ .lang | yaml }}
			---

			{{ .doc -}}
			`),
		FromTextFileFilename: `{{ with sortTag .file_stem }}{{ . }}-{{ end }}` + titleStem + `.{{ .file_ext }}`,

		AnnotateFileContent: heredoc.Doc(`
			---
			title:      {{ .file_name | yaml }}
			subtitle:   {{ "Note" | yaml }}
			author:     {{ .username | yaml }}
			date:       {{ now | date "2006-01-02" | yaml }}
			lang:       {{ .lang | yaml }}
			---

			[{{ .file_name }}](<{{ .file_name }}>)
			{{- with .input }}

			{{ . }}
			{{- end }}
			`),
		AnnotateFileFilename: `{{ .file_name__path }}--{{ or .fm_subtitle__alphapath "Note" }}.{{ .extension_default }}`,

		SyncFilename: `{{ with or .fm_sort_tag (sortTag .file_stem) }}{{ . }}-{{ end }}` + titleStem +
			`.{{ or .fm_file_ext .file_ext }}`,
	}
}

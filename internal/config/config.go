// Package config defines the fmnote configuration and its defaults.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/fmnote/internal/content"
	"github.com/starford/fmnote/internal/filename"
	"github.com/starford/fmnote/internal/frontmatter"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Content     ContentConfig     `yaml:"content"`
	Filename    FilenameConfig    `yaml:"filename"`
	Extensions  ExtensionsConfig  `yaml:"extensions"`
	FrontMatter FrontMatterConfig `yaml:"front_matter"`
	Templates   TemplatesConfig   `yaml:"templates"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.Filename.Validate(); err != nil {
		return fmt.Errorf("filename: %w", err)
	}
	if err := c.Extensions.Validate(); err != nil {
		return fmt.Errorf("extensions: %w", err)
	}
	if c.Extensions.Family(c.Filename.ExtensionDefault) == FamilyUnknown {
		return fmt.Errorf("filename: extension_default %q is not a registered note extension",
			c.Filename.ExtensionDefault)
	}
	if err := c.Templates.Validate(); err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	return nil
}

// Rules returns the front matter constraints.
func (c *Config) Rules() frontmatter.Rules {
	return frontmatter.Rules{
		Extensions:      c.Extensions.All(),
		CompulsoryField: c.FrontMatter.CompulsoryField,
	}
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the preview server configuration. Port 0 picks a free
// port.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
	)
}

// ContentConfig holds the document format.
type ContentConfig struct {
	MaxIgnoredChars int             `yaml:"max_ignored_chars"`
	Newline         content.Newline `yaml:"newline"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxIgnoredChars, validation.Required, validation.Min(1)),
		validation.Field(&c.Newline, validation.Required,
			validation.In(content.NewlineLF, content.NewlineCRLF, content.NewlineNative)),
	)
}

// Format returns the document format.
func (c *ContentConfig) Format() content.Format {
	return content.Format{MaxIgnoredChars: c.MaxIgnoredChars, Newline: c.Newline}
}

// FilenameConfig holds file naming rules.
type FilenameConfig struct {
	CopyCounterSeparator string             `yaml:"copy_counter_separator"`
	CopyCounterMax       int                `yaml:"copy_counter_max"`
	LenMax               int                `yaml:"len_max"`
	ExtensionDefault     string             `yaml:"extension_default"`
	Sanitizer            filename.Sanitizer `yaml:"sanitizer"`
}

// Validate validates the filename configuration.
func (c *FilenameConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CopyCounterSeparator, validation.Required),
		validation.Field(&c.CopyCounterMax, validation.Required, validation.Min(1)),
		validation.Field(&c.LenMax, validation.Required, validation.Min(16), validation.Max(255)),
		validation.Field(&c.ExtensionDefault, validation.Required),
	)
}

// CopyCounter returns the collision resolver.
func (c *FilenameConfig) CopyCounter() filename.CopyCounter {
	return filename.CopyCounter{Separator: c.CopyCounterSeparator, Max: c.CopyCounterMax}
}

// Family is a markup family of note files.
type Family string

// Markup families.
const (
	FamilyUnknown          Family = ""
	FamilyMarkdown         Family = "markdown"
	FamilyRestructuredText Family = "rst"
	FamilyHTML             Family = "html"
	FamilyText             Family = "txt"
	FamilyNoViewer         Family = "no_viewer"
)

// ExtensionsConfig is the registry of note file extensions per markup
// family. Extensions are stored without the leading dot.
type ExtensionsConfig struct {
	Markdown         []string `yaml:"markdown"`
	RestructuredText []string `yaml:"rst"`
	HTML             []string `yaml:"html"`
	Text             []string `yaml:"txt"`
	NoViewer         []string `yaml:"no_viewer"`
}

// Validate validates the extension registry.
func (c *ExtensionsConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Markdown, validation.Required),
	); err != nil {
		return err
	}
	seen := make(map[string]Family)
	for _, fam := range []Family{FamilyMarkdown, FamilyRestructuredText, FamilyHTML, FamilyText, FamilyNoViewer} {
		for _, ext := range c.list(fam) {
			if ext == "" || strings.HasPrefix(ext, ".") {
				return fmt.Errorf("%s: extension %q must be non-empty and without a leading dot", fam, ext)
			}
			if prev, ok := seen[ext]; ok {
				return fmt.Errorf("extension %q is registered for both %s and %s", ext, prev, fam)
			}
			seen[ext] = fam
		}
	}
	return nil
}

func (c *ExtensionsConfig) list(f Family) []string {
	switch f {
	case FamilyMarkdown:
		return c.Markdown
	case FamilyRestructuredText:
		return c.RestructuredText
	case FamilyHTML:
		return c.HTML
	case FamilyText:
		return c.Text
	case FamilyNoViewer:
		return c.NoViewer
	default:
		return nil
	}
}

// Family returns the markup family of ext, with or without leading dot.
// Matching ignores case.
func (c *ExtensionsConfig) Family(ext string) Family {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return FamilyUnknown
	}
	for _, fam := range []Family{FamilyMarkdown, FamilyRestructuredText, FamilyHTML, FamilyText, FamilyNoViewer} {
		if slices.ContainsFunc(c.list(fam), func(e string) bool { return strings.EqualFold(e, ext) }) {
			return fam
		}
	}
	return FamilyUnknown
}

// IsNote reports whether ext belongs to any family.
func (c *ExtensionsConfig) IsNote(ext string) bool {
	return c.Family(ext) != FamilyUnknown
}

// All returns every registered extension.
func (c *ExtensionsConfig) All() []string {
	var all []string
	for _, fam := range []Family{FamilyMarkdown, FamilyRestructuredText, FamilyHTML, FamilyText, FamilyNoViewer} {
		all = append(all, c.list(fam)...)
	}
	return all
}

// FrontMatterConfig holds front matter rules.
type FrontMatterConfig struct {
	// CompulsoryField must be set in every note whose filename is
	// synchronised. Empty disables the check.
	CompulsoryField string `yaml:"compulsory_field"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Host: "127.0.0.1",
				Port: 0,
			},
		},
		Content: ContentConfig{
			MaxIgnoredChars: content.DefaultMaxIgnoredChars,
			Newline:         content.NewlineNative,
		},
		Filename: FilenameConfig{
			CopyCounterSeparator: filename.DefaultCopyCounter.Separator,
			CopyCounterMax:       filename.DefaultCopyCounter.Max,
			LenMax:               filename.DefaultLenMax,
			ExtensionDefault:     "md",
			Sanitizer:            filename.DefaultSanitizer,
		},
		Extensions: ExtensionsConfig{
			Markdown:         []string{"md", "markdown", "markdn", "mdown", "mdtxt", "mkd", "mdwn"},
			RestructuredText: []string{"rst", "rest"},
			HTML:             []string{"htmlnote"},
			Text:             []string{"txt", "txtnote", "text"},
			NoViewer:         []string{"adoc", "asciidoc", "mediawiki", "mw", "t2t", "textile", "wiki"},
		},
		FrontMatter: FrontMatterConfig{
			CompulsoryField: "title",
		},
		Templates: DefaultTemplates(),
	}
}

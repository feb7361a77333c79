package frontmatter

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var sortTagRe = regexp.MustCompile(`^[0-9_-]*$`)

// Rules are the constraints a header has to satisfy. They come from the
// configuration.
type Rules struct {
	// Extensions is the registry of known note file extensions.
	Extensions []string
	// CompulsoryField must be present and non-empty when enforced.
	CompulsoryField string
}

// InvalidSortTagError reports a sort_tag with characters other than
// digits, '_' and '-'.
type InvalidSortTagError struct {
	Value string
}

func (e *InvalidSortTagError) Error() string {
	return fmt.Sprintf("front matter field %q = %q may only contain digits, '_' and '-'; edit the note's front matter",
		FieldSortTag, e.Value)
}

// UnknownFileExtError reports a file_ext missing from the extension registry.
type UnknownFileExtError struct {
	Value string
	Known []string
}

func (e *UnknownFileExtError) Error() string {
	return fmt.Sprintf("front matter field %q = %q is not a registered note extension (known: %s); "+
		"edit the front matter or register the extension in the configuration",
		FieldFileExt, e.Value, strings.Join(e.Known, ", "))
}

// MissingFieldError reports an absent compulsory field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("front matter field %q is missing; add it to the note's front matter", e.Field)
}

// EmptyFieldError reports a compulsory field without a value.
type EmptyFieldError struct {
	Field string
}

func (e *EmptyFieldError) Error() string {
	return fmt.Sprintf("front matter field %q is empty; give it a value in the note's front matter", e.Field)
}

// Validate checks sort_tag and file_ext. The compulsory field is only
// checked when compulsory is true: templates may legitimately produce
// headers without it, existing notes may not.
func (fm FrontMatter) Validate(r Rules, compulsory bool) error {
	if compulsory && r.CompulsoryField != "" {
		v, ok := fm[r.CompulsoryField]
		if !ok {
			return &MissingFieldError{Field: r.CompulsoryField}
		}
		s, _ := fm.String(r.CompulsoryField)
		if err := validation.Validate(v, validation.Required); err != nil || strings.TrimSpace(s) == "" {
			return &EmptyFieldError{Field: r.CompulsoryField}
		}
	}

	if tag, ok := fm.String(FieldSortTag); ok {
		if err := validation.Validate(tag, validation.Match(sortTagRe)); err != nil {
			return &InvalidSortTagError{Value: tag}
		}
	}

	if ext, ok := fm.String(FieldFileExt); ok {
		known := make([]any, len(r.Extensions))
		for i, e := range r.Extensions {
			known[i] = strings.ToLower(e)
		}
		if err := validation.Validate(strings.ToLower(ext), validation.Required, validation.In(known...)); err != nil {
			return &UnknownFileExtError{Value: ext, Known: r.Extensions}
		}
	}

	return nil
}

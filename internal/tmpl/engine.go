// Package tmpl renders content and filename templates against a note's
// context.
package tmpl

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/spf13/cast"

	"github.com/starford/fmnote/internal/filename"
)

// headingMax bounds the length of a title derived with heading.
const headingMax = 100

// Renderer evaluates a template text against data. name identifies the
// template in error messages.
type Renderer interface {
	Render(name, text string, data map[string]any) (string, error)
}

// Error wraps a template failure with the configuration key that holds
// the offending template.
type Error struct {
	Var string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("template %q failed: %v; fix it in the configuration", e.Var, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Engine is a Renderer on text/template. Missing keys evaluate to the
// zero value; templates guard optional fields with "or" and "with".
type Engine struct {
	sanitizer filename.Sanitizer
	now       func() time.Time
	funcs     template.FuncMap
}

// NewEngine builds an Engine whose path helpers use s.
func NewEngine(s filename.Sanitizer) *Engine {
	e := &Engine{sanitizer: s, now: time.Now}
	e.funcs = template.FuncMap{
		"path":         func(v any) string { return e.sanitizer.Path(str(v)) },
		"alphapath":    func(v any) string { return e.sanitizer.AlphaPath(str(v)) },
		"heading":      heading,
		"cut":          cut,
		"trim":         func(v any) string { return strings.TrimSpace(str(v)) },
		"lower":        func(v any) string { return strings.ToLower(str(v)) },
		"upper":        func(v any) string { return strings.ToUpper(str(v)) },
		"yaml":         yamlQuote,
		"now":          func() time.Time { return e.now() },
		"date":         date,
		"stem":         stem,
		"ext":          ext,
		"sortTag":      func(v any) string { t, _ := filename.SplitSortTag(str(v), e.sanitizer.AlphaMarker); return t },
		"stripSortTag": func(v any) string { _, r := filename.SplitSortTag(str(v), e.sanitizer.AlphaMarker); return r },
		"join":         join,
	}
	return e
}

// Render parses and executes text. Failures are returned unwrapped; the
// caller knows which configuration key text came from.
func (e *Engine) Render(name, text string, data map[string]any) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Funcs(e.funcs).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func str(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// heading returns the first non-blank line of a text without Markdown
// heading marks, cut to headingMax characters.
func heading(v any) string {
	for _, line := range strings.Split(str(v), "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		if line != "" {
			return cut(headingMax, line)
		}
	}
	return ""
}

// cut shortens v to at most n characters.
func cut(n int, v any) string {
	s := str(v)
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// yamlQuote renders v as a single-line double-quoted YAML scalar. Go
// escapes are a subset of YAML's double-quoted escapes.
func yamlQuote(v any) string {
	return strconv.Quote(str(v))
}

func date(layout string, v any) string {
	t, err := cast.ToTimeE(v)
	if err != nil {
		return str(v)
	}
	return t.Format(layout)
}

func stem(v any) string {
	name := filepath.Base(str(v))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func ext(v any) string {
	return strings.TrimPrefix(filepath.Ext(str(v)), ".")
}

func join(sep string, v any) string {
	items, err := cast.ToStringSliceE(v)
	if err != nil {
		return str(v)
	}
	return strings.Join(items, sep)
}

// Package frontmatter decodes and validates the YAML header of a note.
package frontmatter

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Field names with a special meaning.
const (
	FieldSortTag      = "sort_tag"
	FieldFileExt      = "file_ext"
	FieldFilenameSync = "filename_sync"
)

// snippetLines is the number of header lines quoted in a ParseError.
const snippetLines = 20

// FrontMatter is the decoded header: a string-keyed map of scalars,
// sequences and mappings.
type FrontMatter map[string]any

// ParseError reports a header that is not valid YAML. Snippet holds the
// numbered beginning of the header for display.
type ParseError struct {
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("can not parse front matter: %v\n%s", e.Err, e.Snippet)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes header. An empty header yields an empty FrontMatter.
//
// Plain scalars that YAML would retype keep their source text when the
// typed value does not print back the same: "sort_tag: 0123" stays "0123"
// rather than octal 83, and dates stay strings instead of time.Time.
func Parse(header string) (FrontMatter, error) {
	fm := FrontMatter{}
	if strings.TrimSpace(header) == "" {
		return fm, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(header), &doc); err != nil {
		return nil, &ParseError{Snippet: snippet(header), Err: err}
	}
	if len(doc.Content) == 0 {
		return fm, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return fm, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{
			Snippet: snippet(header),
			Err:     fmt.Errorf("line %d: header must be a mapping of fields", root.Line),
		}
	}
	v, err := decodeNode(root)
	if err != nil {
		return nil, &ParseError{Snippet: snippet(header), Err: err}
	}
	for k, val := range v.(map[string]any) {
		fm[k] = val
	}
	return fm, nil
}

func decodeNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return decodeNode(n.Alias)

	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		var merges []*yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, val := n.Content[i], n.Content[i+1]
			if k.ShortTag() == "!!merge" {
				merges = append(merges, val)
				continue
			}
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: field names must be scalars", k.Line)
			}
			v, err := decodeNode(val)
			if err != nil {
				return nil, err
			}
			out[k.Value] = v
		}
		// Explicit fields win over merged ones.
		for _, m := range merges {
			if m.Kind == yaml.AliasNode {
				m = m.Alias
			}
			srcs := []*yaml.Node{m}
			if m.Kind == yaml.SequenceNode {
				srcs = m.Content
			}
			for _, src := range srcs {
				v, err := decodeNode(src)
				if err != nil {
					return nil, err
				}
				sub, ok := v.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("line %d: merge source is not a mapping", src.Line)
				}
				for k, sv := range sub {
					if _, set := out[k]; !set {
						out[k] = sv
					}
				}
			}
		}
		return out, nil

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
			return v, nil
		}
		switch n.ShortTag() {
		case "!!timestamp":
			return n.Value, nil
		case "!!int", "!!float":
			if s, err := cast.ToStringE(v); err != nil || s != n.Value {
				return n.Value, nil
			}
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

// snippet numbers the first lines of s and marks a truncation.
func snippet(s string) string {
	all := strings.Split(s, "\n")
	var b strings.Builder
	for i, l := range all {
		if i == snippetLines {
			b.WriteString("    ...\n")
			break
		}
		fmt.Fprintf(&b, "%03d: %s\n", i+1, l)
	}
	return b.String()
}

// String returns the field as a string, stringifying scalars. ok is false
// when the field is absent.
func (fm FrontMatter) String(key string) (string, bool) {
	v, ok := fm[key]
	if !ok || v == nil {
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v), true
	}
	return s, true
}

// SortTag returns the sort_tag field or "".
func (fm FrontMatter) SortTag() string {
	s, _ := fm.String(FieldSortTag)
	return s
}

// FileExt returns the file_ext field or "".
func (fm FrontMatter) FileExt() string {
	s, _ := fm.String(FieldFileExt)
	return s
}

// FilenameSync reports whether the note opted out of filename
// synchronisation with "filename_sync: false".
func (fm FrontMatter) FilenameSync() bool {
	v, ok := fm[FieldFilenameSync]
	if !ok {
		return true
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return true
	}
	return b
}

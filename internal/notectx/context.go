// Package notectx holds the variables a note's templates are rendered
// against.
package notectx

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/fmnote/internal/content"
	"github.com/starford/fmnote/internal/filename"
	"github.com/starford/fmnote/internal/frontmatter"
)

// Suffixes of the derived keys Insert adds next to every value.
const (
	SuffixPath      = "__path"
	SuffixAlphaPath = "__alphapath"
)

// Variable names.
const (
	KeyPath             = "path"
	KeyDirPath          = "dir_path"
	KeyDirName          = "dir_name"
	KeyFileName         = "file_name"
	KeyFileStem         = "file_stem"
	KeyFileExt          = "file_ext"
	KeyUsername         = "username"
	KeyLang             = "lang"
	KeyExtensionDefault = "extension_default"
	KeyFrontMatterAll   = "fm_all"

	// FrontMatterPrefix is prepended to every front matter field.
	FrontMatterPrefix = "fm_"
	// HeaderSuffix is appended to a content prefix for its header.
	HeaderSuffix = "_header"
)

// Context is an insertion-ordered variable map. It is not safe for
// concurrent use.
type Context struct {
	sanitizer filename.Sanitizer
	vars      *orderedmap.OrderedMap[string, any]
}

// New creates a Context for path, which must be absolute. For a directory
// the file variables are empty and dir_path is path itself.
func New(path string, isDir bool, s filename.Sanitizer) *Context {
	c := &Context{
		sanitizer: s,
		vars:      orderedmap.New[string, any](),
	}

	dir := filepath.Dir(path)
	var name, ext string
	if isDir {
		dir = path
	} else {
		name = filepath.Base(path)
		ext = filepath.Ext(name)
	}

	c.Insert(KeyPath, path)
	c.Insert(KeyDirPath, dir)
	c.Insert(KeyDirName, filepath.Base(dir))
	c.Insert(KeyFileName, name)
	c.Insert(KeyFileStem, strings.TrimSuffix(name, ext))
	c.Insert(KeyFileExt, strings.TrimPrefix(ext, "."))
	return c
}

// Insert stores value under key together with key__path and
// key__alphapath, the sanitised forms of its string representation.
// Strings and scalars keep their native type under key.
func (c *Context) Insert(key string, value any) {
	s := Stringify(value)
	c.vars.Set(key, value)
	c.vars.Set(key+SuffixPath, c.sanitizer.Path(s))
	c.vars.Set(key+SuffixAlphaPath, c.sanitizer.AlphaPath(s))
}

// InsertFrontMatter adds every field as fm_<key> in key order, plus the
// aggregate fm_all. fm_all keeps scalars native and joins arrays.
func (c *Context) InsertFrontMatter(fm frontmatter.FrontMatter) {
	keys := make([]string, 0, len(fm))
	for k := range fm {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	all := make(map[string]any, len(fm))
	for _, k := range keys {
		v := fm[k]
		c.Insert(FrontMatterPrefix+k, v)
		switch v.(type) {
		case []any, map[string]any:
			all[k] = Stringify(v)
		default:
			all[k] = v
		}
	}
	c.vars.Set(KeyFrontMatterAll, all)
}

// InsertContent adds the body of cnt as prefix and its header as
// prefix_header.
func (c *Context) InsertContent(prefix string, cnt content.Content) {
	c.Insert(prefix, cnt.Body())
	c.Insert(prefix+HeaderSuffix, cnt.Header())
}

// InsertEnvironment adds username, lang and extension_default.
func (c *Context) InsertEnvironment(env Env) {
	c.Insert(KeyUsername, env.Username)
	c.Insert(KeyLang, env.Lang)
	c.Insert(KeyExtensionDefault, env.ExtensionDefault)
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (any, bool) {
	return c.vars.Get(key)
}

// String returns the value under key as a string, or "".
func (c *Context) String(key string) string {
	v, ok := c.vars.Get(key)
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Keys returns the variable names in insertion order.
func (c *Context) Keys() []string {
	keys := make([]string, 0, c.vars.Len())
	for p := c.vars.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Data returns a copy of the variables for template execution.
func (c *Context) Data() map[string]any {
	data := make(map[string]any, c.vars.Len())
	for p := c.vars.Oldest(); p != nil; p = p.Next() {
		data[p.Key] = p.Value
	}
	return data
}

// Stringify flattens v: arrays are joined with ", ", objects are encoded
// as JSON, nil is "".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

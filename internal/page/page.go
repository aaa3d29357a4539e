package page

import (
	"maps"
	"path/filepath"
	"strings"
)

// Keys of the computed constants every DataContext carries.
const (
	KeyPage   = "page"
	KeyLayout = "layout"
	KeyRoot   = "root"
)

// RawPage is one page source as handed over by the upstream reader.
type RawPage struct {
	Path    string
	Content []byte
	// Data is optional per-file data injected by an upstream collaborator.
	Data map[string]any
}

// SourceRef identifies the RawPage a ParsedPage came from.
type SourceRef struct {
	Path string
	// RelPath is Path relative to the pages root, slash separated.
	RelPath     string
	Fingerprint string
}

// Ext returns the lower-cased source extension.
func (s SourceRef) Ext() string { return strings.ToLower(filepath.Ext(s.Path)) }

// IsMarkdown reports whether the body should be run through markdown.
func (s SourceRef) IsMarkdown() bool {
	switch s.Ext() {
	case ".md", ".markdown":
		return true
	}
	return false
}

// LayoutRef is the layout resolved for a page at parse time. Whether the file
// exists is only discovered when the page renders.
type LayoutRef struct {
	Name string
	Path string
}

// DataContext is the merged key/value data handed to a template.
type DataContext map[string]any

// Clone returns a shallow copy.
func (c DataContext) Clone() DataContext {
	out := make(DataContext, len(c)+4)
	maps.Copy(out, c)
	return out
}

// String returns the value under key when it is a string.
func (c DataContext) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// ParsedPage is the normalized record produced by the Parser. It is never
// mutated after creation; render-time additions go to a derived copy.
type ParsedPage struct {
	Source  SourceRef
	Name    string
	Body    string
	Context DataContext
	Layout  LayoutRef
	// ParseErr is set when the source could not be parsed. Such a page still
	// reaches the build phase and turns into a failed outcome there.
	ParseErr error
}

// Failed reports whether the page could not be parsed.
func (p *ParsedPage) Failed() bool { return p.ParseErr != nil }

package render

import (
	"bytes"
	"slices"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Context keys added for a single render.
const (
	KeyPartials    = "partials"
	KeyCurrentPage = "currentPage"
	KeyIfPage      = "ifpage"
	KeyUnlessPage  = "unlesspage"
)

// pagePredicates returns ifpage/unlesspage bound to current. They are pure
// functions of (current, names), so each render gets its own pair.
func pagePredicates(current string) (ifPage, unlessPage func(names ...string) bool) {
	ifPage = func(names ...string) bool {
		return slices.Contains(names, current)
	}
	unlessPage = func(names ...string) bool {
		return !ifPage(names...)
	}
	return ifPage, unlessPage
}

var (
	filtersOnce sync.Once
	markdown    = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// registerFilters installs the stateless filters once per process. They do
// not depend on the page being rendered.
func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("markdown") {
			_ = pongo2.RegisterFilter("markdown", filterMarkdown)
		}
		if !pongo2.FilterExists("sanitize") {
			_ = pongo2.RegisterFilter("sanitize", filterSanitize)
		}
	})
}

func filterMarkdown(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(in.String()), &buf); err != nil {
		return nil, &pongo2.Error{Sender: "filter:markdown", OrigError: err}
	}
	return pongo2.AsSafeValue(buf.String()), nil
}

func filterSanitize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(sanitizer.Sanitize(in.String())), nil
}

// markdownBody wraps a markdown page body so template tags inside it render
// first and the result is converted to HTML.
func markdownBody(body string) string {
	return "{% filter markdown %}" + body + "{% endfilter %}"
}

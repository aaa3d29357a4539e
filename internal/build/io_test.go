package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
	"git.home.luguber.info/inful/panini/internal/page"
	"git.home.luguber.info/inful/panini/internal/render"
)

func TestLoadPages_LexicalOrderAndFiltering(t *testing.T) {
	cfg := writeSite(t, map[string]string{
		"pages/z.html":          "z",
		"pages/a.hbs":           "a",
		"pages/docs/b.md":       "b",
		"pages/notes.txt":       "ignored",
		"pages/.drafts/x.html":  "hidden",
		"pages/docs/c.markdown": "c",
	})

	raws, err := LoadPages(cfg)
	require.NoError(t, err)

	var rel []string
	for _, r := range raws {
		p, err := filepath.Rel(cfg.PagesRoot(), r.Path)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(p))
	}
	assert.Equal(t, []string{"a.hbs", "docs/b.md", "docs/c.markdown", "z.html"}, rel)
	assert.Equal(t, "a", string(raws[0].Content))
}

func TestLoadPages_MissingRoot(t *testing.T) {
	cfg := writeSite(t, nil)
	_, err := LoadPages(cfg)
	require.Error(t, err)
	assert.Equal(t, ferrors.CategoryFileSystem, ferrors.GetCategory(err))
}

func TestWriter_Target(t *testing.T) {
	w := NewWriter("out", nil)
	assert.Equal(t, filepath.Join("out", "blog", "post.html"), w.Target("blog/post.md"))
	assert.Equal(t, filepath.Join("out", "a.html"), w.Target("a.hbs"))
	assert.Equal(t, filepath.Join("out", "index.html"), w.Target("index.html"))
}

func TestWriter_WritesRenderedAndFailed(t *testing.T) {
	root := t.TempDir()
	ok := &page.ParsedPage{Name: "ok", Source: page.SourceRef{RelPath: "ok.html"}}
	bad := &page.ParsedPage{Name: "bad", Source: page.SourceRef{RelPath: "sub/bad.md"}}

	n, err := NewWriter(root, nil).Write([]render.Outcome{
		render.Rendered(ok, "<p>ok</p>"),
		render.Failed(bad, ferrors.RenderError("nope").Build()),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(root, "ok.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", string(data))

	data, err = os.ReadFile(filepath.Join(root, "sub", "bad.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "nope")
}

func TestWriter_OutputCollisionKeepsFirstPage(t *testing.T) {
	root := t.TempDir()
	html := &page.ParsedPage{Name: "about", Source: page.SourceRef{RelPath: "about.html"}}
	md := &page.ParsedPage{Name: "about", Source: page.SourceRef{RelPath: "about.md"}}

	n, err := NewWriter(root, nil).Write([]render.Outcome{
		render.Rendered(html, "from html"),
		render.Rendered(md, "from markdown"),
	})

	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	assert.Equal(t, ferrors.SeverityWarning, ferrors.GetSeverity(err))
	assert.Contains(t, err.Error(), "same output file")

	data, err := os.ReadFile(filepath.Join(root, "about.html"))
	require.NoError(t, err)
	assert.Equal(t, "from html", string(data))
}

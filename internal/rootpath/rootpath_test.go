package rootpath

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefix(t *testing.T) {
	root := filepath.Join("src", "pages")

	tests := []struct {
		name string
		page string
		want string
	}{
		{"page at root", filepath.Join(root, "index.html"), ""},
		{"one level deep", filepath.Join(root, "blog", "post.html"), "../"},
		{"two levels deep", filepath.Join(root, "docs", "api", "ref.html"), "../../"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Prefix(tt.page, root))
		})
	}
}

func TestPrefix_AbsoluteAndRelativeAgree(t *testing.T) {
	root := filepath.Join("src", "pages")
	page := filepath.Join(root, "a", "b", "c.html")
	absRoot, err := filepath.Abs(root)
	assert.NoError(t, err)

	assert.Equal(t, Prefix(page, root), Prefix(filepath.Join(absRoot, "a", "b", "c.html"), absRoot))
}

func TestPrefix_Deterministic(t *testing.T) {
	page := filepath.Join("src", "pages", "x", "y.html")
	first := Prefix(page, filepath.Join("src", "pages"))
	for range 5 {
		assert.Equal(t, first, Prefix(page, filepath.Join("src", "pages")))
	}
	assert.NotEqual(t, Prefix(filepath.Join("src", "pages", "i.html"), filepath.Join("src", "pages")), first)
}

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "panini.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		file, ok := err.Context().Get("file")
		require.True(t, ok)
		assert.Equal(t, "panini.yaml", file)
	})

	t.Run("Page errors default to error severity", func(t *testing.T) {
		err := RenderError("layout missing").Build()
		assert.Equal(t, SeverityError, err.Severity())
		assert.False(t, err.IsFatal())
		assert.True(t, ConfigError("x").Build().IsFatal())
	})

	t.Run("Wrapping keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("yaml: line 2: mapping values are not allowed")
		err := WrapError(cause, CategoryFrontMatter, "front matter parse failed").
			WithContext("page", "about").
			Build()

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, cause, err.Cause())
		assert.Contains(t, err.Error(), "[frontmatter:error] front matter parse failed: yaml")
	})

	t.Run("Detection through fmt wrapping", func(t *testing.T) {
		inner := TimeoutError("render timed out").Build()
		wrapped := fmt.Errorf("page index: %w", inner)

		assert.True(t, IsClassified(wrapped))
		assert.True(t, HasCategory(wrapped, CategoryTimeout))
		assert.Equal(t, CategoryTimeout, GetCategory(wrapped))
		assert.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
		assert.Equal(t, SeverityError, GetSeverity(errors.New("plain")))
	})

	t.Run("Builder fills cause, context map and severity", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := FileSystemError("write page").
			WithCause(cause).
			WithContextMap(ErrorContext{"path": "dist/index.html", "page": "index"}).
			Warning().
			Build()

		assert.Equal(t, CategoryFileSystem, err.Category())
		assert.Equal(t, SeverityWarning, err.Severity())
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "index", err.Context()["page"])
		assert.Equal(t, "dist/index.html", err.Context()["path"])
	})

	t.Run("Is compares category and message", func(t *testing.T) {
		a := RenderError("boom").WithContext("page", "a").Build()
		b := RenderError("boom").WithContext("page", "b").Build()
		assert.ErrorIs(t, a, b)
		assert.NotErrorIs(t, a, FrontMatterError("boom").Build())
	})
}

func TestErrorContext(t *testing.T) {
	var ctx ErrorContext
	ctx = ctx.Set("page", "index")
	merged := ctx.Merge(ErrorContext{"page": "about", "layout": "default"})

	assert.Equal(t, "index", ctx["page"], "merge must not mutate receiver")
	assert.Equal(t, "about", merged["page"])
	assert.Equal(t, "default", merged["layout"])

	err := RenderError("x").Build().WithContext("layout", "post")
	layout, ok := err.Context().Get("layout")
	require.True(t, ok)
	assert.Equal(t, "post", layout)
}

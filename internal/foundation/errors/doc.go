// Package errors provides the classified error primitives used across panini.
//
// A ClassifiedError carries a category (config, frontmatter, render, ...), a
// severity and a free-form context map. Page-level failures are always
// classified so that the build can attach them to a diagnostic page and the CLI
// can pick an exit code.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryRender, "layout render failed").
//		WithContext("page", "about").
//		WithContext("layout", "default").
//		Build()
package errors

// Package rootpath computes the relative prefix from a page to the pages root.
package rootpath

import (
	"path/filepath"
)

// Prefix returns the slash-separated relative path from the directory holding
// pagePath to pagesRoot, with a trailing slash. A page directly under the
// pages root gets the empty prefix; one two levels deep gets "../../".
//
// Relative arguments are resolved against the working directory first, so the
// result depends only on the inputs for a given process.
func Prefix(pagePath, pagesRoot string) string {
	pageDir := filepath.Dir(absOrClean(pagePath))
	rel, err := filepath.Rel(pageDir, absOrClean(pagesRoot))
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel) + "/"
}

func absOrClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

package build

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/panini/internal/config"
	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
	"git.home.luguber.info/inful/panini/internal/page"
)

// PageExtensions are the source extensions LoadPages picks up.
var PageExtensions = []string{".html", ".hbs", ".md", ".markdown"}

// LoadPages reads every page source under the pages root in lexical path
// order. Hidden files and directories are skipped.
func LoadPages(cfg *config.Config) ([]page.RawPage, error) {
	root := cfg.PagesRoot()
	var pages []page.RawPage
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isPageSource(path) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		pages = append(pages, page.RawPage{Path: path, Content: content})
		return nil
	})
	if err != nil {
		return nil, ferrors.FileSystemError("load pages").
			WithCause(err).
			WithContext("path", root).
			Fatal().
			Build()
	}
	return pages, nil
}

func isPageSource(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range PageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

package build

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
	"git.home.luguber.info/inful/panini/internal/logfields"
	"git.home.luguber.info/inful/panini/internal/render"
)

// Writer stores outcomes under an output directory, mirroring the page
// layout of the pages root. Failed outcomes are written as well so the
// diagnostic page shows up where the page would have been.
type Writer struct {
	root   string
	logger *slog.Logger
}

func NewWriter(root string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{root: root, logger: logger}
}

// Write writes every outcome and returns how many files were written. It
// keeps going past individual failures and returns them joined. When two
// pages map to the same output file (about.md and about.html) the first one
// in outcome order is written and the other is reported.
func (w *Writer) Write(outcomes []render.Outcome) (int, error) {
	written := 0
	var errs []error
	owners := make(map[string]string, len(outcomes))
	for _, o := range outcomes {
		if o.Page == nil {
			continue
		}
		rel := o.Page.Source.RelPath
		target := w.Target(rel)
		if owner, taken := owners[target]; taken {
			w.logger.Warn("Skipping page whose output file is already taken",
				logfields.Page(o.Page.Name), logfields.Path(target), slog.String("owner", owner))
			errs = append(errs, ferrors.ValidationError("two pages map to the same output file").
				WithContextMap(ferrors.ErrorContext{"path": target, "page": rel, "owner": owner}).
				Warning().
				Build())
			continue
		}
		owners[target] = rel
		if err := writeFile(target, o.Content); err != nil {
			errs = append(errs, ferrors.FileSystemError("write page").
				WithCause(err).
				WithContext("path", target).
				Build())
			continue
		}
		written++
		w.logger.Debug("Wrote page", logfields.Page(o.Page.Name), logfields.Path(target), logfields.Outcome(string(o.Status)))
	}
	return written, errors.Join(errs...)
}

// Target maps a page path relative to the pages root to its output file.
// Sources that are not HTML get an .html extension.
func (w *Writer) Target(rel string) string {
	ext := filepath.Ext(rel)
	switch strings.ToLower(ext) {
	case ".md", ".markdown", ".hbs":
		rel = strings.TrimSuffix(rel, ext) + ".html"
	}
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

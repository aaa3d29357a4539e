package page

import (
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/panini/internal/config"
	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
	"git.home.luguber.info/inful/panini/internal/frontmatter"
	"git.home.luguber.info/inful/panini/internal/logfields"
	"git.home.luguber.info/inful/panini/internal/rootpath"
)

// FrontMatterFunc splits a page source into attributes and body.
type FrontMatterFunc func(content []byte) (frontmatter.FrontMatter, error)

// RootFunc computes the root-relative prefix for a page.
type RootFunc func(pagePath, pagesRoot string) string

// Parser turns RawPages into ParsedPages. It has no side effects besides
// logging and is safe to reuse across pages.
type Parser struct {
	pagesRoot     string
	overrides     map[string]string
	defaultLayout string
	layoutPath    func(name string) string
	global        map[string]any
	parseFM       FrontMatterFunc
	root          RootFunc
	logger        *slog.Logger
}

// ParserOption customizes a Parser.
type ParserOption func(*Parser)

// WithFrontMatterFunc replaces the front matter parser.
func WithFrontMatterFunc(fn FrontMatterFunc) ParserOption {
	return func(p *Parser) {
		if fn != nil {
			p.parseFM = fn
		}
	}
}

// WithRootFunc replaces the root prefix utility.
func WithRootFunc(fn RootFunc) ParserOption {
	return func(p *Parser) {
		if fn != nil {
			p.root = fn
		}
	}
}

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(l *slog.Logger) ParserOption {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser builds a parser over cfg. global is the site-wide data layer and
// is read, never written.
func NewParser(cfg *config.Config, global map[string]any, opts ...ParserOption) *Parser {
	p := &Parser{
		pagesRoot:     cfg.PagesRoot(),
		overrides:     cfg.PageLayouts,
		defaultLayout: config.DefaultLayout,
		layoutPath:    cfg.LayoutPath,
		global:        global,
		parseFM:       frontmatter.Parse,
		root:          rootpath.Prefix,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse normalizes one raw page. A front matter failure does not return an
// error: the page is still produced, with ParseErr set, so that the build
// phase can emit a diagnostic page for it.
func (p *Parser) Parse(raw RawPage) *ParsedPage {
	name := baseName(raw.Path)
	basePath := p.relative(filepath.Dir(raw.Path))

	src := SourceRef{
		Path:        raw.Path,
		RelPath:     p.relPath(raw.Path),
		Fingerprint: frontmatter.Fingerprint(raw.Content),
	}

	fm, err := p.parseFM(raw.Content)
	var parseErr error
	if err != nil {
		parseErr = ferrors.FrontMatterError("front matter parse failed").
			WithCause(err).
			WithContext("page", name).
			WithContext("path", raw.Path).
			Build()
		p.logger.Warn("Front matter parse failed", logfields.Page(name), logfields.Path(raw.Path), logfields.Error(err))
		fm = frontmatter.FrontMatter{}
	}

	layout := ResolveLayout(fm.Attributes[KeyLayout], basePath, p.overrides, p.defaultLayout)
	computed := map[string]any{
		KeyPage:   name,
		KeyLayout: layout,
		KeyRoot:   p.root(raw.Path, p.pagesRoot),
	}

	parsed := &ParsedPage{
		Source:   src,
		Name:     name,
		Body:     fm.Body,
		Context:  MergeContext(p.global, raw.Data, fm.Attributes, computed),
		Layout:   LayoutRef{Name: layout, Path: p.layoutPath(layout)},
		ParseErr: parseErr,
	}
	p.logger.Debug("Parsed page",
		logfields.Page(name),
		logfields.Layout(layout),
		logfields.Fingerprint(src.Fingerprint))
	return parsed
}

// relative returns dir relative to the pages root, or "" when dir lies outside it.
func (p *Parser) relative(dir string) string {
	rel, err := filepath.Rel(absOrClean(p.pagesRoot), absOrClean(dir))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}

func (p *Parser) relPath(path string) string {
	rel, err := filepath.Rel(absOrClean(p.pagesRoot), absOrClean(path))
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

// baseName is the page name: the file name without extension, in NFC so
// names read from decomposing filesystems compare equal to template literals.
func baseName(path string) string {
	base := filepath.Base(path)
	return norm.NFC.String(strings.TrimSuffix(base, filepath.Ext(base)))
}

func absOrClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flosch/pongo2/v6"

	"git.home.luguber.info/inful/panini/internal/config"
	"git.home.luguber.info/inful/panini/internal/logfields"
	"git.home.luguber.info/inful/panini/internal/page"
)

// Engine compiles a layout and executes it against a context.
type Engine interface {
	Render(ctx context.Context, layoutPath string, data page.DataContext) (string, error)
}

// identifier matches the context keys pongo2 accepts.
var identifier = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// PongoEngine renders layouts with pongo2. Each call gets its own template
// set, so partial resolution never leaks between pages.
type PongoEngine struct {
	layoutsRoot  string
	partialsRoot string
	stager       Stager
	logger       *slog.Logger
}

// NewPongoEngine returns an engine reading layouts and partials from cfg and
// page bodies from stager.
func NewPongoEngine(cfg *config.Config, stager Stager, logger *slog.Logger) *PongoEngine {
	if logger == nil {
		logger = slog.Default()
	}
	registerFilters()
	return &PongoEngine{
		layoutsRoot:  cfg.LayoutsRoot(),
		partialsRoot: cfg.PartialsRoot(),
		stager:       stager,
		logger:       logger,
	}
}

// Render compiles layoutPath and executes it with data. When ctx ends first
// Render returns ctx.Err(); the execution itself keeps running to completion
// in the background because pongo2 has no cancellation hook.
func (e *PongoEngine) Render(ctx context.Context, layoutPath string, data page.DataContext) (string, error) {
	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("template panic: %v", r)}
			}
		}()
		out, err := e.execute(layoutPath, data)
		done <- result{out: out, err: err}
	}()

	select {
	case res := <-done:
		return res.out, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (e *PongoEngine) execute(layoutPath string, data page.DataContext) (string, error) {
	layouts, err := pongo2.NewLocalFileSystemLoader(e.layoutsRoot)
	if err != nil {
		return "", fmt.Errorf("layouts directory: %w", err)
	}
	partials := &partialLoader{
		root:    e.partialsRoot,
		stager:  e.stager,
		bodyRef: bodyRef(data),
	}
	set := pongo2.NewSet("page", partials, layouts)

	if abs, err := filepath.Abs(layoutPath); err == nil {
		layoutPath = abs
	}
	tpl, err := set.FromFile(layoutPath)
	if err != nil {
		return "", err
	}
	return tpl.Execute(e.pongoContext(data))
}

// pongoContext copies data into a pongo2.Context, dropping keys pongo2 would
// reject as identifiers (front matter may use dashes, for example).
func (e *PongoEngine) pongoContext(data page.DataContext) pongo2.Context {
	pc := make(pongo2.Context, len(data))
	for k, v := range data {
		if !identifier.MatchString(k) {
			e.logger.Debug("Skipping context key that is not a template identifier",
				slog.String("key", k), logfields.Page(data.String(page.KeyPage)))
			continue
		}
		pc[k] = v
	}
	return pc
}

func bodyRef(data page.DataContext) string {
	switch p := data[KeyPartials].(type) {
	case map[string]string:
		return p[BodyPartial]
	case map[string]any:
		s, _ := p[BodyPartial].(string)
		return s
	}
	return ""
}

// partialLoader resolves include names that are partials: "body" maps to the
// staged page body, other bare names to <partials>/<name>.html. Anything it
// cannot find falls through to the next loader in the set.
type partialLoader struct {
	root    string
	stager  Stager
	bodyRef string
}

func (l *partialLoader) Abs(_, name string) string { return name }

func (l *partialLoader) Get(name string) (io.Reader, error) {
	if name == BodyPartial {
		if l.bodyRef == "" {
			return nil, fmt.Errorf("partial %q: no page body staged", name)
		}
		return l.stager.Open(l.bodyRef)
	}
	if filepath.IsAbs(name) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("partial %q: %w", name, os.ErrNotExist)
	}
	candidates := []string{filepath.Join(l.root, filepath.FromSlash(name))}
	if filepath.Ext(name) == "" {
		candidates = append([]string{filepath.Join(l.root, filepath.FromSlash(name)+config.LayoutExt)}, candidates...)
	}
	for _, c := range candidates {
		data, err := os.ReadFile(c)
		if err == nil {
			return bytes.NewReader(data), nil
		}
	}
	return nil, fmt.Errorf("partial %q: %w", name, os.ErrNotExist)
}

package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
	"git.home.luguber.info/inful/panini/internal/logfields"
	"git.home.luguber.info/inful/panini/internal/page"
)

// ErrorHandler is told about every failed page, in addition to the failure
// being returned as an Outcome.
type ErrorHandler func(p *page.ParsedPage, cause error)

// Renderer renders single pages. It is safe for concurrent use as long as
// the Engine and Stager are.
type Renderer struct {
	engine  Engine
	stager  Stager
	onError ErrorHandler
	logger  *slog.Logger
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithErrorHandler sets the callback invoked for failed pages.
func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Renderer) { r.onError = h }
}

// WithLogger sets the renderer logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRenderer returns a renderer using engine and stager.
func NewRenderer(engine Engine, stager Stager, opts ...Option) *Renderer {
	r := &Renderer{engine: engine, stager: stager, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces exactly one outcome for p and never panics. The page is
// not modified; the body partial and page predicates are added to a copy of
// its context.
func (r *Renderer) Render(ctx context.Context, p *page.ParsedPage) (out Outcome) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			out = r.fail(p, ferrors.InternalError(fmt.Sprintf("render panic: %v", rec)).
				WithContext("page", p.Name).
				Build())
		}
		out.Duration = time.Since(start)
	}()

	if p.ParseErr != nil {
		return r.fail(p, p.ParseErr)
	}

	body := p.Body
	if p.Source.IsMarkdown() {
		body = markdownBody(body)
	}
	ref, err := r.stager.Stage(p, body)
	if err != nil {
		return r.fail(p, err)
	}
	defer r.stager.Release(ref)

	content, err := r.engine.Render(ctx, p.Layout.Path, DeriveContext(p, ref))
	if err != nil {
		return r.fail(p, classifyRenderError(p, err))
	}

	r.logger.Debug("Rendered page", logfields.Page(p.Name), logfields.Layout(p.Layout.Name))
	return Rendered(p, content)
}

// DeriveContext returns a copy of the page context extended with the body
// partial reference and the page predicates.
func DeriveContext(p *page.ParsedPage, bodyRef string) page.DataContext {
	data := p.Context.Clone()
	ifPage, unlessPage := pagePredicates(p.Name)
	data[KeyPartials] = map[string]string{BodyPartial: bodyRef}
	data[KeyIfPage] = ifPage
	data[KeyUnlessPage] = unlessPage
	data[KeyCurrentPage] = p.Name
	return data
}

func (r *Renderer) fail(p *page.ParsedPage, cause error) Outcome {
	r.logger.Error("Page failed", logfields.Page(p.Name), logfields.Layout(p.Layout.Name), logfields.Error(cause))
	if r.onError != nil {
		r.onError(p, cause)
	}
	return Failed(p, cause)
}

func classifyRenderError(p *page.ParsedPage, err error) error {
	if ferrors.IsClassified(err) {
		return err
	}
	b := ferrors.RenderError("render failed")
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		b = ferrors.TimeoutError("render did not finish before the run deadline")
	case errors.Is(err, context.Canceled):
		b = ferrors.NewError(ferrors.CategoryRuntime, "render canceled")
	}
	return b.WithCause(err).
		WithContextMap(ferrors.ErrorContext{"page": p.Name, "layout": p.Layout.Name}).
		Build()
}

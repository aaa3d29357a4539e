package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
	"git.home.luguber.info/inful/panini/internal/logfields"
	"git.home.luguber.info/inful/panini/internal/metrics"
	"git.home.luguber.info/inful/panini/internal/page"
	"git.home.luguber.info/inful/panini/internal/pipeline"
	"git.home.luguber.info/inful/panini/internal/render"
)

// PageRenderer renders one page into exactly one outcome.
type PageRenderer interface {
	Render(ctx context.Context, p *page.ParsedPage) render.Outcome
}

// Coordinator renders a batch of parsed pages concurrently.
type Coordinator struct {
	renderer    PageRenderer
	concurrency int
	timeout     time.Duration
	bus         *pipeline.Bus
	recorder    metrics.Recorder
	logger      *slog.Logger
}

// CoordinatorOption customizes a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithConcurrency bounds simultaneous renders. Zero or less means no bound.
func WithConcurrency(n int) CoordinatorOption {
	return func(c *Coordinator) { c.concurrency = n }
}

// WithTimeout sets the run-level deadline for the whole batch.
func WithTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.timeout = d }
}

// WithBus publishes a page event for every settled page.
func WithBus(b *pipeline.Bus) CoordinatorOption {
	return func(c *Coordinator) { c.bus = b }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) CoordinatorOption {
	return func(c *Coordinator) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithCoordinatorLogger sets the logger.
func WithCoordinatorLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCoordinator returns a coordinator rendering with r.
func NewCoordinator(r PageRenderer, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{renderer: r, recorder: metrics.NoopRecorder{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type settled struct {
	index   int
	outcome render.Outcome
}

// Run starts a render for every page and returns once each has settled,
// with outcomes in the order of pages. A failing or panicking page never
// affects its siblings. When the deadline passes, pages still outstanding
// settle as timeout failures; when ctx is canceled they settle as runtime
// failures. Their renders are left to finish on their own.
func (c *Coordinator) Run(ctx context.Context, runID string, pages []*page.ParsedPage) []render.Outcome {
	outcomes := make([]render.Outcome, len(pages))
	if len(pages) == 0 {
		return outcomes
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	limit := c.concurrency
	if limit <= 0 || limit > len(pages) {
		limit = len(pages)
	}
	c.recorder.SetRenderConcurrency(c.concurrency)

	start := time.Now()
	sem := make(chan struct{}, limit)
	// Buffered so late renders never block after Run has returned.
	results := make(chan settled, len(pages))
	for i, p := range pages {
		go func() {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()
			results <- settled{index: i, outcome: c.renderSafe(ctx, p)}
		}()
	}

	done := make([]bool, len(pages))
	for remaining := len(pages); remaining > 0; remaining-- {
		select {
		case r := <-results:
			done[r.index] = true
			outcomes[r.index] = r.outcome
			c.settle(runID, r.outcome)
		case <-ctx.Done():
			// Keep outcomes that made it in before the context ended.
			for drained := false; !drained; {
				select {
				case r := <-results:
					done[r.index] = true
					outcomes[r.index] = r.outcome
					c.settle(runID, r.outcome)
				default:
					drained = true
				}
			}
			outstanding := 0
			for i, p := range pages {
				if done[i] {
					continue
				}
				outstanding++
				o := render.Failed(p, unsettledCause(p, ctx.Err()))
				o.Duration = time.Since(start)
				outcomes[i] = o
				c.settle(runID, o)
			}
			msg := "Render deadline reached"
			if errors.Is(ctx.Err(), context.Canceled) {
				msg = "Render canceled"
			}
			c.logger.Warn(msg, logfields.RunID(runID), logfields.Count(outstanding))
			return outcomes
		}
	}
	return outcomes
}

// renderSafe turns a panic in the renderer into a failed outcome.
func (c *Coordinator) renderSafe(ctx context.Context, p *page.ParsedPage) (out render.Outcome) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			out = render.Failed(p, ferrors.InternalError(fmt.Sprintf("renderer panic: %v", rec)).
				WithContext("page", p.Name).
				Build())
			out.Duration = time.Since(start)
		}
	}()
	return c.renderer.Render(ctx, p)
}

func (c *Coordinator) settle(runID string, o render.Outcome) {
	status := string(o.Status)
	c.recorder.ObservePageDuration(status, o.Duration)
	c.recorder.IncPageOutcome(status)
	if c.bus == nil {
		return
	}

	info := pageInfo(o.Page)
	var e pipeline.Event = pipeline.PageRendered{RunID: runID, Page: info, Duration: o.Duration}
	if !o.OK() {
		e = pipeline.PageFailed{
			RunID:    runID,
			Page:     info,
			Category: string(ferrors.GetCategory(o.Cause)),
			Err:      o.Cause,
			Duration: o.Duration,
		}
	}
	if err := c.bus.Publish(e); err != nil {
		c.logger.Warn("Page event handler failed", logfields.Page(info.Name), logfields.Error(err))
	}
}

func pageInfo(p *page.ParsedPage) pipeline.PageInfo {
	if p == nil {
		return pipeline.PageInfo{}
	}
	return pipeline.PageInfo{
		Name:        p.Name,
		Path:        p.Source.RelPath,
		Layout:      p.Layout.Name,
		Fingerprint: p.Source.Fingerprint,
	}
}

// unsettledCause classifies a page that had not settled when ctx ended: a
// passed deadline is a timeout, a canceled parent context is a runtime error.
func unsettledCause(p *page.ParsedPage, err error) error {
	b := ferrors.TimeoutError("page did not settle before the run deadline")
	if errors.Is(err, context.Canceled) {
		b = ferrors.NewError(ferrors.CategoryRuntime, "page did not settle before the run was canceled")
	}
	return b.WithCause(err).
		WithContext("page", p.Name).
		Build()
}

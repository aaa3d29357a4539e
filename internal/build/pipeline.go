package build

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/panini/internal/config"
	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
	"git.home.luguber.info/inful/panini/internal/logfields"
	"git.home.luguber.info/inful/panini/internal/metrics"
	"git.home.luguber.info/inful/panini/internal/page"
	"git.home.luguber.info/inful/panini/internal/pipeline"
	"git.home.luguber.info/inful/panini/internal/render"
	"git.home.luguber.info/inful/panini/internal/sitedata"
)

// DataLoader produces the global data layer for a run.
type DataLoader func(cfg *config.Config) (map[string]any, error)

// Pipeline runs the parse and build phases for one configuration. Runs on
// the same Pipeline are serialized.
type Pipeline struct {
	cfg      *config.Config
	bus      *pipeline.Bus
	recorder metrics.Recorder
	logger   *slog.Logger
	loadData DataLoader
	renderer PageRenderer
	newID    func() string

	mu    sync.Mutex
	store *page.Store
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithEventBus sets the bus lifecycle events are published on.
func WithEventBus(b *pipeline.Bus) Option {
	return func(p *Pipeline) {
		if b != nil {
			p.bus = b
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithDataLoader replaces the global data loader.
func WithDataLoader(fn DataLoader) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.loadData = fn
		}
	}
}

// WithRenderer replaces the page renderer built from the configuration.
func WithRenderer(r PageRenderer) Option {
	return func(p *Pipeline) { p.renderer = r }
}

// NewPipeline returns a pipeline over cfg.
func NewPipeline(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		bus:      pipeline.NewBus(),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		loadData: sitedata.Load,
		newID:    uuid.NewString,
		store:    page.NewStore(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Bus returns the bus lifecycle events are published on.
func (p *Pipeline) Bus() *pipeline.Bus { return p.bus }

// Run parses raws, waits until all of them are parsed, then renders them.
// Global data is reloaded on every run. An error is only returned when the
// run cannot start; page failures are reported through the outcomes.
func (p *Pipeline) Run(ctx context.Context, raws []page.RawPage) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	res := &Result{RunID: p.newID(), StartTime: time.Now()}
	log := p.logger.With(logfields.RunID(res.RunID))
	defer func() {
		res.Duration = time.Since(res.StartTime)
		p.recorder.ObserveBuildDuration(res.Duration)
		p.recorder.IncBuildOutcome(res.Status.metric())
	}()

	if err := ctx.Err(); err != nil {
		res.Status = StatusCanceled
		return res, ferrors.WrapError(err, ferrors.CategoryRuntime, "run canceled before start").Build()
	}

	global, err := p.loadData(p.cfg)
	if err != nil {
		res.Status = StatusFailed
		log.Error("Global data failed to load", logfields.Error(err))
		return res, err
	}

	pages := p.parse(res.RunID, raws, global, log)

	p.publish(log, pipeline.BuildingStarted{RunID: res.RunID, Pages: len(pages)})
	renderer := p.renderer
	if renderer == nil {
		renderer = p.defaultRenderer(log)
	}
	coord := NewCoordinator(renderer,
		WithConcurrency(p.cfg.Render.Concurrency),
		WithTimeout(p.cfg.Render.Timeout),
		WithBus(p.bus),
		WithRecorder(p.recorder),
		WithCoordinatorLogger(log))

	buildStart := time.Now()
	res.Outcomes = coord.Run(ctx, res.RunID, pages)
	p.recorder.ObserveStageDuration(metrics.StageBuild, time.Since(buildStart))

	for _, o := range res.Outcomes {
		if o.OK() {
			res.Rendered++
		} else {
			res.Failed++
		}
	}
	res.Status = statusFor(res.Failed)

	p.publish(log, pipeline.Built{
		RunID:    res.RunID,
		Pages:    len(pages),
		Rendered: res.Rendered,
		Failed:   res.Failed,
		Outcome:  string(res.Status),
		Duration: time.Since(res.StartTime),
	})
	log.Info("Build finished",
		logfields.Count(len(pages)),
		slog.Int("rendered", res.Rendered),
		slog.Int("failed", res.Failed),
		logfields.Outcome(string(res.Status)),
		logfields.Duration(time.Since(res.StartTime)))
	return res, nil
}

// parse runs the parse phase to completion and drains the store. Nothing is
// rendered before this returns.
func (p *Pipeline) parse(runID string, raws []page.RawPage, global map[string]any, log *slog.Logger) []*page.ParsedPage {
	start := time.Now()
	p.publish(log, pipeline.ParsingStarted{RunID: runID, Pages: len(raws)})

	p.store.Reset()
	parser := page.NewParser(p.cfg, global, page.WithLogger(log))
	for _, raw := range raws {
		// The store was just reset and is drained only below.
		_ = p.store.Append(parser.Parse(raw))
	}
	pages, _ := p.store.Drain()

	p.recorder.SetPagesParsed(len(pages))
	p.recorder.ObserveStageDuration(metrics.StageParse, time.Since(start))
	log.Debug("Parse phase complete", logfields.Count(len(pages)), logfields.Duration(time.Since(start)))
	return pages
}

func (p *Pipeline) defaultRenderer(log *slog.Logger) PageRenderer {
	stager := render.NewStager(p.cfg)
	engine := render.NewPongoEngine(p.cfg, stager, log)
	return render.NewRenderer(engine, stager, render.WithLogger(log))
}

func (p *Pipeline) publish(log *slog.Logger, e pipeline.Event) {
	if err := p.bus.Publish(e); err != nil {
		log.Warn("Lifecycle event handler failed", slog.String("event", e.Name()), logfields.Error(err))
	}
}

// Build loads the pages from disk, runs them and writes the outcomes to the
// configured output directory.
func (p *Pipeline) Build(ctx context.Context) (*Result, error) {
	loadStart := time.Now()
	raws, err := LoadPages(p.cfg)
	if err != nil {
		return nil, err
	}
	p.recorder.ObserveStageDuration(metrics.StageLoad, time.Since(loadStart))

	res, err := p.Run(ctx, raws)
	if err != nil {
		return res, err
	}
	if p.cfg.Output == "" {
		return res, nil
	}

	writeStart := time.Now()
	res.Written, err = NewWriter(p.cfg.Output, p.logger).Write(res.Outcomes)
	p.recorder.ObserveStageDuration(metrics.StageWrite, time.Since(writeStart))
	return res, err
}

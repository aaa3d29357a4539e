package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/panini/internal/config"
	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
	"git.home.luguber.info/inful/panini/internal/logfields"
	"git.home.luguber.info/inful/panini/internal/metrics"
	"git.home.luguber.info/inful/panini/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output   string        `short:"o" help:"Override the output directory"`
	Debounce time.Duration `help:"Override watch.debounce"`
	Interval time.Duration `help:"Override watch.interval (periodic rebuilds)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	if w.Output != "" {
		cfg.Output = w.Output
	}
	if w.Debounce > 0 {
		cfg.Watch.Debounce = w.Debounce
	}
	if w.Interval > 0 {
		cfg.Watch.Interval = w.Interval
	}
	logger := g.Logger

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		stop := serveMetrics(cfg, reg, logger)
		defer stop()
	}

	p, cleanup, err := newPipeline(cfg, recorder, logger)
	defer cleanup()
	if err != nil {
		return err
	}

	rebuilder := watch.NewRebuilder(func(ctx context.Context) error {
		res, err := p.Build(ctx)
		if res != nil {
			printSummary(os.Stdout, res)
		}
		return err
	}, logger)
	rebuilder.Request("initial build")

	watcher, err := watch.NewWatcher(cfg.Input, []string{cfg.Output, cfg.StagingRoot()}, cfg.Watch.Debounce, rebuilder.Request, logger)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to start watcher").Fatal().Build()
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Start(ctx); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to watch input").
			WithContext("path", cfg.Input).
			Fatal().
			Build()
	}

	if cfg.Watch.Interval > 0 {
		sched, err := watch.NewScheduler(cfg.Watch.Interval, rebuilder.Request)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create rebuild scheduler").Build()
		}
		sched.Start()
		defer func() { _ = sched.Stop() }()
	}

	rebuilder.Run(ctx)
	logger.Info("Watch stopped")
	return nil
}

// serveMetrics exposes reg on cfg.Metrics.Listen until the returned func is
// called.
func serveMetrics(cfg *config.Config, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.HTTPHandler(reg))
	srv := &http.Server{
		Addr:              cfg.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Serving metrics", slog.String("addr", cfg.Metrics.Listen), logfields.Path(cfg.Metrics.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/panini/internal/build"
	"git.home.luguber.info/inful/panini/internal/config"
	"git.home.luguber.info/inful/panini/internal/eventstore"
	"git.home.luguber.info/inful/panini/internal/metrics"
	"git.home.luguber.info/inful/panini/internal/notify"
	"git.home.luguber.info/inful/panini/internal/pipeline"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config      string           `short:"c" help:"Configuration file path" default:"panini.yaml" env:"PANINI_CONFIG"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	VersionFlag kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Render every page once"`
	Watch   WatchCmd   `cmd:"" help:"Render, then re-render whenever the input changes"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	History HistoryCmd `cmd:"" help:"Show recent runs recorded in the event store"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel honours -v first, then PANINI_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(os.Getenv("PANINI_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newPipeline wires the configured event sinks into a pipeline. The returned
// cleanup closes them.
func newPipeline(cfg *config.Config, recorder metrics.Recorder, logger *slog.Logger) (*build.Pipeline, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	bus := pipeline.NewBus()
	if cfg.Events.Store != "" {
		store, err := eventstore.NewSQLiteStore(cfg.Events.Store)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = store.Close() })
		bus = pipeline.NewBusWithEventStore(store)
	}
	bus.WithLogger(logger)

	if cfg.Events.NATSURL != "" {
		pub, err := notify.NewNATSPublisher(cfg)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		pub.Attach(bus)
		closers = append(closers, func() {
			if n := pub.Redeliver(); n > 0 {
				logger.Info("Redelivered parked lifecycle events", slog.Int("count", n))
			}
			if n := pub.Undelivered(); n > 0 {
				logger.Warn("Lifecycle events were not delivered to NATS", slog.Int("count", n))
			}
			pub.Close()
		})
	}

	p := build.NewPipeline(cfg,
		build.WithEventBus(bus),
		build.WithMetrics(recorder),
		build.WithLogger(logger))
	return p, cleanup, nil
}

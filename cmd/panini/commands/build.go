package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/panini/internal/build"
	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
	"git.home.luguber.info/inful/panini/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string        `short:"o" help:"Override the output directory"`
	Concurrency int           `help:"Override render.concurrency (0 = unbounded)" default:"-1"`
	Timeout     time.Duration `help:"Override render.timeout"`
	Strict      bool          `help:"Exit non-zero when any page fails"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output = b.Output
	}
	if b.Concurrency >= 0 {
		cfg.Render.Concurrency = b.Concurrency
	}
	if b.Timeout > 0 {
		cfg.Render.Timeout = b.Timeout
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p, cleanup, err := newPipeline(cfg, metrics.NoopRecorder{}, g.Logger)
	defer cleanup()
	if err != nil {
		return err
	}

	res, err := p.Build(ctx)
	if res != nil {
		printSummary(os.Stdout, res)
	}
	if err != nil {
		return err
	}
	if b.Strict && res.Failed > 0 {
		return ferrors.RenderError(fmt.Sprintf("%d of %d pages failed", res.Failed, len(res.Outcomes))).
			WithContext("run_id", res.RunID).
			Build()
	}
	return nil
}

func printSummary(w io.Writer, res *build.Result) {
	_, _ = fmt.Fprintf(w, "Run %s: %d pages, %d rendered, %d failed (%s)\n",
		res.RunID, len(res.Outcomes), res.Rendered, res.Failed, res.Duration.Round(time.Millisecond))
	for _, o := range res.FailedOutcomes() {
		_, _ = fmt.Fprintf(w, "  FAILED %s: %v\n", o.Page.Source.RelPath, o.Cause)
	}
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/panini/internal/eventstore"
	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Store string `help:"Event store path (defaults to events.store from the configuration)"`
	Limit int    `short:"n" help:"Number of runs to show" default:"10"`
	JSON  bool   `help:"Print runs as JSON"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	path := h.Store
	if path == "" {
		cfg, err := loadConfig(root.Config)
		if err != nil {
			return err
		}
		path = cfg.Events.Store
	}
	if path == "" {
		return ferrors.ValidationError("no event store configured (set events.store or pass --store)").Build()
	}
	if _, err := os.Stat(path); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "event store not found").
			WithContext("path", path).
			Build()
	}

	store, err := eventstore.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	projection := eventstore.NewRunHistoryProjection(store, h.Limit)
	if err := projection.Rebuild(context.Background()); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to read run history").Build()
	}
	return printHistory(os.Stdout, projection.History(), h.JSON)
}

func printHistory(w io.Writer, runs []eventstore.RunSummary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "No completed runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RUN\tSTARTED\tOUTCOME\tPAGES\tRENDERED\tFAILED\tDURATION")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.RunID, r.StartedAt.Local().Format(time.DateTime), r.Outcome,
			r.Pages, r.Rendered, r.Failed, r.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

// Package watch re-runs the pipeline when the input changes or on a schedule.
package watch

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/panini/internal/logfields"
)

// BuildFunc runs one rebuild.
type BuildFunc func(ctx context.Context) error

// Rebuilder serializes rebuild requests. Requests arriving while a rebuild
// runs collapse into a single follow-up rebuild.
type Rebuilder struct {
	build   BuildFunc
	pending chan string
	logger  *slog.Logger
}

func NewRebuilder(build BuildFunc, logger *slog.Logger) *Rebuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rebuilder{build: build, pending: make(chan string, 1), logger: logger}
}

// Request asks for a rebuild. It never blocks.
func (r *Rebuilder) Request(reason string) {
	select {
	case r.pending <- reason:
	default:
		r.logger.Debug("Rebuild already pending", slog.String("reason", reason))
	}
}

// Run processes requests until ctx ends.
func (r *Rebuilder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-r.pending:
			r.logger.Info("Rebuilding", slog.String("reason", reason))
			if err := r.build(ctx); err != nil {
				r.logger.Error("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

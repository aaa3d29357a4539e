package build

import (
	"time"

	"git.home.luguber.info/inful/panini/internal/metrics"
	"git.home.luguber.info/inful/panini/internal/render"
)

// Status is the overall outcome of a run.
type Status string

const (
	// StatusSuccess means every page rendered.
	StatusSuccess Status = "success"
	// StatusPartial means the run completed but at least one page failed.
	StatusPartial Status = "partial"
	// StatusFailed means the run could not complete, e.g. global data failed to load.
	StatusFailed Status = "failed"
	// StatusCanceled means the context ended before rendering started.
	StatusCanceled Status = "canceled"
)

// IsSuccess reports whether every page rendered.
func (s Status) IsSuccess() bool { return s == StatusSuccess }

func (s Status) metric() metrics.BuildOutcome {
	switch s {
	case StatusSuccess:
		return metrics.BuildSuccess
	case StatusPartial:
		return metrics.BuildPartial
	case StatusCanceled:
		return metrics.BuildCanceled
	default:
		return metrics.BuildFailed
	}
}

// Result is what a pipeline run produced.
type Result struct {
	RunID    string
	Status   Status
	Outcomes []render.Outcome
	Rendered int
	Failed   int
	// Written is the number of files the writer produced, when output was written.
	Written   int
	StartTime time.Time
	Duration  time.Duration
}

// FailedOutcomes returns the failed outcomes in input order.
func (r *Result) FailedOutcomes() []render.Outcome {
	var out []render.Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

func statusFor(failed int) Status {
	if failed > 0 {
		return StatusPartial
	}
	return StatusSuccess
}

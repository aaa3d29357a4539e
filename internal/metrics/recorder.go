package metrics

import "time"

// Stage names used for stage duration observations.
const (
	StageLoad  = "load"
	StageParse = "parse"
	StageBuild = "build"
	StageWrite = "write"
)

// BuildOutcome is the final status of a pipeline run.
type BuildOutcome string

const (
	BuildSuccess  BuildOutcome = "success"
	BuildPartial  BuildOutcome = "partial" // at least one page failed
	BuildFailed   BuildOutcome = "failed"
	BuildCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for runs, stages and pages.
// Implementations must be safe for concurrent use: page observations arrive
// from the render fan-out.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	ObservePageDuration(status string, d time.Duration)
	IncPageOutcome(status string)
	IncBuildOutcome(outcome BuildOutcome)
	SetPagesParsed(n int)
	SetRenderConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) ObservePageDuration(string, time.Duration)  {}
func (NoopRecorder) IncPageOutcome(string)                      {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)               {}
func (NoopRecorder) SetPagesParsed(int)                         {}
func (NoopRecorder) SetRenderConcurrency(int)                   {}

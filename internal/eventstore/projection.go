// Package eventstore persists pipeline lifecycle events and derives run
// history from them.
package eventstore

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"
)

// Run statuses in a RunSummary.
const (
	RunStatusRunning  = "running"
	RunStatusComplete = "complete"
)

// RunSummary is a read model of one pipeline run.
type RunSummary struct {
	RunID       string        `json:"run_id"`
	Status      string        `json:"status"`
	Outcome     string        `json:"outcome,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Pages       int           `json:"pages"`
	Rendered    int           `json:"rendered"`
	Failed      int           `json:"failed"`
	// FailedPages maps a failed page name to its error message.
	FailedPages map[string]string `json:"failed_pages,omitempty"`
}

// RunHistoryProjection rebuilds run summaries from stored events and keeps
// them current as new events are applied.
type RunHistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	runs    map[string]*RunSummary
	history []*RunSummary // completed runs, newest first
	maxSize int
}

// NewRunHistoryProjection creates a projection backed by store that keeps at
// most maxHistorySize completed runs.
func NewRunHistoryProjection(store Store, maxHistorySize int) *RunHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 50
	}
	return &RunHistoryProjection{
		store:   store,
		runs:    make(map[string]*RunSummary),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from every stored event.
func (p *RunHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Unix(0, 0), time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.runs = make(map[string]*RunSummary)
	p.history = nil
	for _, event := range events {
		p.applyLocked(event)
	}
	slices.SortStableFunc(p.history, func(a, b *RunSummary) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	return nil
}

// Apply processes a single event.
func (p *RunHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(event)
}

func (p *RunHistoryProjection) applyLocked(event Event) {
	runID := event.RunID
	if runID == "" {
		return
	}
	summary, ok := p.runs[runID]
	if !ok {
		summary = &RunSummary{RunID: runID, Status: RunStatusRunning, StartedAt: event.Timestamp}
		p.runs[runID] = summary
	}

	switch event.Type {
	case TypeParsingStarted:
		summary.StartedAt = event.Timestamp
		var payload RunPayload
		if json.Unmarshal(event.Payload, &payload) == nil {
			summary.Pages = payload.Pages
		}

	case TypePageRendered:
		summary.Rendered++

	case TypePageFailed:
		summary.Failed++
		var payload PagePayload
		if json.Unmarshal(event.Payload, &payload) == nil && payload.Page != "" {
			if summary.FailedPages == nil {
				summary.FailedPages = map[string]string{}
			}
			summary.FailedPages[payload.Page] = payload.Error
		}

	case TypeBuilt:
		done := event.Timestamp
		summary.CompletedAt = &done
		summary.Duration = done.Sub(summary.StartedAt)
		summary.Status = RunStatusComplete
		var payload RunPayload
		if json.Unmarshal(event.Payload, &payload) == nil {
			summary.Outcome = payload.Outcome
			summary.Rendered = payload.Rendered
			summary.Failed = payload.Failed
		}
		p.addToHistoryLocked(summary)
	}
}

func (p *RunHistoryProjection) addToHistoryLocked(summary *RunSummary) {
	for _, h := range p.history {
		if h.RunID == summary.RunID {
			return
		}
	}
	p.history = append([]*RunSummary{summary}, p.history...)
	if len(p.history) > p.maxSize {
		for _, dropped := range p.history[p.maxSize:] {
			delete(p.runs, dropped.RunID)
		}
		p.history = p.history[:p.maxSize]
	}
}

// History returns completed runs, newest first.
func (p *RunHistoryProjection) History() []RunSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]RunSummary, 0, len(p.history))
	for _, h := range p.history {
		out = append(out, *h)
	}
	return out
}

// Run returns the summary of one run.
func (p *RunHistoryProjection) Run(runID string) (RunSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	summary, ok := p.runs[runID]
	if !ok {
		return RunSummary{}, false
	}
	return *summary, true
}

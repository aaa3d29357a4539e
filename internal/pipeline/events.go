package pipeline

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/panini/internal/eventstore"
)

// Event is a lifecycle signal published on the Bus.
type Event interface {
	Name() string
	GetRunID() string
}

// Payloader is implemented by events that carry a persisted payload.
type Payloader interface {
	Payload() ([]byte, error)
}

// Event names. They match the names used by the event store.
const (
	EventParsingStarted  = eventstore.TypeParsingStarted
	EventBuildingStarted = eventstore.TypeBuildingStarted
	EventPageRendered    = eventstore.TypePageRendered
	EventPageFailed      = eventstore.TypePageFailed
	EventBuilt           = eventstore.TypeBuilt
)

// PageInfo identifies the page a per-page event refers to.
type PageInfo struct {
	Name        string
	Path        string
	Layout      string
	Fingerprint string
}

// ParsingStarted is published before the first page is parsed.
type ParsingStarted struct {
	RunID string
	Pages int
}

func (ParsingStarted) Name() string       { return EventParsingStarted }
func (e ParsingStarted) GetRunID() string { return e.RunID }
func (e ParsingStarted) Payload() ([]byte, error) {
	return json.Marshal(eventstore.RunPayload{Pages: e.Pages})
}

// BuildingStarted is published once every page has been parsed.
type BuildingStarted struct {
	RunID string
	Pages int
}

func (BuildingStarted) Name() string       { return EventBuildingStarted }
func (e BuildingStarted) GetRunID() string { return e.RunID }
func (e BuildingStarted) Payload() ([]byte, error) {
	return json.Marshal(eventstore.RunPayload{Pages: e.Pages})
}

// PageRendered is published when a page renders.
type PageRendered struct {
	RunID    string
	Page     PageInfo
	Duration time.Duration
}

func (PageRendered) Name() string       { return EventPageRendered }
func (e PageRendered) GetRunID() string { return e.RunID }
func (e PageRendered) Payload() ([]byte, error) {
	return json.Marshal(pagePayload(e.Page, e.Duration))
}

// PageFailed is published when a page fails to parse or render.
type PageFailed struct {
	RunID    string
	Page     PageInfo
	Category string
	Err      error
	Duration time.Duration
}

func (PageFailed) Name() string       { return EventPageFailed }
func (e PageFailed) GetRunID() string { return e.RunID }
func (e PageFailed) Payload() ([]byte, error) {
	p := pagePayload(e.Page, e.Duration)
	p.Category = e.Category
	if e.Err != nil {
		p.Error = e.Err.Error()
	}
	return json.Marshal(p)
}

// Built is published after every page has settled.
type Built struct {
	RunID    string
	Pages    int
	Rendered int
	Failed   int
	Outcome  string
	Duration time.Duration
}

func (Built) Name() string       { return EventBuilt }
func (e Built) GetRunID() string { return e.RunID }
func (e Built) Payload() ([]byte, error) {
	return json.Marshal(eventstore.RunPayload{
		Pages:      e.Pages,
		Rendered:   e.Rendered,
		Failed:     e.Failed,
		Outcome:    e.Outcome,
		DurationMS: e.Duration.Milliseconds(),
	})
}

func pagePayload(p PageInfo, d time.Duration) eventstore.PagePayload {
	return eventstore.PagePayload{
		Page:        p.Name,
		Path:        p.Path,
		Layout:      p.Layout,
		Fingerprint: p.Fingerprint,
		DurationMS:  d.Milliseconds(),
	}
}

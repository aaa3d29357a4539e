package eventstore

// Lifecycle event types, as published on the pipeline bus.
const (
	TypeParsingStarted  = "parsing-started"
	TypeBuildingStarted = "building-started"
	TypePageRendered    = "page-rendered"
	TypePageFailed      = "error"
	TypeBuilt           = "built"
)

// RunPayload is the JSON payload of run level events.
type RunPayload struct {
	Pages      int    `json:"pages"`
	Rendered   int    `json:"rendered,omitempty"`
	Failed     int    `json:"failed,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Outcome    string `json:"outcome,omitempty"`
}

// PagePayload is the JSON payload of per-page events.
type PagePayload struct {
	Page        string `json:"page"`
	Path        string `json:"path"`
	Layout      string `json:"layout"`
	Fingerprint string `json:"fingerprint,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
	Category    string `json:"category,omitempty"`
	Error       string `json:"error,omitempty"`
}

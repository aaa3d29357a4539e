package eventstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func appendJSON(t *testing.T, store Store, runID, typ string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := store.Append(context.Background(), runID, typ, data, nil); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestRunHistoryProjection_Rebuild(t *testing.T) {
	store := newMemoryStore(t)

	appendJSON(t, store, "run-1", TypeParsingStarted, RunPayload{Pages: 2})
	appendJSON(t, store, "run-1", TypeBuildingStarted, RunPayload{Pages: 2})
	appendJSON(t, store, "run-1", TypePageRendered, PagePayload{Page: "index"})
	appendJSON(t, store, "run-1", TypePageFailed, PagePayload{Page: "about", Error: "layout missing"})
	appendJSON(t, store, "run-1", TypeBuilt, RunPayload{Pages: 2, Rendered: 1, Failed: 1, Outcome: "partial"})
	appendJSON(t, store, "run-2", TypeParsingStarted, RunPayload{Pages: 5})

	projection := NewRunHistoryProjection(store, 10)
	if err := projection.Rebuild(t.Context()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	history := projection.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 completed run, got %d", len(history))
	}
	run := history[0]
	if run.RunID != "run-1" || run.Status != RunStatusComplete || run.Outcome != "partial" {
		t.Errorf("unexpected summary: %+v", run)
	}
	if run.Pages != 2 || run.Rendered != 1 || run.Failed != 1 {
		t.Errorf("unexpected counts: %+v", run)
	}
	if run.FailedPages["about"] != "layout missing" {
		t.Errorf("expected failed page recorded, got %v", run.FailedPages)
	}

	running, ok := projection.Run("run-2")
	if !ok {
		t.Fatal("expected run-2 to be tracked")
	}
	if running.Status != RunStatusRunning || running.Pages != 5 {
		t.Errorf("unexpected running summary: %+v", running)
	}
}

func TestRunHistoryProjection_BoundedHistory(t *testing.T) {
	store := newMemoryStore(t)
	projection := NewRunHistoryProjection(store, 2)

	for _, id := range []string{"a", "b", "c"} {
		projection.Apply(Event{RunID: id, Type: TypeParsingStarted, Timestamp: time.Now(), Payload: []byte(`{}`)})
		projection.Apply(Event{RunID: id, Type: TypeBuilt, Timestamp: time.Now(), Payload: []byte(`{"outcome":"success"}`)})
	}

	history := projection.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(history))
	}
	if history[0].RunID != "c" || history[1].RunID != "b" {
		t.Errorf("expected newest first, got %s, %s", history[0].RunID, history[1].RunID)
	}
	if _, ok := projection.Run("a"); ok {
		t.Error("expected evicted run to be dropped")
	}
}

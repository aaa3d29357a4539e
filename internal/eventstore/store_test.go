package eventstore

import (
	"bytes"
	"testing"
	"time"
)

const testRunID = "run-1"

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_AppendAndGetByRunID(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()
	payload := []byte(`{"page":"index"}`)

	if err := store.Append(ctx, testRunID, TypePageRendered, payload, map[string]string{"key": "value"}); err != nil {
		t.Fatalf("failed to append event: %v", err)
	}

	events, err := store.GetByRunID(ctx, testRunID)
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.RunID != testRunID {
		t.Errorf("expected run_id %s, got %s", testRunID, event.RunID)
	}
	if event.Type != TypePageRendered {
		t.Errorf("expected type %s, got %s", TypePageRendered, event.Type)
	}
	if !bytes.Equal(event.Payload, payload) {
		t.Errorf("expected payload %s, got %s", payload, event.Payload)
	}
	if event.Metadata["key"] != "value" {
		t.Errorf("expected metadata key=value, got %v", event.Metadata)
	}
}

func TestSQLiteStore_NilPayload(t *testing.T) {
	store := newMemoryStore(t)
	if err := store.Append(t.Context(), testRunID, TypeBuilt, nil, nil); err != nil {
		t.Fatalf("nil payload should be stored as empty: %v", err)
	}
}

func TestSQLiteStore_GetRange(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()
	now := time.Now()

	for range 3 {
		if err := store.Append(ctx, testRunID, TypePageRendered, []byte("{}"), nil); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
	}

	events, err := store.GetRange(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("failed to get range: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events, got %d", len(events))
	}

	events, err = store.GetRange(ctx, now.Add(time.Hour), now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("failed to get range: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events in a future window, got %d", len(events))
	}
}

func TestSQLiteStore_SeparatesRuns(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()

	_ = store.Append(ctx, "run-a", TypeParsingStarted, []byte("{}"), nil)
	_ = store.Append(ctx, "run-b", TypeParsingStarted, []byte("{}"), nil)
	_ = store.Append(ctx, "run-a", TypeBuilt, []byte("{}"), nil)

	events, err := store.GetByRunID(ctx, "run-a")
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events for run-a, got %d", len(events))
	}
	if events[0].Type != TypeParsingStarted || events[1].Type != TypeBuilt {
		t.Errorf("events out of insertion order: %s, %s", events[0].Type, events[1].Type)
	}
}

package eventstore

import "time"

// Event is one persisted lifecycle event. ID is assigned by the store and
// orders events of the same run.
type Event struct {
	ID        int64
	RunID     string
	Type      string
	Timestamp time.Time
	Payload   []byte
	Metadata  map[string]string
}

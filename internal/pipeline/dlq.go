package pipeline

import (
	"sync"
	"time"
)

// FailedEvent is an event whose handler gave up, with the final error.
type FailedEvent struct {
	Event     Event
	Error     error
	Timestamp time.Time
}

// DeadLetterQueue holds events that failed after retries so they can be
// inspected or replayed later.
type DeadLetterQueue struct {
	mu     sync.Mutex
	failed []FailedEvent
}

func NewDeadLetterQueue() *DeadLetterQueue { return &DeadLetterQueue{} }

func (q *DeadLetterQueue) Enqueue(fe FailedEvent) {
	q.mu.Lock()
	q.failed = append(q.failed, fe)
	q.mu.Unlock()
}

// Drain returns the parked events and empties the queue.
func (q *DeadLetterQueue) Drain() []FailedEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.failed
	q.failed = nil
	return out
}

func (q *DeadLetterQueue) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.failed)
}

// Replay hands every parked event to h, re-parking those that fail again.
func (q *DeadLetterQueue) Replay(h Handler) int {
	replayed := 0
	for _, fe := range q.Drain() {
		if err := h(fe.Event); err != nil {
			q.Enqueue(FailedEvent{Event: fe.Event, Error: err, Timestamp: time.Now()})
			continue
		}
		replayed++
	}
	return replayed
}

package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/panini/internal/logfields"
)

// RetryPolicy defines how a failing handler is retried.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	// IsRetryable decides whether err is worth another attempt. Nil retries
	// every error.
	IsRetryable func(error) bool
}

// DefaultRetryPolicy allows 3 attempts with exponential backoff from 200ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: 200 * time.Millisecond}
}

func (p RetryPolicy) retryable(err error) bool {
	return p.IsRetryable == nil || p.IsRetryable(err)
}

// WithRetry wraps h so that failures are retried per policy. An event that
// still fails is parked in dlq (when non-nil) and the last error returned.
func WithRetry(h Handler, policy RetryPolicy, dlq *DeadLetterQueue) Handler {
	attempts := max(policy.MaxAttempts, 1)
	return func(e Event) error {
		var lastErr error
		tried := 0
		for tried < attempts {
			tried++
			if lastErr = h(e); lastErr == nil {
				return nil
			}
			if !policy.retryable(lastErr) {
				break
			}
			if tried < attempts {
				backoff := policy.Backoff * time.Duration(1<<uint(tried-1))
				slog.Debug("Retrying event handler",
					slog.String("event", e.Name()),
					slog.Int("attempt", tried),
					slog.Duration("backoff", backoff),
					logfields.Error(lastErr))
				time.Sleep(backoff)
			}
		}
		slog.Warn("Event handler failed",
			slog.String("event", e.Name()),
			logfields.RunID(e.GetRunID()),
			slog.Int("attempts", tried),
			logfields.Error(lastErr))
		if dlq != nil {
			dlq.Enqueue(FailedEvent{Event: e, Error: lastErr, Timestamp: time.Now()})
		}
		return fmt.Errorf("handler failed after %d attempts: %w", tried, lastErr)
	}
}

// Package notify forwards pipeline lifecycle events to NATS.
package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/panini/internal/config"
	"git.home.luguber.info/inful/panini/internal/logfields"
	"git.home.luguber.info/inful/panini/internal/pipeline"
)

// Message is the JSON document published for every lifecycle event.
type Message struct {
	RunID     string          `json:"run_id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATSPublisher publishes bus events to <subject>.<event name>.
type NATSPublisher struct {
	conn    conn
	subject string
	dlq     *pipeline.DeadLetterQueue
	policy  pipeline.RetryPolicy
}

// NewNATSPublisher connects to the server configured in cfg.Events.
func NewNATSPublisher(cfg *config.Config) (*NATSPublisher, error) {
	if cfg.Events.NATSURL == "" {
		return nil, errors.New("nats url is not configured")
	}
	nc, err := nats.Connect(cfg.Events.NATSURL,
		nats.Name("panini"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS publisher connected",
		slog.String("url", cfg.Events.NATSURL),
		slog.String("subject", cfg.Events.NATSSubject))
	return newPublisher(nc, cfg.Events.NATSSubject), nil
}

func newPublisher(c conn, subject string) *NATSPublisher {
	if subject == "" {
		subject = config.DefaultNATSSubject
	}
	policy := pipeline.DefaultRetryPolicy()
	policy.IsRetryable = retryable
	return &NATSPublisher{
		conn:    c,
		subject: subject,
		dlq:     pipeline.NewDeadLetterQueue(),
		policy:  policy,
	}
}

// retryable rejects errors that a second attempt cannot fix.
func retryable(err error) bool {
	return !errors.Is(err, nats.ErrMaxPayload) && !errors.Is(err, nats.ErrBadSubject)
}

// Attach subscribes the publisher to every event on bus. Delivery failures
// are retried and then parked; they never fail the publishing run.
func (p *NATSPublisher) Attach(bus *pipeline.Bus) {
	send := pipeline.WithRetry(p.publish, p.policy, p.dlq)
	bus.SubscribeAll(func(e pipeline.Event) error {
		if err := send(e); err != nil {
			return nil
		}
		// The connection works again; flush what was parked earlier.
		if p.dlq.Count() > 0 {
			if n := p.Redeliver(); n > 0 {
				slog.Info("Redelivered parked lifecycle events", logfields.Count(n))
			}
		}
		return nil
	})
}

// Undelivered reports how many events are parked after failed delivery.
func (p *NATSPublisher) Undelivered() int { return p.dlq.Count() }

// Redeliver retries parked events once and returns how many went through.
func (p *NATSPublisher) Redeliver() int { return p.dlq.Replay(p.publish) }

func (p *NATSPublisher) publish(e pipeline.Event) error {
	msg := Message{RunID: e.GetRunID(), Type: e.Name(), Timestamp: time.Now().UTC()}
	if pl, ok := e.(pipeline.Payloader); ok {
		data, err := pl.Payload()
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		msg.Payload = data
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := p.conn.Publish(p.subject+"."+e.Name(), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	slog.Debug("Published lifecycle event", slog.String("event", e.Name()), logfields.RunID(e.GetRunID()))
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

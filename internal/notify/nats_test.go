package notify

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/panini/internal/config"
	"git.home.luguber.info/inful/panini/internal/pipeline"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	mu     sync.Mutex
	msgs   []published
	fail   int
	err    error
	closed bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail > 0 {
		f.fail--
		return f.err
	}
	f.msgs = append(f.msgs, published{subject, data})
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func fastPublisher(c conn, subject string) *NATSPublisher {
	p := newPublisher(c, subject)
	p.policy.Backoff = time.Millisecond
	return p
}

func TestNATSPublisher_PublishesEveryEvent(t *testing.T) {
	fc := &fakeConn{}
	p := fastPublisher(fc, "")
	bus := pipeline.NewBus()
	p.Attach(bus)

	require.NoError(t, bus.Publish(pipeline.ParsingStarted{RunID: "r1", Pages: 3}))
	require.NoError(t, bus.Publish(pipeline.Built{RunID: "r1", Pages: 3, Rendered: 3, Outcome: "success"}))

	require.Len(t, fc.msgs, 2)
	assert.Equal(t, config.DefaultNATSSubject+".parsing-started", fc.msgs[0].subject)
	assert.Equal(t, config.DefaultNATSSubject+".built", fc.msgs[1].subject)

	var msg Message
	require.NoError(t, json.Unmarshal(fc.msgs[1].data, &msg))
	assert.Equal(t, "r1", msg.RunID)
	assert.Equal(t, pipeline.EventBuilt, msg.Type)
	assert.JSONEq(t, `{"pages":3,"rendered":3,"outcome":"success"}`, string(msg.Payload))
}

func TestNATSPublisher_RetriesTransientFailures(t *testing.T) {
	fc := &fakeConn{fail: 1, err: nats.ErrConnectionClosed}
	p := fastPublisher(fc, "site")
	bus := pipeline.NewBus()
	p.Attach(bus)

	require.NoError(t, bus.Publish(pipeline.Built{RunID: "r1"}))

	require.Len(t, fc.msgs, 1)
	assert.Equal(t, "site.built", fc.msgs[0].subject)
	assert.Zero(t, p.Undelivered())
}

func TestNATSPublisher_ParksAndRedelivers(t *testing.T) {
	fc := &fakeConn{fail: 1, err: nats.ErrMaxPayload}
	p := fastPublisher(fc, "site")
	bus := pipeline.NewBus()
	p.Attach(bus)

	require.NoError(t, bus.Publish(pipeline.Built{RunID: "r1"}), "delivery failures never fail the run")
	assert.Empty(t, fc.msgs)
	assert.Equal(t, 1, p.Undelivered())

	assert.Equal(t, 1, p.Redeliver())
	assert.Len(t, fc.msgs, 1)
	assert.Zero(t, p.Undelivered())
}

func TestNATSPublisher_RedeliversAfterNextSuccess(t *testing.T) {
	fc := &fakeConn{fail: 1, err: nats.ErrMaxPayload}
	p := fastPublisher(fc, "site")
	bus := pipeline.NewBus()
	p.Attach(bus)

	require.NoError(t, bus.Publish(pipeline.ParsingStarted{RunID: "r1"}))
	require.Equal(t, 1, p.Undelivered())

	require.NoError(t, bus.Publish(pipeline.Built{RunID: "r1"}))

	require.Len(t, fc.msgs, 2)
	assert.Equal(t, "site.built", fc.msgs[0].subject)
	assert.Equal(t, "site.parsing-started", fc.msgs[1].subject)
	assert.Zero(t, p.Undelivered())
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(errors.New("io timeout")))
	assert.False(t, retryable(nats.ErrBadSubject))
}

func TestNewNATSPublisher_RequiresURL(t *testing.T) {
	_, err := NewNATSPublisher(&config.Config{})
	require.Error(t, err)
}

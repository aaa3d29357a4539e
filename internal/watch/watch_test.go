package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuilder_CoalescesRequests(t *testing.T) {
	var runs atomic.Int32
	release := make(chan struct{})
	r := NewRebuilder(func(context.Context) error {
		runs.Add(1)
		<-release
		return errors.New("ignored")
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Request("first")
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	// While the first build blocks, several requests fold into one.
	r.Request("a")
	r.Request("b")
	r.Request("c")
	close(release)

	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())
}

func TestWatcher_DebouncedNotification(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "dist")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pages"), 0o755))
	require.NoError(t, os.MkdirAll(out, 0o755))

	reasons := make(chan string, 10)
	w, err := NewWatcher(root, []string{out}, 50*time.Millisecond, func(reason string) { reasons <- reason }, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	for i := range 3 {
		require.NoError(t, os.WriteFile(filepath.Join(root, "pages", "index.html"), []byte{byte('a' + i)}, 0o644))
	}

	select {
	case reason := <-reasons:
		assert.Equal(t, "changed: pages/index.html", reason)
	case <-time.After(2 * time.Second):
		t.Fatal("no rebuild requested")
	}

	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte("x"), 0o644))
	select {
	case reason := <-reasons:
		t.Fatalf("unexpected rebuild for ignored path: %s", reason)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestScheduler_RequestsRebuilds(t *testing.T) {
	var calls atomic.Int32
	s, err := NewScheduler(20*time.Millisecond, func(string) { calls.Add(1) })
	require.NoError(t, err)
	s.Start()
	t.Cleanup(func() { _ = s.Stop() })

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_RejectsZeroInterval(t *testing.T) {
	_, err := NewScheduler(0, func(string) {})
	require.Error(t, err)
}

package workflow

import (
	"testing"
	"time"

	"credflow/internal/eventloop"

	"github.com/stretchr/testify/require"
)

// signalingDispatcher posts to a real loop and reports every post
type signalingDispatcher struct {
	loop   *eventloop.Loop
	posted chan struct{}
}

func newSignalingDispatcher(t *testing.T) *signalingDispatcher {
	loop := eventloop.New(16)
	loop.Start()
	t.Cleanup(loop.Stop)

	return &signalingDispatcher{
		loop:   loop,
		posted: make(chan struct{}, 16),
	}
}

func (d *signalingDispatcher) Post(fn func()) bool {
	ok := d.loop.Post(fn)
	d.posted <- struct{}{}
	return ok
}

// do runs fn on the loop and waits for it
func (d *signalingDispatcher) do(t *testing.T, fn func()) {
	t.Helper()
	require.NoError(t, d.loop.Do(fn))
}

// settle waits until a continuation was posted and has run
func (d *signalingDispatcher) settle(t *testing.T) {
	t.Helper()
	select {
	case <-d.posted:
	case <-time.After(2 * time.Second):
		t.Fatal("no continuation posted")
	}
	d.do(t, func() {})
}

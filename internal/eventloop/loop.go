// Package eventloop runs session work on a single goroutine in arrival order.
package eventloop

import (
	"errors"
	"sync"
)

// ErrStopped is returned when work is handed to a stopped loop
var ErrStopped = errors.New("event loop stopped")

// Loop executes posted funcs one at a time on its own goroutine
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
	start  sync.Once
}

// New creates a loop with a task queue of the given size
func New(buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		tasks:  make(chan func(), buffer),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// Start launches the loop goroutine. Calling it more than once is a no-op.
func (l *Loop) Start() {
	l.start.Do(func() {
		go l.run()
	})
}

func (l *Loop) run() {
	defer close(l.exited)
	for {
		select {
		case <-l.done:
			return
		case fn := <-l.tasks:
			select {
			case <-l.done:
				return
			default:
			}
			fn()
		}
	}
}

// Post queues fn and returns immediately.
// It returns false when the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case <-l.done:
		return false
	case l.tasks <- fn:
		return true
	}
}

// Do queues fn and waits until it has run
func (l *Loop) Do(fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.exited:
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Stop ends the loop. Queued funcs that have not started are dropped.
// A loop stopped before Start never runs.
func (l *Loop) Stop() {
	l.once.Do(func() {
		close(l.done)
		l.start.Do(func() {
			close(l.exited)
		})
	})
}

// Done is closed once the loop is stopped
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

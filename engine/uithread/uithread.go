// Package uithread runs functions on the single thread that owns the host's
// widgets and window, and lets other goroutines block on the result with a bound.
package uithread

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Call after Close.
var ErrClosed = errors.New("uithread: dispatcher closed")

const (
	callPending int32 = iota
	callRunning
	callCancelled
)

type call struct {
	fn    func()
	state atomic.Int32
	done  chan struct{}
}

// Dispatcher queues calls for the UI thread. Any goroutine may Call; only the
// UI thread may Drain.
type Dispatcher struct {
	mu     sync.Mutex
	queue  []*call
	wake   chan struct{}
	closed bool
}

// NewDispatcher creates an empty Dispatcher.
//
// Returns:
//   - *Dispatcher: the dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{wake: make(chan struct{}, 1)}
}

// Call queues fn for the UI thread and waits until it has run or ctx is done.
// Once Call has returned a ctx error, fn will never run. If fn had already
// started when ctx ended, Call waits for it to finish and returns nil.
//
// Parameters:
//   - ctx: bounds the wait
//   - fn: the function to run on the UI thread
//
// Returns:
//   - error: ctx.Err() if fn was abandoned before starting, ErrClosed after Close
func (d *Dispatcher) Call(ctx context.Context, fn func()) error {
	c := &call{fn: fn, done: make(chan struct{})}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.queue = append(d.queue, c)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		if c.state.CompareAndSwap(callPending, callCancelled) {
			return ctx.Err()
		}
		<-c.done
		return nil
	}
}

// Drain runs every queued call on the calling goroutine and reports how many ran.
// Cancelled calls are skipped.
//
// Returns:
//   - int: the number of calls executed
func (d *Dispatcher) Drain() int {
	d.mu.Lock()
	pending := d.queue
	d.queue = nil
	d.mu.Unlock()

	ran := 0
	for _, c := range pending {
		if !c.state.CompareAndSwap(callPending, callRunning) {
			continue
		}
		func() {
			defer close(c.done)
			c.fn()
		}()
		ran++
	}
	return ran
}

// Wake returns a channel that receives after new calls are queued.
// A UI loop that blocks on events can select on it to drain promptly.
func (d *Dispatcher) Wake() <-chan struct{} {
	return d.wake
}

// Run drains on the calling goroutine until ctx is done. It is meant for hosts
// and tests without an event loop of their own.
//
// Parameters:
//   - ctx: stops the loop
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		d.Drain()
		select {
		case <-ctx.Done():
			d.Drain()
			return
		case <-d.wake:
		}
	}
}

// Close rejects further calls. Calls already queued still run on the next Drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

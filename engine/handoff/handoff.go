// Package handoff provides a oneshot rendezvous used to transfer a single value,
// typically a presentation surface, from a setup goroutine to the goroutine that
// will own it for the rest of the program.
package handoff

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrNotAvailable is returned when no value was published before the wait ended,
	// or when the published value has already been taken.
	ErrNotAvailable = errors.New("handoff: value not available")

	// ErrAlreadyPublished is returned by Publish after the first successful call.
	ErrAlreadyPublished = errors.New("handoff: value already published")
)

// Handoff is a oneshot slot. Exactly one value may be published and exactly one
// caller will receive it. The zero value is not usable; use New.
type Handoff[T any] struct {
	mu        sync.Mutex
	ready     chan struct{}
	value     T
	published bool
	taken     bool
}

// New creates an empty Handoff.
//
// Returns:
//   - *Handoff[T]: the empty slot
func New[T any]() *Handoff[T] {
	return &Handoff[T]{ready: make(chan struct{})}
}

// Publish stores v and wakes any waiter. Publish never blocks.
//
// Parameters:
//   - v: the value to hand off
//
// Returns:
//   - error: ErrAlreadyPublished if a value was published before
func (h *Handoff[T]) Publish(v T) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.published {
		return ErrAlreadyPublished
	}
	h.value = v
	h.published = true
	close(h.ready)
	return nil
}

// AwaitAndTake blocks until a value is published or timeout elapses.
// A non-positive timeout polls without blocking.
//
// Parameters:
//   - timeout: the maximum time to wait
//
// Returns:
//   - T: the published value, or the zero value on failure
//   - error: ErrNotAvailable on timeout or if the value was already taken
func (h *Handoff[T]) AwaitAndTake(timeout time.Duration) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return h.AwaitAndTakeContext(ctx)
}

// AwaitAndTakeContext blocks until a value is published or ctx is done.
// A value that is already published is returned even if ctx is already done.
//
// Parameters:
//   - ctx: bounds the wait
//
// Returns:
//   - T: the published value, or the zero value on failure
//   - error: ErrNotAvailable wrapping the ctx error, or ErrNotAvailable if already taken
func (h *Handoff[T]) AwaitAndTakeContext(ctx context.Context) (T, error) {
	select {
	case <-h.ready:
	default:
		select {
		case <-h.ready:
		case <-ctx.Done():
			var zero T
			return zero, errors.Join(ErrNotAvailable, ctx.Err())
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	if h.taken {
		return zero, ErrNotAvailable
	}
	h.taken = true
	v := h.value
	h.value = zero
	return v, nil
}

// Published reports whether a value has been published, taken or not.
func (h *Handoff[T]) Published() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.published
}

// Package lifecycle tracks the state of one form's submissions and makes sure
// only the most recent one can change what is shown.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the phase of a form's request lifecycle.
type State string

const (
	Idle       State = "idle"
	Submitting State = "submitting"
	Succeeded  State = "succeeded"
	Failed     State = "failed"
)

// TimeoutError reports a submission that did not finish in time.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %s", e.After)
}

// Ticket identifies one submission.
type Ticket uint64

// Snapshot is a copy of the controller state.
type Snapshot[T any] struct {
	State    State
	Seq      Ticket
	Result   T
	HasValue bool
	Err      error
}

// Message returns the error text of a failed snapshot.
func (s Snapshot[T]) Message() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Controller holds the lifecycle of one form. The last successful result stays
// visible while a new submission is in flight and after a failure.
type Controller[T any] struct {
	mu       sync.Mutex
	state    State
	seq      Ticket
	result   T
	hasValue bool
	err      error
	timeout  time.Duration
	onChange []func(Snapshot[T])
}

// New creates an idle controller. A zero timeout disables the deadline.
func New[T any](timeout time.Duration) *Controller[T] {
	return &Controller[T]{state: Idle, timeout: timeout}
}

// OnChange registers fn to be called after every applied transition.
func (c *Controller[T]) OnChange(fn func(Snapshot[T])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Begin starts a submission. Earlier tickets become stale.
func (c *Controller[T]) Begin() Ticket {
	c.mu.Lock()
	c.seq++
	c.state = Submitting
	t := c.seq
	snap, listeners := c.snapshotLocked(), c.onChange
	c.mu.Unlock()

	notify(listeners, snap)
	return t
}

// Resolve applies the outcome of ticket t. It returns false, changing nothing,
// when t has been superseded by a later Begin.
func (c *Controller[T]) Resolve(t Ticket, result T, err error) bool {
	c.mu.Lock()
	if t != c.seq || c.state != Submitting {
		c.mu.Unlock()
		return false
	}
	if err != nil {
		c.state = Failed
		c.err = err
	} else {
		c.state = Succeeded
		c.result = result
		c.hasValue = true
		c.err = nil
	}
	snap, listeners := c.snapshotLocked(), c.onChange
	c.mu.Unlock()

	notify(listeners, snap)
	return true
}

// Submit runs call as a new submission under the controller timeout and
// resolves it. The returned bool is false when a newer submission started
// while call was running.
func (c *Controller[T]) Submit(ctx context.Context, call func(context.Context) (T, error)) (Snapshot[T], bool) {
	t := c.Begin()
	result, err := c.Call(ctx, call)
	applied := c.Resolve(t, result, err)
	return c.Snapshot(), applied
}

// Call runs call under the controller timeout without touching state. A
// deadline hit is reported as *TimeoutError. Event loops use it between Begin
// and Resolve.
func (c *Controller[T]) Call(ctx context.Context, call func(context.Context) (T, error)) (T, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := call(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = &TimeoutError{After: c.timeout}
	}
	return result, err
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		State:    c.state,
		Seq:      c.seq,
		Result:   c.result,
		HasValue: c.hasValue,
		Err:      c.err,
	}
}

func notify[T any](listeners []func(Snapshot[T]), s Snapshot[T]) {
	for _, fn := range listeners {
		fn(s)
	}
}

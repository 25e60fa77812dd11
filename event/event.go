// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/ksuid"
)

func init() {
	ksuid.SetRand(ksuid.FastRander)
}

var (
	// ErrTerminal is returned when attempting to transition an event that
	// has already reached COMPLETE or ERROR.
	ErrTerminal = errors.New("the event has already reached a terminal state")

	// ErrInvalidTransition is returned for a backward or repeated state
	// transition.  Event states only move forward.
	ErrInvalidTransition = errors.New("events cannot transition backward")
)

// Event is the completion event of exactly one queue command.  All methods
// are safe for concurrent use.
//
// The zero value is not usable.  Use New or Queue submission APIs.
type Event struct {
	id    ksuid.KSUID
	state int32
	done  chan struct{}

	lock sync.Mutex
	err  error
}

// New constructs an event in the QUEUED state.  Queues create events on
// behalf of submitted commands; callers only need New when implementing
// their own Command types.
func New() *Event {
	return &Event{
		id:   ksuid.New(),
		done: make(chan struct{}),
	}
}

// ID returns this event's unique identity.
func (e *Event) ID() ksuid.KSUID {
	return e.id
}

// Status returns the current state.  Once a terminal state is observed,
// every subsequent call observes the same state.
func (e *Event) Status() State {
	return State(atomic.LoadInt32(&e.state))
}

// Done returns a channel that is closed exactly once, when this event
// reaches a terminal state.  It has the same use cases as context.Done.
func (e *Event) Done() <-chan struct{} {
	return e.done
}

// Err returns the terminal error.  It is nil unless the event reached
// StateError.
func (e *Event) Err() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.err
}

// Wait blocks until this event reaches a terminal state or the context is
// canceled.  It returns the event's terminal error, which is nil for a
// COMPLETE event.
func (e *Event) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return e.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Transition advances this event to a later, nonterminal state.  Use
// Terminate for COMPLETE and ERROR.
func (e *Event) Transition(to State) error {
	if to.Terminal() {
		return ErrInvalidTransition
	}

	for {
		current := State(atomic.LoadInt32(&e.state))
		if current.Terminal() {
			return ErrTerminal
		}

		if to <= current {
			return ErrInvalidTransition
		}

		if atomic.CompareAndSwapInt32(&e.state, int32(current), int32(to)) {
			return nil
		}
	}
}

// Terminate freezes this event: COMPLETE when err is nil, ERROR otherwise.
// Exactly one Terminate call succeeds for any event.
func (e *Event) Terminate(err error) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	if State(atomic.LoadInt32(&e.state)).Terminal() {
		return ErrTerminal
	}

	to := StateComplete
	if err != nil {
		e.err = err
		to = StateError
	}

	atomic.StoreInt32(&e.state, int32(to))
	close(e.done)
	return nil
}

// WaitAll blocks until every supplied event is terminal or the context is
// canceled.  The first terminal error encountered, if any, is returned.
// Nil events are skipped.
func WaitAll(ctx context.Context, events ...*Event) error {
	for _, e := range events {
		if e == nil {
			continue
		}

		if err := e.Wait(ctx); err != nil {
			return err
		}
	}

	return nil
}

// WaitTimeout waits up to timeout for every supplied event to reach a
// terminal state, without regard to which terminal state.  It returns
// false if the timeout elapsed first.
func WaitTimeout(timeout time.Duration, events ...*Event) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for _, e := range events {
		if e == nil {
			continue
		}

		select {
		case <-e.done:
		case <-timer.C:
			return false
		}
	}

	return true
}

// UserEvent is an event whose terminal state is driven by application code
// rather than by a queue.  User events begin in the SUBMITTED state and
// are typically used as artificial predecessors in command wait lists.
type UserEvent struct {
	*Event
}

// NewUserEvent constructs a user event in the SUBMITTED state.
func NewUserEvent() *UserEvent {
	e := New()

	// a fresh event cannot be terminal, so this cannot fail
	e.Transition(StateSubmitted)

	return &UserEvent{Event: e}
}

// Complete drives this user event to COMPLETE, releasing anything gated on it.
func (u *UserEvent) Complete() error {
	return u.Terminate(nil)
}

// Fail drives this user event to ERROR.  A nil err is replaced with a
// generic failure so that the terminal state is still ERROR.
func (u *UserEvent) Fail(err error) error {
	if err == nil {
		err = fmt.Errorf("user event %s failed", u.ID())
	}

	return u.Terminate(err)
}

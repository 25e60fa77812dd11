// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrClosed is returned by a closed counting semaphore.
var ErrClosed = errors.New("the semaphore has been closed")

const (
	stateOpen int32 = iota
	stateClosed
)

// Counting is a channel-backed counting semaphore with close-once
// semantics.  When any acquire method succeeds, Release must be called to
// return the resource.  Queues use a Counting to bound submission depth.
type Counting interface {
	// Acquire acquires a resource, blocking until one is available or the
	// semaphore is closed.
	Acquire() error

	// AcquireCtx attempts to acquire a resource before the given context
	// is canceled, returning ctx.Err() on cancellation.
	AcquireCtx(context.Context) error

	// TryAcquire attempts to acquire a resource, returning false
	// immediately if none is available or the semaphore is closed.
	TryAcquire() bool

	// Release relinquishes a resource.  Calling it without a corresponding
	// successful acquire will likely deadlock.
	Release() error

	// Close permanently closes the semaphore, waking every blocked
	// acquirer with ErrClosed.  Close is idempotent in effect: the second
	// and subsequent calls return ErrClosed.
	Close() error

	// Closed returns a channel that is closed when this semaphore has
	// been closed, with the same use cases as context.Done.
	Closed() <-chan struct{}
}

// NewCounting constructs a counting semaphore with the given number of
// resources.  A nonpositive count results in a panic.
func NewCounting(count int) Counting {
	if count < 1 {
		panic("the count must be positive")
	}

	return &counting{
		c:      make(chan struct{}, count),
		closed: make(chan struct{}),
	}
}

type counting struct {
	c      chan struct{}
	state  int32
	closed chan struct{}
}

func (cs *counting) isClosed() bool {
	return atomic.LoadInt32(&cs.state) == stateClosed
}

func (cs *counting) Acquire() error {
	if cs.isClosed() {
		return ErrClosed
	}

	select {
	case cs.c <- struct{}{}:
		if cs.isClosed() {
			return ErrClosed
		}

		return nil

	case <-cs.closed:
		return ErrClosed
	}
}

func (cs *counting) AcquireCtx(ctx context.Context) error {
	if cs.isClosed() {
		return ErrClosed
	}

	select {
	case cs.c <- struct{}{}:
		if cs.isClosed() {
			return ErrClosed
		}

		return nil

	case <-cs.closed:
		return ErrClosed

	case <-ctx.Done():
		return ctx.Err()
	}
}

func (cs *counting) TryAcquire() bool {
	if cs.isClosed() {
		return false
	}

	select {
	case cs.c <- struct{}{}:
		return true
	default:
		return false
	}
}

func (cs *counting) Release() error {
	select {
	case <-cs.c:
		return nil
	case <-cs.closed:
		return ErrClosed
	}
}

func (cs *counting) Close() error {
	if atomic.CompareAndSwapInt32(&cs.state, stateOpen, stateClosed) {
		close(cs.closed)
		return nil
	}

	return ErrClosed
}

func (cs *counting) Closed() <-chan struct{} {
	return cs.closed
}

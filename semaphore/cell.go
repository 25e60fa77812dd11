// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"context"
	"sync"
)

// Payload is the binary semaphore payload value.
type Payload uint32

const (
	// Unsignaled is the initial payload of every fresh semaphore.
	Unsignaled Payload = iota

	// Signaled is the payload between a successful signal and the wait
	// that consumes it.
	Signaled
)

func (p Payload) String() string {
	if p == Signaled {
		return "SIGNALED"
	}

	return "UNSIGNALED"
}

// cell is the shared synchronization state behind one or more semaphore
// objects.  A semaphore imported from an exported descriptor shares the
// exporter's cell, which is what makes a signal through either object
// observable through both.
type cell struct {
	lock    sync.Mutex
	payload Payload
	notify  chan struct{}
}

func newCell() *cell {
	return &cell{
		notify: make(chan struct{}),
	}
}

func (c *cell) load() Payload {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.payload
}

// signal transitions the payload UNSIGNALED to SIGNALED and wakes every
// pending consumer.  The notification channel is re-armed under the same
// lock so that consumers racing with the next signal cannot miss it.
func (c *cell) signal() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.payload == Signaled {
		return ErrAlreadySignaled
	}

	c.payload = Signaled
	close(c.notify)
	c.notify = make(chan struct{})
	return nil
}

// consume blocks until the payload is SIGNALED, then atomically resets it
// to UNSIGNALED.  Exactly one concurrent consumer wins each signal; the
// rest go back to waiting for the next one.
func (c *cell) consume(ctx context.Context) error {
	for {
		c.lock.Lock()
		if c.payload == Signaled {
			c.payload = Unsignaled
			c.lock.Unlock()
			return nil
		}

		ready := c.notify
		c.lock.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

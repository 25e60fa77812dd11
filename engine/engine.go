// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/xmidt-org/cqsync/event"
	"github.com/xmidt-org/cqsync/logging"
	"github.com/xmidt-org/cqsync/queue"
	"github.com/xmidt-org/cqsync/semaphore"
)

// Interface represents the semaphore signal and wait engines.  Both
// methods validate synchronously, before any enqueue or payload change,
// and are all-or-nothing over the listed semaphores: one invalid member
// fails the whole call with no state modified anywhere.
type Interface interface {
	// Signal enqueues a command on q that, once every event in waitList is
	// COMPLETE, sets every listed semaphore's payload to SIGNALED and
	// completes the returned event.  An empty waitList means the command
	// carries no dependency at all: it may complete before, concurrently
	// with, or after unrelated in-flight work on the same queue.
	//
	// A semaphore already SIGNALED when the command runs drives the
	// returned event to ERROR without corrupting any payload.
	Signal(q *queue.Queue, semaphores []*semaphore.Semaphore, waitList ...*event.Event) (*event.Event, error)

	// Wait enqueues a command on q that, once every event in waitList is
	// COMPLETE, blocks until every listed semaphore is SIGNALED, consuming
	// each back to UNSIGNALED, and only then completes the returned event.
	// Only this command's forward progress, and anything gated on its
	// event, is suspended.
	//
	// Listing the same semaphore twice waits for two distinct signals of
	// it, consistent with the conjunction semantics of the list.
	Wait(q *queue.Queue, semaphores []*semaphore.Semaphore, waitList ...*event.Event) (*event.Event, error)
}

// Option is a configuration option for an engine.
type Option func(*engine)

// WithLogger sets the engine's logger.  A nil logger restores the default
// NOP logger.
func WithLogger(l log.Logger) Option {
	return func(e *engine) {
		if l != nil {
			e.logger = l
		} else {
			e.logger = logging.DefaultLogger()
		}
	}
}

// New constructs a signal/wait engine.
func New(options ...Option) Interface {
	e := &engine{
		logger: logging.DefaultLogger(),
	}

	for _, o := range options {
		o(e)
	}

	return e
}

type engine struct {
	logger log.Logger
}

func (e *engine) Signal(q *queue.Queue, semaphores []*semaphore.Semaphore, waitList ...*event.Event) (*event.Event, error) {
	ev, err := e.enqueue(q, semaphores, waitList, signalAll)
	if err != nil {
		return nil, err
	}

	level.Debug(e.logger).Log(logging.MessageKey(), "signal enqueued", "event", ev.ID().String(), "semaphores", len(semaphores))
	return ev, nil
}

func (e *engine) Wait(q *queue.Queue, semaphores []*semaphore.Semaphore, waitList ...*event.Event) (*event.Event, error) {
	ev, err := e.enqueue(q, semaphores, waitList, consumeAll)
	if err != nil {
		return nil, err
	}

	level.Debug(e.logger).Log(logging.MessageKey(), "wait enqueued", "event", ev.ID().String(), "semaphores", len(semaphores))
	return ev, nil
}

// enqueue performs the shared validation and submission path.  Command
// references are taken on every semaphore before submission and dropped
// when the command's event goes terminal, so a Release to zero during the
// command's lifetime defers destruction instead of invalidating it.
func (e *engine) enqueue(q *queue.Queue, semaphores []*semaphore.Semaphore, waitList []*event.Event, op operation) (*event.Event, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: a queue is required", semaphore.ErrInvalidOperation)
	}

	if err := acquireRefs(q, semaphores); err != nil {
		return nil, err
	}

	sc := &semaphoreCommand{
		event:      event.New(),
		waitList:   waitList,
		semaphores: append([]*semaphore.Semaphore{}, semaphores...),
		op:         op,
	}

	if err := q.Submit(sc); err != nil {
		releaseRefs(sc.semaphores)
		return nil, err
	}

	go func() {
		<-sc.event.Done()
		releaseRefs(sc.semaphores)
	}()

	return sc.event, nil
}

// acquireRefs validates the whole list and takes one command reference per
// semaphore.  On any failure, references already taken are dropped, so no
// observable state changes.
func acquireRefs(q *queue.Queue, semaphores []*semaphore.Semaphore) error {
	if len(semaphores) == 0 {
		return fmt.Errorf("%w: an empty semaphore list", semaphore.ErrInvalidSemaphore)
	}

	for i, s := range semaphores {
		err := validateOne(q, s)
		if err == nil {
			err = s.AddCommandRef()
		}

		if err != nil {
			releaseRefs(semaphores[:i])
			return err
		}
	}

	return nil
}

func validateOne(q *queue.Queue, s *semaphore.Semaphore) error {
	if s == nil {
		return fmt.Errorf("%w: a nil semaphore", semaphore.ErrInvalidSemaphore)
	}

	if s.Context() != q.Context() {
		return fmt.Errorf("%w: semaphore %s belongs to a different context", semaphore.ErrInvalidSemaphore, s.ID())
	}

	return nil
}

func releaseRefs(semaphores []*semaphore.Semaphore) {
	for _, s := range semaphores {
		if s != nil {
			s.DropCommandRef()
		}
	}
}

// operation is the per-command work shared by signal and wait commands.
type operation func(context.Context, []*semaphore.Semaphore) error

func signalAll(_ context.Context, semaphores []*semaphore.Semaphore) error {
	for _, s := range semaphores {
		if err := s.Signal(); err != nil {
			return err
		}
	}

	return nil
}

func consumeAll(ctx context.Context, semaphores []*semaphore.Semaphore) error {
	for _, s := range semaphores {
		if err := s.Consume(ctx); err != nil {
			return err
		}
	}

	return nil
}

type semaphoreCommand struct {
	event      *event.Event
	waitList   []*event.Event
	semaphores []*semaphore.Semaphore
	op         operation
}

func (sc *semaphoreCommand) Event() *event.Event {
	return sc.event
}

func (sc *semaphoreCommand) WaitList() []*event.Event {
	return sc.waitList
}

func (sc *semaphoreCommand) Execute(ctx context.Context) error {
	return sc.op(ctx, sc.semaphores)
}

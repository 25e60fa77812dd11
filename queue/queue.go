package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/xmidt-org/cqsync/clock"
	"github.com/xmidt-org/cqsync/event"
	"github.com/xmidt-org/cqsync/logging"
	"github.com/xmidt-org/cqsync/platform"
	"github.com/xmidt-org/cqsync/semaphore"
)

const (
	// DefaultDepth is the maximum number of in-flight commands a queue
	// accepts when no depth option is supplied.
	DefaultDepth = 128
)

var (
	// ErrClosed is returned by Submit and Flush after Close.
	ErrClosed = errors.New("the queue has been closed")

	// ErrQueueFull is returned by Submit when the queue's submission depth
	// has been exhausted.
	ErrQueueFull = errors.New("the queue's submission depth has been exhausted")

	// ErrNilCommand is returned when submitting a nil command.
	ErrNilCommand = errors.New("a nil command cannot be submitted")
)

// Mode is the ordering class of a queue.
type Mode int

const (
	// InOrder queues execute their own commands strictly in submission
	// order.  They still impose nothing on other queues.
	InOrder Mode = iota

	// OutOfOrder queues execute commands in any order consistent with the
	// commands' explicit wait lists.
	OutOfOrder
)

func (m Mode) String() string {
	if m == OutOfOrder {
		return "out-of-order"
	}

	return "in-order"
}

// Command is a unit of work submitted to a queue.
type Command interface {
	// Event returns the completion event this command produces.  The event
	// must be fresh: queues drive it through its lifecycle.
	Event() *event.Event

	// WaitList returns the predecessor events that must all reach a
	// terminal state before this command becomes eligible to run.  May be
	// empty or contain nils, which are skipped.
	WaitList() []*event.Event

	// Execute performs the command's work once it is eligible.  A non-nil
	// return drives the completion event to ERROR.
	Execute(ctx context.Context) error
}

// Option is a configuration option for a Queue.
type Option func(*Queue)

// WithMode sets the queue's ordering class.  The default is InOrder.
func WithMode(m Mode) Option {
	return func(q *Queue) {
		q.mode = m
	}
}

// WithLogger sets the queue's logger.  A nil logger restores the default
// NOP logger.
func WithLogger(l log.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		} else {
			q.logger = logging.DefaultLogger()
		}
	}
}

// WithClock sets the clock used for dispatch pacing.
func WithClock(c clock.Interface) Option {
	return func(q *Queue) {
		if c != nil {
			q.clock = c
		} else {
			q.clock = clock.System()
		}
	}
}

// WithPeriod rate-limits dispatch: each command's execution is delayed by
// at least d after it becomes eligible.  A nonpositive d disables pacing,
// which is the default.
func WithPeriod(d time.Duration) Option {
	return func(q *Queue) {
		q.period = d
	}
}

// WithDepth bounds the number of in-flight commands.  Submit fails with
// ErrQueueFull once the bound is reached, until earlier commands reach a
// terminal state.
func WithDepth(depth int) Option {
	return func(q *Queue) {
		if depth > 0 {
			q.depth = semaphore.NewCounting(depth)
		}
	}
}

// Queue is an asynchronous command submission channel.  All methods are
// safe for concurrent use.
type Queue struct {
	ctx    *platform.Context
	mode   Mode
	logger log.Logger
	clock  clock.Interface
	period time.Duration
	depth  semaphore.Counting

	lock     sync.Mutex
	closed   bool
	previous *event.Event
	inFlight sync.WaitGroup
}

// New constructs a queue owned by the given context.
func New(ctx *platform.Context, options ...Option) *Queue {
	q := &Queue{
		ctx:    ctx,
		mode:   InOrder,
		logger: logging.DefaultLogger(),
		clock:  clock.System(),
	}

	for _, o := range options {
		o(q)
	}

	if q.depth == nil {
		q.depth = semaphore.NewCounting(DefaultDepth)
	}

	return q
}

// Context returns the context this queue was created against.
func (q *Queue) Context() *platform.Context {
	return q.ctx
}

// Mode returns the queue's ordering class.
func (q *Queue) Mode() Mode {
	return q.mode
}

// Submit accepts a command for asynchronous execution.  Admission is
// synchronous: ErrClosed after Close, ErrQueueFull when the depth bound is
// exhausted, and no state changes in either case.  Once admitted, the
// command's event moves SUBMITTED at dispatch, RUNNING when its effective
// wait list is fully terminal, and COMPLETE or ERROR from Execute.
func (q *Queue) Submit(c Command) error {
	if c == nil {
		return ErrNilCommand
	}

	q.lock.Lock()
	if q.closed {
		q.lock.Unlock()
		return ErrClosed
	}

	if !q.depth.TryAcquire() {
		q.lock.Unlock()
		return ErrQueueFull
	}

	deps := append([]*event.Event{}, c.WaitList()...)
	if q.mode == InOrder {
		if q.previous != nil {
			deps = append(deps, q.previous)
		}

		q.previous = c.Event()
	}

	q.inFlight.Add(1)
	q.lock.Unlock()

	go q.dispatch(c, deps)
	return nil
}

// dispatch drives one command through its event lifecycle on a dedicated
// goroutine.  Commands sharing an out-of-order queue are thus fully
// independently scheduled; the only edges are the deps computed at
// submission.
func (q *Queue) dispatch(c Command, deps []*event.Event) {
	defer q.inFlight.Done()
	defer q.depth.Release()

	e := c.Event()
	e.Transition(event.StateSubmitted)

	for _, dep := range deps {
		if dep == nil {
			continue
		}

		<-dep.Done()
		if err := dep.Err(); err != nil {
			e.Terminate(fmt.Errorf("predecessor event %s failed: %w", dep.ID(), err))
			return
		}
	}

	if q.period > 0 {
		t := q.clock.NewTimer(q.period)
		<-t.C()
		t.Stop()
	}

	e.Transition(event.StateRunning)
	level.Debug(q.logger).Log(logging.MessageKey(), "command running", "event", e.ID().String())

	err := c.Execute(context.Background())
	if err != nil {
		level.Error(q.logger).Log(logging.MessageKey(), "command failed", "event", e.ID().String(), logging.ErrorKey(), err)
	}

	e.Terminate(err)
}

// Flush reports whether the queue can still accept work.  Dispatch in
// this implementation is eager, so there is never batched work to push;
// the method exists for callers written against drivers that batch.
func (q *Queue) Flush() error {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.closed {
		return ErrClosed
	}

	return nil
}

// Finish blocks until every command submitted before the call has reached
// a terminal state.  Finish never forces progress on other queues: a
// command blocked on a semaphore nobody signals blocks Finish forever.
func (q *Queue) Finish() error {
	q.inFlight.Wait()
	return nil
}

// FinishTimeout is Finish bounded by a timeout, returning false if the
// timeout elapsed with commands still in flight.
func (q *Queue) FinishTimeout(timeout time.Duration) bool {
	finished := make(chan struct{})
	go func() {
		defer func() {
			// swallow any panics, as they'll just be from the channel
			// close if the timeout elapsed
			recover()
		}()
		defer close(finished)
		q.inFlight.Wait()
	}()

	t := q.clock.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-finished:
		return true
	case <-t.C():
		return false
	}
}

// Close permanently closes the queue.  Already admitted commands run to
// completion; subsequent Submit and Flush calls return ErrClosed.
func (q *Queue) Close() error {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.closed {
		return ErrClosed
	}

	q.closed = true
	return nil
}

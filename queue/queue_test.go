package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/cqsync/clock/clocktest"
	"github.com/xmidt-org/cqsync/event"
	"github.com/xmidt-org/cqsync/logging"
	"github.com/xmidt-org/cqsync/platform"
)

func testContext() *platform.Context {
	return platform.NewContext(platform.NewDevice())
}

func TestModeString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("in-order", InOrder.String())
	assert.Equal("out-of-order", OutOfOrder.String())
}

func TestNewDefaults(t *testing.T) {
	var (
		assert = assert.New(t)
		ctx    = testContext()
		q      = New(ctx, WithLogger(logging.NewTestLogger(nil, t)))
	)

	assert.Equal(ctx, q.Context())
	assert.Equal(InOrder, q.Mode())
}

func TestSubmitNil(t *testing.T) {
	q := New(testContext())
	assert.Equal(t, ErrNilCommand, q.Submit(nil))
}

func TestInOrderSerializesCommands(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		q       = New(testContext(), WithMode(InOrder))

		lock  sync.Mutex
		order []int
	)

	const taskCount = 10

	events := make([]*event.Event, 0, taskCount)
	for i := 0; i < taskCount; i++ {
		i := i
		e, err := q.SubmitTask(func(context.Context) error {
			lock.Lock()
			defer lock.Unlock()
			order = append(order, i)
			return nil
		})

		require.NoError(err)
		events = append(events, e)
	}

	require.NoError(q.Finish())
	require.True(event.WaitTimeout(time.Second, events...))

	expected := make([]int, 0, taskCount)
	for i := 0; i < taskCount; i++ {
		expected = append(expected, i)
	}

	assert.Equal(expected, order)
	for _, e := range events {
		assert.Equal(event.StateComplete, e.Status())
	}
}

func TestOutOfOrderIgnoresSubmissionOrder(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		q       = New(testContext(), WithMode(OutOfOrder))

		gate = event.NewUserEvent()
	)

	gated, err := q.SubmitTask(nil, gate.Event)
	require.NoError(err)

	free, err := q.SubmitTask(nil)
	require.NoError(err)

	// the free task completes while the earlier submission stays blocked
	require.True(event.WaitTimeout(time.Second, free))
	assert.False(gated.Status().Terminal())

	require.NoError(gate.Complete())
	require.NoError(q.Finish())
	assert.Equal(event.StateComplete, gated.Status())
}

func TestPredecessorErrorPropagates(t *testing.T) {
	var (
		assert   = assert.New(t)
		require  = require.New(t)
		expected = errors.New("expected")
		q        = New(testContext(), WithMode(OutOfOrder))
	)

	failed, err := q.SubmitTask(func(context.Context) error {
		return expected
	})
	require.NoError(err)

	dependent, err := q.SubmitTask(nil, failed)
	require.NoError(err)

	require.NoError(q.Finish())

	assert.Equal(event.StateError, failed.Status())
	assert.Equal(expected, failed.Err())

	assert.Equal(event.StateError, dependent.Status())
	assert.ErrorIs(dependent.Err(), expected)
}

func TestSubmitDepthExhausted(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		q       = New(testContext(), WithMode(OutOfOrder), WithDepth(1))

		unblock = make(chan struct{})
	)

	blocked, err := q.SubmitTask(func(context.Context) error {
		<-unblock
		return nil
	})
	require.NoError(err)

	_, err = q.SubmitTask(nil)
	assert.Equal(ErrQueueFull, err)

	close(unblock)
	require.True(event.WaitTimeout(time.Second, blocked))

	// the depth slot is returned once the command is terminal
	assert.Eventually(
		func() bool {
			e, err := q.SubmitTask(nil)
			if err != nil {
				return false
			}

			return event.WaitTimeout(time.Second, e)
		},
		time.Second,
		10*time.Millisecond,
	)
}

func TestClose(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		q       = New(testContext())
	)

	assert.NoError(q.Flush())
	require.NoError(q.Close())

	assert.Equal(ErrClosed, q.Close())
	assert.Equal(ErrClosed, q.Flush())

	_, err := q.SubmitTask(nil)
	assert.Equal(ErrClosed, err)
}

func TestCloseDoesNotAbandonWork(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		q       = New(testContext())

		unblock = make(chan struct{})
	)

	e, err := q.SubmitTask(func(context.Context) error {
		<-unblock
		return nil
	})
	require.NoError(err)

	require.NoError(q.Close())
	assert.False(e.Status().Terminal())

	close(unblock)
	require.NoError(q.Finish())
	assert.Equal(event.StateComplete, e.Status())
}

func TestFinishTimeout(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		q       = New(testContext())

		unblock = make(chan struct{})
	)

	_, err := q.SubmitTask(func(context.Context) error {
		<-unblock
		return nil
	})
	require.NoError(err)

	assert.False(q.FinishTimeout(50 * time.Millisecond))

	close(unblock)
	assert.True(q.FinishTimeout(time.Second))
}

func TestFinishTimeoutMockedClock(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		mockClock = new(clocktest.Mock)
		mockTimer = new(clocktest.MockTimer)

		q = New(testContext(), WithClock(mockClock))

		unblock = make(chan struct{})
	)

	fired := make(chan time.Time, 1)
	fired <- time.Time{}

	mockClock.OnNewTimer(17*time.Minute, mockTimer).Once()
	mockTimer.OnC((<-chan time.Time)(fired)).Once()
	mockTimer.OnStop(true).Once()

	_, err := q.SubmitTask(func(context.Context) error {
		<-unblock
		return nil
	})
	require.NoError(err)

	// the mocked timer fires immediately, so even a huge timeout returns false
	assert.False(q.FinishTimeout(17 * time.Minute))

	close(unblock)
	require.NoError(q.Finish())

	mockClock.AssertExpectations(t)
	mockTimer.AssertExpectations(t)
}

func TestDispatchPacing(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		mockClock = new(clocktest.Mock)
		mockTimer = new(clocktest.MockTimer)
	)

	fired := make(chan time.Time, 1)
	fired <- time.Time{}

	mockClock.OnNewTimer(time.Minute, mockTimer).Once()
	mockTimer.OnC((<-chan time.Time)(fired)).Once()
	mockTimer.OnStop(true).Once()

	q := New(testContext(), WithClock(mockClock), WithPeriod(time.Minute))

	e, err := q.SubmitTask(nil)
	require.NoError(err)
	require.True(event.WaitTimeout(time.Second, e))
	assert.Equal(event.StateComplete, e.Status())

	mockClock.AssertExpectations(t)
	mockTimer.AssertExpectations(t)
}

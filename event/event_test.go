// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("QUEUED", StateQueued.String())
	assert.Equal("SUBMITTED", StateSubmitted.String())
	assert.Equal("RUNNING", StateRunning.String())
	assert.Equal("COMPLETE", StateComplete.String())
	assert.Equal("ERROR", StateError.String())
	assert.Equal("UNKNOWN", State(712).String())
}

func TestStateTerminal(t *testing.T) {
	assert := assert.New(t)

	assert.False(StateQueued.Terminal())
	assert.False(StateSubmitted.Terminal())
	assert.False(StateRunning.Terminal())
	assert.True(StateComplete.Terminal())
	assert.True(StateError.Terminal())
}

func testEventLifecycle(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		e       = New()
	)

	require.NotNil(e)
	assert.NotZero(e.ID())
	assert.Equal(StateQueued, e.Status())
	assert.NoError(e.Err())

	select {
	case <-e.Done():
		require.FailNow("a fresh event must not be terminal")
	default:
		// passing
	}

	assert.NoError(e.Transition(StateSubmitted))
	assert.Equal(StateSubmitted, e.Status())

	assert.Equal(ErrInvalidTransition, e.Transition(StateSubmitted))
	assert.Equal(ErrInvalidTransition, e.Transition(StateQueued))
	assert.Equal(ErrInvalidTransition, e.Transition(StateComplete))

	assert.NoError(e.Transition(StateRunning))
	assert.NoError(e.Terminate(nil))
	assert.Equal(StateComplete, e.Status())
	assert.NoError(e.Err())

	select {
	case <-e.Done():
		// passing
	default:
		require.FailNow("Done must be closed after Terminate")
	}

	assert.Equal(ErrTerminal, e.Terminate(nil))
	assert.Equal(ErrTerminal, e.Transition(StateRunning))
	assert.Equal(StateComplete, e.Status())
}

func testEventTerminateError(t *testing.T) {
	var (
		assert   = assert.New(t)
		expected = errors.New("expected")
		e        = New()
	)

	assert.NoError(e.Terminate(expected))
	assert.Equal(StateError, e.Status())
	assert.Equal(expected, e.Err())

	// monotonic: the error is frozen with the state
	assert.Equal(ErrTerminal, e.Terminate(errors.New("unrelated")))
	assert.Equal(expected, e.Err())
}

func TestEvent(t *testing.T) {
	t.Run("Lifecycle", testEventLifecycle)
	t.Run("TerminateError", testEventTerminateError)
}

func testWaitComplete(t *testing.T) {
	var (
		assert = assert.New(t)
		e      = New()
	)

	go e.Terminate(nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(e.Wait(ctx))
}

func testWaitCanceled(t *testing.T) {
	var (
		assert      = assert.New(t)
		e           = New()
		ctx, cancel = context.WithCancel(context.Background())
	)

	cancel()
	assert.Equal(context.Canceled, e.Wait(ctx))
}

func TestWait(t *testing.T) {
	t.Run("Complete", testWaitComplete)
	t.Run("Canceled", testWaitCanceled)
}

func TestWaitAll(t *testing.T) {
	var (
		assert   = assert.New(t)
		expected = errors.New("expected")
		good     = New()
		bad      = New()
	)

	good.Terminate(nil)
	bad.Terminate(expected)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(WaitAll(ctx, nil, good))
	assert.Equal(expected, WaitAll(ctx, good, bad))
}

func TestWaitTimeout(t *testing.T) {
	var (
		assert  = assert.New(t)
		done    = New()
		pending = New()
	)

	done.Terminate(nil)

	assert.True(WaitTimeout(100*time.Millisecond, nil, done))
	assert.False(WaitTimeout(100*time.Millisecond, done, pending))

	pending.Terminate(errors.New("either terminal state counts"))
	assert.True(WaitTimeout(100*time.Millisecond, pending))
}

func TestUserEvent(t *testing.T) {
	t.Run("Complete", func(t *testing.T) {
		assert := assert.New(t)

		u := NewUserEvent()
		assert.Equal(StateSubmitted, u.Status())
		assert.NoError(u.Complete())
		assert.Equal(StateComplete, u.Status())
		assert.Equal(ErrTerminal, u.Complete())
	})

	t.Run("Fail", func(t *testing.T) {
		var (
			assert   = assert.New(t)
			expected = errors.New("expected")
		)

		u := NewUserEvent()
		assert.NoError(u.Fail(expected))
		assert.Equal(StateError, u.Status())
		assert.Equal(expected, u.Err())
	})

	t.Run("FailNilError", func(t *testing.T) {
		assert := assert.New(t)

		u := NewUserEvent()
		assert.NoError(u.Fail(nil))
		assert.Equal(StateError, u.Status())
		assert.Error(u.Err())
	})
}

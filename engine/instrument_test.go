// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"testing"
	"time"

	"github.com/go-kit/kit/metrics/generic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/cqsync/event"
	"github.com/xmidt-org/cqsync/queue"
	"github.com/xmidt-org/cqsync/semaphore"
)

func TestInstrumentDefaults(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		f = newFixture()
		q = f.queue(queue.OutOfOrder)
		s = f.semaphore(t)

		ie = Instrument(f.engine)
	)

	// discarded counters must not interfere with the underlying engine
	signal, err := ie.Signal(q, []*semaphore.Semaphore{s})
	require.NoError(err)

	wait, err := ie.Wait(q, []*semaphore.Semaphore{s}, signal)
	require.NoError(err)

	assert.True(event.WaitTimeout(time.Second, signal, wait))
}

func TestInstrument(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		f = newFixture()
		q = f.queue(queue.OutOfOrder)
		s = f.semaphore(t)

		signals = generic.NewCounter("signals")
		waits   = generic.NewCounter("waits")
		errors  = generic.NewCounter("errors")

		ie = Instrument(
			f.engine,
			WithSignals(signals),
			WithWaits(waits),
			WithErrors(errors),
		)
	)

	signal, err := ie.Signal(q, []*semaphore.Semaphore{s})
	require.NoError(err)

	wait, err := ie.Wait(q, []*semaphore.Semaphore{s}, signal)
	require.NoError(err)

	require.True(event.WaitTimeout(time.Second, signal, wait))

	assert.Equal(1.0, signals.Value())
	assert.Equal(1.0, waits.Value())
	assert.Zero(errors.Value())

	_, err = ie.Signal(q, nil)
	assert.Error(err)

	_, err = ie.Wait(q, nil)
	assert.Error(err)

	assert.Equal(1.0, signals.Value())
	assert.Equal(1.0, waits.Value())
	assert.Equal(2.0, errors.Value())
}

func TestInstrumentNilCounters(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		f = newFixture()
		q = f.queue(queue.OutOfOrder)
		s = f.semaphore(t)

		ie = Instrument(
			f.engine,
			WithSignals(nil),
			WithWaits(nil),
			WithErrors(nil),
		)
	)

	signal, err := ie.Signal(q, []*semaphore.Semaphore{s})
	require.NoError(err)
	assert.True(event.WaitTimeout(time.Second, signal))
}

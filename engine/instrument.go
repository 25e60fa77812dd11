// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/cqsync/event"
	"github.com/xmidt-org/cqsync/queue"
	"github.com/xmidt-org/cqsync/semaphore"
)

// InstrumentOption represents a configurable option for instrumenting an engine.
type InstrumentOption func(*instrumentedEngine)

// WithSignals establishes a metric counting successfully enqueued signal
// commands.  If a nil counter is supplied, signal counts are discarded.
func WithSignals(c metrics.Counter) InstrumentOption {
	return func(ie *instrumentedEngine) {
		if c != nil {
			ie.signals = c
		} else {
			ie.signals = discard.NewCounter()
		}
	}
}

// WithWaits establishes a metric counting successfully enqueued wait
// commands.  If a nil counter is supplied, wait counts are discarded.
func WithWaits(c metrics.Counter) InstrumentOption {
	return func(ie *instrumentedEngine) {
		if c != nil {
			ie.waits = c
		} else {
			ie.waits = discard.NewCounter()
		}
	}
}

// WithErrors establishes a metric counting enqueue rejections.  If a nil
// counter is supplied, error counts are discarded.
func WithErrors(c metrics.Counter) InstrumentOption {
	return func(ie *instrumentedEngine) {
		if c != nil {
			ie.errors = c
		} else {
			ie.errors = discard.NewCounter()
		}
	}
}

// Instrument decorates an existing engine with a set of options.
func Instrument(next Interface, o ...InstrumentOption) Interface {
	ie := &instrumentedEngine{
		Interface: next,
		signals:   discard.NewCounter(),
		waits:     discard.NewCounter(),
		errors:    discard.NewCounter(),
	}

	for _, f := range o {
		f(ie)
	}

	return ie
}

type instrumentedEngine struct {
	Interface
	signals metrics.Counter
	waits   metrics.Counter
	errors  metrics.Counter
}

func (ie *instrumentedEngine) Signal(q *queue.Queue, semaphores []*semaphore.Semaphore, waitList ...*event.Event) (ev *event.Event, err error) {
	ev, err = ie.Interface.Signal(q, semaphores, waitList...)
	if err != nil {
		ie.errors.Add(1.0)
	} else {
		ie.signals.Add(1.0)
	}

	return
}

func (ie *instrumentedEngine) Wait(q *queue.Queue, semaphores []*semaphore.Semaphore, waitList ...*event.Event) (ev *event.Event, err error) {
	ev, err = ie.Interface.Wait(q, semaphores, waitList...)
	if err != nil {
		ie.errors.Add(1.0)
	} else {
		ie.waits.Add(1.0)
	}

	return
}

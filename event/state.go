// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package event

// State is the execution state of an Event.  States are strictly ordered:
// an event never moves to a lower-valued state.
type State int32

const (
	// StateQueued indicates the command has been accepted by its queue but
	// not yet picked up for dispatch.
	StateQueued State = iota

	// StateSubmitted indicates the command has been handed to the dispatcher.
	StateSubmitted

	// StateRunning indicates every predecessor completed and the command's
	// work is in progress.
	StateRunning

	// StateComplete is the successful terminal state.
	StateComplete

	// StateError is the failed terminal state.  The associated error is
	// available from Event.Err.
	StateError
)

// Terminal tests whether s is one of the two frozen states.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateError
}

func (s State) String() string {
	switch s {
	case StateQueued:
		return "QUEUED"
	case StateSubmitted:
		return "SUBMITTED"
	case StateRunning:
		return "RUNNING"
	case StateComplete:
		return "COMPLETE"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

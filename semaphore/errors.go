// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import "errors"

var (
	// ErrInvalidDevice is returned when a device handle in a creation
	// property list, or supplied to Export, is not associated with the
	// semaphore's context or device handle list.
	ErrInvalidDevice = errors.New("the device is not associated with the semaphore's context")

	// ErrInvalidSemaphore is returned for operations against a destroyed
	// semaphore, a nil semaphore, or a semaphore from a different context
	// than the queue it is used with.
	ErrInvalidSemaphore = errors.New("the semaphore is invalid or has been destroyed")

	// ErrInvalidOperation is returned for unsupported request combinations,
	// such as creating a semaphore with both an export type list and an
	// import handle, or exporting a semaphore that was not created with a
	// matching export handle type.
	ErrInvalidOperation = errors.New("the requested semaphore operation combination is not supported")

	// ErrInvalidHandle is returned when importing a descriptor that is
	// unknown or has already been consumed by a previous import.
	ErrInvalidHandle = errors.New("the external handle is malformed or already consumed")

	// ErrAlreadySignaled is returned when signaling a binary semaphore
	// whose payload is already SIGNALED.  The payload is left untouched.
	ErrAlreadySignaled = errors.New("the semaphore is already signaled")
)

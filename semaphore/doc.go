// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package semaphore provides the binary cross-queue semaphore object used to
order work between independently scheduled command queues, together with a
channel-backed counting semaphore used as a queue admission limiter.

A binary Semaphore holds a single payload bit.  A signal transitions the
payload UNSIGNALED to SIGNALED exactly once; a successful wait consumes the
payload back to UNSIGNALED.  Signaling an already signaled semaphore is
rejected without modifying shared state.

Semaphores are reference counted.  Release at a zero external count defers
destruction until no in-flight queue command still references the object;
once destroyed, every operation answers ErrInvalidSemaphore.

A semaphore created with a matching export handle type can be exported as
a sync-file style descriptor and reconstructed elsewhere by importing that
descriptor.  The imported semaphore shares the exporter's payload, so a
signal through either object is observable, and consumable, through both.
Descriptors are single use: a second import of the same descriptor fails
with ErrInvalidHandle.
*/
package semaphore

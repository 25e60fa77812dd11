// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package engine enqueues semaphore signal and wait commands on queues.

A signal command sets every listed semaphore once its own wait list is
terminal; it carries no implicit dependency on anything else in its queue.
A wait command consumes every listed semaphore, suspending only its own
forward progress until each is signaled.  Together they establish a
happens-before edge between producers and consumers on independent queues
without draining either queue.
*/
package engine

// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package event provides the completion events produced by command queues.

An Event moves monotonically through at most five states and is frozen
once it reaches a terminal state.  Events are observable independently of
the queue that produced them: they can be queried, waited on, and used as
predecessors in other commands' wait lists at any time.
*/
package event

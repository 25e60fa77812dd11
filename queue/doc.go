/*
Package queue implements asynchronous command queues.

A Queue accepts commands and produces one completion event per command.
Commands become eligible to run once every event in their wait list is
terminal; an in-order queue additionally chains each command on the one
submitted before it.  An out-of-order queue imposes no ordering beyond
the explicit wait lists: co-residing in the same queue creates no
dependency edge between commands.

Queues execute concurrently with respect to each other and with the
submitting control flow.  Host-side blocking occurs only in Finish and in
the event package's wait helpers.
*/
package queue
